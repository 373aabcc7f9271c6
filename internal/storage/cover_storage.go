package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/nvak1999/book-store/config"
)

const (
	coverFolder    = "covers"
	maxCoverBytes  = 5 << 20
	presignExpires = 15 * time.Minute
)

var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// CoverStorage hands out pre-signed S3 PUT URLs for book cover images,
// so image bytes never pass through the API server.
type CoverStorage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type CoverUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
}

func NewCoverStorage(cfg appconfig.S3Config) *CoverStorage {
	var awsCfg aws.Config
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	return &CoverStorage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// PresignCoverUpload validates the upload and returns a PUT URL plus
// the URL the cover will be served from.
func (s *CoverStorage) PresignCoverUpload(filename, contentType string, size int64) (*CoverUpload, error) {
	if !allowedCoverTypes[contentType] {
		return nil, fmt.Errorf("content type %s is not allowed for covers", contentType)
	}
	if size > maxCoverBytes {
		return nil, fmt.Errorf("cover exceeds maximum size of %d bytes", int64(maxCoverBytes))
	}

	key := fmt.Sprintf("%s/%s%s", coverFolder, uuid.New().String(), filepath.Ext(filename))

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	if s.baseURL != "" {
		fileURL = fmt.Sprintf("%s/%s", s.baseURL, key)
	}

	return &CoverUpload{
		UploadURL: presignedReq.URL,
		FileURL:   fileURL,
		Key:       key,
	}, nil
}
