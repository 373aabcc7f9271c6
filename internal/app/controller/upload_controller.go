package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/nvak1999/book-store/internal/errors"
	"github.com/nvak1999/book-store/internal/middleware"
	"github.com/nvak1999/book-store/internal/storage"
)

type UploadController struct {
	covers *storage.CoverStorage
}

func NewUploadController(covers *storage.CoverStorage) *UploadController {
	return &UploadController{
		covers: covers,
	}
}

type PresignCoverRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// PresignCover issues a pre-signed URL for uploading a book cover
// (admin only).
// POST /api/v1/upload/cover
func (ctrl *UploadController) PresignCover(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "filename, contentType and size are required", apperrors.NameUploadError)
		return
	}

	upload, err := ctrl.covers.PresignCoverUpload(req.Filename, req.ContentType, req.Size)
	if err != nil {
		log.Warn("Cover upload rejected", map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"error":        err.Error(),
		})
		apperrors.BadRequest(c, err.Error(), apperrors.NameUploadError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, upload, "Upload URL generated successfully")
}
