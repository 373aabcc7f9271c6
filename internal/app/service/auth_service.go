package service

import (
	"errors"

	"github.com/nvak1999/book-store/config"
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/pkg/logger"
	"github.com/nvak1999/book-store/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Birthday string
	Address  string
	City     string
	State    string
	Zipcode  string
}

type AuthResult struct {
	User   *model.User    `json:"user"`
	Tokens util.TokenPair `json:"tokens"`
}

type AuthService interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Register(input RegisterInput) (*AuthResult, error) {
	logger.Debug("Registering user", map[string]interface{}{
		"email": input.Email,
	})

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Gender:       input.Gender,
		Birthday:     input.Birthday,
		Address:      input.Address,
		City:         input.City,
		State:        input.State,
		Zipcode:      input.Zipcode,
		Role:         model.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtCfg.Secret, s.jwtCfg.AccessTokenExpiry, s.jwtCfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Login reports the same error for an unknown email and a wrong
// password.
func (s *authService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := util.VerifyPassword(user.PasswordHash, password); err != nil {
		logger.Debug("Password mismatch on login", map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtCfg.Secret, s.jwtCfg.AccessTokenExpiry, s.jwtCfg.RefreshTokenExpiry)
	if err != nil {
		logger.Error("Failed to issue tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
