// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles account registration and login
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperrors.Validation("user.Register", "email already registered")
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.E(apperrors.KindValidation, "user.Register", err.Error(), err)
	}

	newUser := User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
	}

	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(&newUser)
}

// Login authenticates an account and issues tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var account User
	if err := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&account).Error; err != nil {
		return nil, apperrors.Validation("user.Login", "invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		return nil, apperrors.Validation("user.Login", "invalid email or password")
	}

	now := time.Now().UTC()
	s.db.Model(&account).Update("last_login_at", now)

	return s.issueTokens(&account)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Validation("user.RefreshToken", "invalid or expired refresh token")
	}

	var account User
	if err := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&account).Error; err != nil {
		return nil, apperrors.Validation("user.RefreshToken", "account no longer active")
	}

	return s.issueTokens(&account)
}

func (s *Service) issueTokens(account *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(
		account.ID, account.Email, account.FullName(), account.Phone, account.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
