package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	identity *IdentityService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, identity *IdentityService) *AuthService {
	return &AuthService{db: db, cfg: cfg, identity: identity}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Password) < 8 {
		return nil, newError(ErrInvalid, "password must be at least 8 characters")
	}
	user, err := s.identity.RegisterOrUpgrade(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Shadow || strings.HasPrefix(user.Password, unusablePasswordPrefix) {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(req.RefreshToken), false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	db.Model(&stored).Update("revoked", true)
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.identity.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// DeleteAccount removes the user and the whole ownership graph in one
// transaction. Shadow identities have no password to confirm.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Shadow {
		if password == "" {
			return newError(ErrInvalid, "password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return purgeUser(tx, userID)
	}); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	slog.Info("account deleted", "user_id", userID.String(), "action", "auth.delete_account")
	return nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Profile.Role),
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"role":     string(user.Profile.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
