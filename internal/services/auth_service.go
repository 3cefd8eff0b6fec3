// internal/services/auth_service.go
package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/utils"
)

// adminNamespace derives a stable subject id for the configured admin.
var adminNamespace = uuid.MustParse("4b5c3f9e-2a6d-4f4e-9d1c-7f0e8a3b2c11")

type AuthService struct {
	cfg *config.Config
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
	Role        string `json:"role"`
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// AdminLogin checks the configured admin credentials and issues an admin
// token. Unknown email and wrong password answer the same.
func (s *AuthService) AdminLogin(ctx context.Context, req *AdminLoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if s.cfg.Admin.Email == "" || s.cfg.Admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	emailMatch := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(req.Email)),
		[]byte(strings.ToLower(s.cfg.Admin.Email)),
	) == 1
	// Verify password
	passwordErr := utils.CheckPassword(s.cfg.Admin.PasswordHash, req.Password)
	if !emailMatch || passwordErr != nil {
		logrus.WithField("email", req.Email).Warn("Rejected admin login")
		return nil, ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour
	subject := uuid.NewSHA1(adminNamespace, []byte(strings.ToLower(s.cfg.Admin.Email)))

	accessToken, err := utils.GenerateJWT(subject.String(), s.cfg.Admin.Email, utils.RoleAdmin, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		Role:        utils.RoleAdmin,
	}, nil
}
