package service

import (
	"crypto/subtle"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/pkg/config"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

// AuthService authenticates the admin console. A bcrypt hash takes
// precedence over the plaintext credential when both are configured.
type AuthService struct {
	cfg       config.AuthConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(cfg config.AuthConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{cfg: cfg, validator: validate, logger: logger}
}

// Login checks the shared admin credential and issues an access token.
func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if !s.credentialMatches(req.Password) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials")
	}

	now := time.Now()
	claims := models.JWTClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   models.RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		Token:     signed,
		Role:      models.RoleAdmin,
		ExpiresIn: int64(s.cfg.TokenExpiry.Seconds()),
		IssuedAt:  now,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}

	return claims, nil
}

func (s *AuthService) credentialMatches(password string) bool {
	if s.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.cfg.AdminPassword), []byte(password)) == 1
}
