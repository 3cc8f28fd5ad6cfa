package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/pkg/config"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

func authConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminPassword: "hunter2",
		JWTSecret:     "test-secret",
		TokenExpiry:   time.Hour,
	}
}

func TestAuthLoginPlaintext(t *testing.T) {
	svc := NewAuthService(authConfig(), nil, nil)

	resp, err := svc.Login(models.LoginRequest{Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(authConfig(), nil, nil)

	_, err := svc.Login(models.LoginRequest{Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := authConfig()
	cfg.AdminPasswordHash = string(hash)
	svc := NewAuthService(cfg, nil, nil)

	// The plaintext credential is ignored once a hash is configured.
	_, err = svc.Login(models.LoginRequest{Password: "hunter2"})
	require.Error(t, err)

	resp, err := svc.Login(models.LoginRequest{Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthValidateTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(authConfig(), nil, nil)

	resp, err := svc.Login(models.LoginRequest{Password: "hunter2"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(authConfig(), nil, nil)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsOtherSecret(t *testing.T) {
	issuer := NewAuthService(authConfig(), nil, nil)
	resp, err := issuer.Login(models.LoginRequest{Password: "hunter2"})
	require.NoError(t, err)

	cfg := authConfig()
	cfg.JWTSecret = "different-secret"
	verifier := NewAuthService(cfg, nil, nil)

	_, err = verifier.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
