package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the console issues today.
const RoleAdmin = "admin"

// LoginRequest holds the admin console credential.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
