package auth

import (
	"github.com/jacinta25/social-media-API/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type RegisterRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=150"`
	Password       string `json:"password" validate:"required,min=8"`
	Bio            string `json:"bio" validate:"max=500"`
	ProfilePicture string `json:"profile_picture" validate:"max=2048"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse is returned by register and login: the user plus a fresh
// token pair.
type AuthResponse struct {
	User identity.User `json:"user"`
	TokenResponse
}

type Claims struct {
	UserID string `json:"user_id"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}
