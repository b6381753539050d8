package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse returns the issued token and public user info.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// JWTClaims is the session token payload. It deliberately carries only the
// user id; role and profile are re-read from the store on every request so
// promotions take effect without re-login.
type JWTClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
