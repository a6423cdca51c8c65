package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest creates a self-service account holding the submitter role.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Roles     Roles  `json:"roles"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Roles  Roles  `json:"roles"`
	jwt.RegisteredClaims
}

// Actor is the identity a mutation is performed on behalf of.
type Actor struct {
	UserID string
	Roles  Roles
}

// Actor converts token claims into an Actor.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Roles: c.Roles}
}
