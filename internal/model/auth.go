package model

import (
	"github.com/google/uuid"
)

// SignupRequest represents account registration parameters.
type SignupRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	FirstName     string  `json:"firstName" binding:"required"`
	LastName      string  `json:"lastName" binding:"required"`
	Role          Role    `json:"role" binding:"required,oneof=doctor nurse radiologist admin"`
	LicenseNumber *string `json:"licenseNumber"`
}

// SigninRequest represents login parameters.
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on signup and signin.
type AuthResponse struct {
	User  *Personnel `json:"user"`
	Token string     `json:"token"`
}

// TokenResponse is returned on refresh.
type TokenResponse struct {
	Token string `json:"token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthContext is the identity the auth middleware attaches to a request.
type AuthContext struct {
	ID    uuid.UUID
	Email string
	Role  Role
}
