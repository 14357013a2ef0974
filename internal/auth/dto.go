package auth

import (
	"github.com/voltpath/labstock-backend/internal/users"
)

// RegisterRequest captures a new account submission.
type RegisterRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Department *string `json:"department,omitempty"`
	Role       string  `json:"role,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and user produced by a successful
// register or login.
type AuthResponse struct {
	AccessToken string         `json:"accessToken"`
	User        *users.UserDTO `json:"user"`
}
