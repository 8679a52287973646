package auth

import (
	"github.com/trendora/trendora-backend/internal/users"
)

// RegisterRequest is the storefront signup form.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"required,min=2,max=120"`
	Phone       string `json:"phone" validate:"omitempty"`
}

// LoginRequest carries storefront or console credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the signed token plus the account it belongs to.
type AuthResponse struct {
	AccessToken string        `json:"accessToken"`
	User        users.UserDTO `json:"user"`
}

// UpdateProfileRequest carries the editable profile fields. Nil leaves the
// field unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=2,max=120"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
}

// ChangePasswordRequest rotates the account credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}
