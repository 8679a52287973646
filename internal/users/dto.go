package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// CreateUserDTO carries the fields persisted for a new account.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Phone        *string
	Role         enums.UserRole
}

// ToModel maps the DTO onto a fresh user model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		DisplayName:  d.DisplayName,
		Phone:        d.Phone,
		Role:         d.Role,
		IsActive:     true,
	}
}

// UserDTO is the representation returned to clients; it never carries the
// password hash.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *string        `json:"address,omitempty"`
	Bio         *string        `json:"bio,omitempty"`
	PhotoURL    *string        `json:"photoUrl,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"isActive"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// ToDTO converts a persisted user into its client representation.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Address:     user.Address,
		Bio:         user.Bio,
		PhotoURL:    user.PhotoURL,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// UserListDTO is a page of accounts for the admin console.
type UserListDTO struct {
	Users      []UserDTO       `json:"users"`
	Pagination pagination.Page `json:"pagination"`
}

// ListFilters narrows the admin account listing.
type ListFilters struct {
	Role   *enums.UserRole
	Search string
}
