package users

import (
	"github.com/google/uuid"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// UserDTO is the public user shape. It never carries the password hash.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	Department  *string    `json:"department,omitempty"`
	IsActive    bool       `json:"isActive"`
	EmailOptOut bool       `json:"emailOptOut"`
}

// NewUserDTO projects a user model into its public shape.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Department:  user.Department,
		IsActive:    user.IsActive,
		EmailOptOut: user.EmailOptOut,
	}
}

// UpdateProfileInput carries the self-service profile fields.
type UpdateProfileInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Department  *string `json:"department,omitempty"`
	EmailOptOut *bool   `json:"emailOptOut,omitempty"`
}

// ListFilters narrow user listings.
type ListFilters struct {
	Role       *enums.Role
	ActiveOnly bool
	Search     string
}

// UserList is one page of users plus paging metadata.
type UserList struct {
	Items      []UserDTO           `json:"items"`
	Pagination pagination.PageMeta `json:"pagination"`
}
