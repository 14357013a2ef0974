package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltpath/labstock-backend/pkg/enums"
)

// User is an account in the lab inventory system.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"column:name;type:text;not null" json:"name"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         enums.Role `gorm:"column:role;type:text;not null;default:'User'" json:"role"`
	Department   *string    `gorm:"column:department;type:text" json:"department,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	EmailOptOut  bool       `gorm:"column:email_opt_out;not null;default:false" json:"emailOptOut"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
