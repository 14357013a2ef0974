package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/voltpath/labstock-backend/pkg/enums"
)

// Notification is an in-app alert addressed to a user or a role. Data holds
// the typed per-kind payload serialized as jsonb.
type Notification struct {
	ID             uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title          string                     `gorm:"column:title;type:text;not null" json:"title"`
	Message        string                     `gorm:"column:message;type:text;not null" json:"message"`
	Type           enums.NotificationType     `gorm:"column:type;type:notification_type;not null" json:"type"`
	Priority       enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'medium'" json:"priority"`
	RecipientID    *uuid.UUID                 `gorm:"column:recipient_id;type:uuid" json:"recipientId,omitempty"`
	RecipientRole  *enums.Role                `gorm:"column:recipient_role;type:text" json:"recipientRole,omitempty"`
	ComponentID    *uuid.UUID                 `gorm:"column:component_id;type:uuid;index" json:"componentId,omitempty"`
	TransactionID  *uuid.UUID                 `gorm:"column:transaction_id;type:uuid" json:"transactionId,omitempty"`
	Data           json.RawMessage            `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	IsRead         bool                       `gorm:"column:is_read;not null;default:false" json:"isRead"`
	ReadAt         *time.Time                 `gorm:"column:read_at;type:timestamptz" json:"readAt,omitempty"`
	ReadBy         *uuid.UUID                 `gorm:"column:read_by;type:uuid" json:"readBy,omitempty"`
	IsArchived     bool                       `gorm:"column:is_archived;not null;default:false" json:"isArchived"`
	ArchivedAt     *time.Time                 `gorm:"column:archived_at;type:timestamptz" json:"archivedAt,omitempty"`
	ActionRequired bool                       `gorm:"column:action_required;not null;default:false" json:"actionRequired"`
	ActionTaken    bool                       `gorm:"column:action_taken;not null;default:false" json:"actionTaken"`
	ActionTakenBy  *uuid.UUID                 `gorm:"column:action_taken_by;type:uuid" json:"actionTakenBy,omitempty"`
	ActionTakenAt  *time.Time                 `gorm:"column:action_taken_at;type:timestamptz" json:"actionTakenAt,omitempty"`
	ExpiresAt      time.Time                  `gorm:"column:expires_at;type:timestamptz;not null" json:"expiresAt"`
	CreatedAt      time.Time                  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
