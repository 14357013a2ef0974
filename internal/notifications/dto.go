package notifications

import (
	"github.com/google/uuid"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// Recipient scopes notification reads to one authenticated user. A
// notification is visible when it is addressed to the user, to the user's
// role, or to nobody in particular.
type Recipient struct {
	UserID uuid.UUID
	Role   enums.Role
}

// ListFilters narrow notification listings.
type ListFilters struct {
	UnreadOnly      bool
	IncludeArchived bool
	Type            *enums.NotificationType
	Priority        *enums.NotificationPriority
}

// NotificationList is one page of notifications plus the recipient's
// unread count.
type NotificationList struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int64                 `json:"unreadCount"`
	Pagination  pagination.PageMeta   `json:"pagination"`
}

// Stats summarizes a recipient's notification inbox.
type Stats struct {
	Total          int64                          `json:"total"`
	Unread         int64                          `json:"unread"`
	ActionRequired int64                          `json:"actionRequired"`
	ByType         map[enums.NotificationType]int64 `json:"byType"`
}

// SystemNotificationInput creates a free-form system notification.
type SystemNotificationInput struct {
	Title         string
	Message       string
	Priority      enums.NotificationPriority
	RecipientID   *uuid.UUID
	RecipientRole *enums.Role
	Data          any
}
