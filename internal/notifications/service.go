package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/mailer"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

const (
	defaultLowStockDedupWindow = 24 * time.Hour
	defaultOldStockDedupWindow = 7 * 24 * time.Hour
	defaultRetentionDays       = 30
)

// AdminDirectory resolves the users that receive alert emails.
type AdminDirectory interface {
	AlertRecipients(ctx context.Context) ([]models.User, error)
}

// Service creates, lists, and retires notifications. Alert constructors
// deduplicate against recent unread alerts for the same component.
type Service interface {
	NotifyLowStock(ctx context.Context, component *models.Component) (*models.Notification, error)
	NotifyOldStock(ctx context.Context, component *models.Component) (*models.Notification, error)
	NotifyHighUsage(ctx context.Context, component *models.Component, quantityUsed, windowDays int) (*models.Notification, error)
	NotifyApprovalNeeded(ctx context.Context, component *models.Component, transaction *models.TransactionLog) (*models.Notification, error)
	CreateSystem(ctx context.Context, input SystemNotificationInput) (*models.Notification, error)
	List(ctx context.Context, recipient Recipient, filters ListFilters, params pagination.PageParams) (*NotificationList, error)
	UnreadCount(ctx context.Context, recipient Recipient) (int64, error)
	MarkRead(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipient Recipient) (int64, error)
	Archive(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error)
	TakeAction(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error)
	Stats(ctx context.Context, recipient Recipient) (*Stats, error)
	Cleanup(ctx context.Context) (int64, error)
}

type service struct {
	repo          Repository
	admins        AdminDirectory
	sender        mailer.Sender
	logg          *logger.Logger
	now           func() time.Time
	lowStockDedup time.Duration
	oldStockDedup time.Duration
	retention     time.Duration
}

// NewService builds a notification service. The admin directory and mail
// sender are optional; without them alert emails are skipped. Zero values
// in cfg fall back to the defaults.
func NewService(repo Repository, admins AdminDirectory, sender mailer.Sender, cfg config.AlertsConfig, logg *logger.Logger, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	if cfg.LowStockDedupWindow <= 0 {
		cfg.LowStockDedupWindow = defaultLowStockDedupWindow
	}
	if cfg.OldStockDedupWindow <= 0 {
		cfg.OldStockDedupWindow = defaultOldStockDedupWindow
	}
	if cfg.NotificationRetention <= 0 {
		cfg.NotificationRetention = defaultRetentionDays
	}
	return &service{
		repo:          repo,
		admins:        admins,
		sender:        sender,
		logg:          logg,
		now:           now,
		lowStockDedup: cfg.LowStockDedupWindow,
		oldStockDedup: cfg.OldStockDedupWindow,
		retention:     time.Duration(cfg.NotificationRetention) * 24 * time.Hour,
	}, nil
}

func (s *service) NotifyLowStock(ctx context.Context, component *models.Component) (*models.Notification, error) {
	if component == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component required")
	}

	existing, err := s.dedup(ctx, enums.NotificationTypeLowStock, component.ID, s.lowStockDedup)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	adminRole := enums.RoleAdmin
	notification, err := s.create(ctx, &models.Notification{
		Title: fmt.Sprintf("Low Stock Alert: %s", component.Name),
		Message: fmt.Sprintf("%s (%s) is down to %d units, at or below the threshold of %d.",
			component.Name, component.PartNumber, component.Quantity, component.CriticalLowThreshold),
		Type:           enums.NotificationTypeLowStock,
		Priority:       enums.NotificationPriorityHigh,
		RecipientRole:  &adminRole,
		ComponentID:    &component.ID,
		ActionRequired: true,
	}, LowStockPayload{
		CurrentQuantity: component.Quantity,
		Threshold:       component.CriticalLowThreshold,
		Location:        component.Location,
		PartNumber:      component.PartNumber,
	})
	if err != nil {
		return nil, err
	}

	s.emailAdmins(ctx, notification)
	return notification, nil
}

func (s *service) NotifyOldStock(ctx context.Context, component *models.Component) (*models.Notification, error) {
	if component == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component required")
	}

	existing, err := s.dedup(ctx, enums.NotificationTypeOldStock, component.ID, s.oldStockDedup)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	reference := component.CreatedAt
	if component.LastOutwardMovement != nil {
		reference = *component.LastOutwardMovement
	}
	months := alerts.MonthsSince(reference, s.now())

	adminRole := enums.RoleAdmin
	notification, err := s.create(ctx, &models.Notification{
		Title: fmt.Sprintf("Stale Stock: %s", component.Name),
		Message: fmt.Sprintf("%s (%s) has had no outward movement for %d months. %d units are on hand.",
			component.Name, component.PartNumber, months, component.Quantity),
		Type:           enums.NotificationTypeOldStock,
		Priority:       enums.NotificationPriorityMedium,
		RecipientRole:  &adminRole,
		ComponentID:    &component.ID,
		ActionRequired: true,
	}, OldStockPayload{
		MonthsWithoutMovement: months,
		CurrentQuantity:       component.Quantity,
		Location:              component.Location,
		PartNumber:            component.PartNumber,
		LastOutwardMovement:   component.LastOutwardMovement,
	})
	if err != nil {
		return nil, err
	}

	s.emailAdmins(ctx, notification)
	return notification, nil
}

func (s *service) NotifyHighUsage(ctx context.Context, component *models.Component, quantityUsed, windowDays int) (*models.Notification, error) {
	if component == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component required")
	}

	adminRole := enums.RoleAdmin
	return s.create(ctx, &models.Notification{
		Title: fmt.Sprintf("High Usage: %s", component.Name),
		Message: fmt.Sprintf("%d units of %s (%s) were issued in the last %d days.",
			quantityUsed, component.Name, component.PartNumber, windowDays),
		Type:          enums.NotificationTypeHighUsage,
		Priority:      enums.NotificationPriorityMedium,
		RecipientRole: &adminRole,
		ComponentID:   &component.ID,
	}, HighUsagePayload{
		QuantityUsed:    quantityUsed,
		WindowDays:      windowDays,
		CurrentQuantity: component.Quantity,
		PartNumber:      component.PartNumber,
	})
}

func (s *service) NotifyApprovalNeeded(ctx context.Context, component *models.Component, transaction *models.TransactionLog) (*models.Notification, error) {
	if component == nil || transaction == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component and transaction required")
	}

	adminRole := enums.RoleAdmin
	return s.create(ctx, &models.Notification{
		Title: fmt.Sprintf("Approval Needed: %s", component.Name),
		Message: fmt.Sprintf("An outward movement of %d units of %s (%s) is awaiting approval.",
			transaction.Quantity, component.Name, component.PartNumber),
		Type:           enums.NotificationTypeApprovalNeeded,
		Priority:       enums.NotificationPriorityHigh,
		RecipientRole:  &adminRole,
		ComponentID:    &component.ID,
		TransactionID:  &transaction.ID,
		ActionRequired: true,
	}, ApprovalNeededPayload{
		Quantity:   transaction.Quantity,
		PartNumber: component.PartNumber,
		Location:   component.Location,
	})
}

func (s *service) CreateSystem(ctx context.Context, input SystemNotificationInput) (*models.Notification, error) {
	if input.Title == "" || input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message required")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.NotificationPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", priority))
	}

	return s.create(ctx, &models.Notification{
		Title:         input.Title,
		Message:       input.Message,
		Type:          enums.NotificationTypeSystem,
		Priority:      priority,
		RecipientID:   input.RecipientID,
		RecipientRole: input.RecipientRole,
	}, input.Data)
}

func (s *service) dedup(ctx context.Context, kind enums.NotificationType, componentID uuid.UUID, window time.Duration) (*models.Notification, error) {
	existing, err := s.repo.FindRecentUnread(ctx, kind, componentID, s.now().Add(-window))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "probe for duplicate alert")
	}
	return existing, nil
}

func (s *service) create(ctx context.Context, notification *models.Notification, payload any) (*models.Notification, error) {
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode notification payload")
		}
		notification.Data = data
	}

	notification.ID = uuid.New()
	notification.ExpiresAt = s.now().Add(s.retention)

	created, err := s.repo.Create(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return created, nil
}

// emailAdmins mirrors an alert to the admins that accept email. Delivery is
// best effort and never fails the notification itself.
func (s *service) emailAdmins(ctx context.Context, notification *models.Notification) {
	if s.admins == nil || s.sender == nil {
		return
	}

	recipients, err := s.admins.AlertRecipients(ctx)
	if err != nil {
		s.logg.Error(ctx, "resolve alert email recipients", err)
		return
	}

	for _, user := range recipients {
		err := s.sender.Send(ctx, mailer.Message{
			To:      user.Email,
			Subject: notification.Title,
			Body:    notification.Message,
		})
		if err != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "send alert email", err)
		}
	}
}

func (s *service) List(ctx context.Context, recipient Recipient, filters ListFilters, params pagination.PageParams) (*NotificationList, error) {
	list, err := s.repo.ListForRecipient(ctx, recipient, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return list, nil
}

func (s *service) UnreadCount(ctx context.Context, recipient Recipient) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipient)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.loadVisible(ctx, recipient, id)
	if err != nil {
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}

	readAt := s.now()
	notification.IsRead = true
	notification.ReadAt = &readAt
	notification.ReadBy = &recipient.UserID
	return s.save(ctx, notification)
}

func (s *service) MarkAllRead(ctx context.Context, recipient Recipient) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, recipient, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Archive(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.loadVisible(ctx, recipient, id)
	if err != nil {
		return nil, err
	}
	if notification.IsArchived {
		return notification, nil
	}

	archivedAt := s.now()
	notification.IsArchived = true
	notification.ArchivedAt = &archivedAt
	return s.save(ctx, notification)
}

func (s *service) TakeAction(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.loadVisible(ctx, recipient, id)
	if err != nil {
		return nil, err
	}
	if !notification.ActionRequired {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification does not require action")
	}
	if notification.ActionTaken {
		return notification, nil
	}

	now := s.now()
	notification.ActionTaken = true
	notification.ActionTakenBy = &recipient.UserID
	notification.ActionTakenAt = &now
	if !notification.IsRead {
		notification.IsRead = true
		notification.ReadAt = &now
		notification.ReadBy = &recipient.UserID
	}
	return s.save(ctx, notification)
}

func (s *service) Stats(ctx context.Context, recipient Recipient) (*Stats, error) {
	stats, err := s.repo.Stats(ctx, recipient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate notification stats")
	}
	return stats, nil
}

// Cleanup removes expired notifications and read notifications past the
// retention window. It returns the number of rows removed.
func (s *service) Cleanup(ctx context.Context) (int64, error) {
	now := s.now()

	expired, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired notifications")
	}

	read, err := s.repo.DeleteReadBefore(ctx, now.Add(-s.retention))
	if err != nil {
		return expired, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete read notifications")
	}
	return expired + read, nil
}

func (s *service) loadVisible(ctx context.Context, recipient Recipient, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if !visibleTo(notification, recipient) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notification is addressed to someone else")
	}
	return notification, nil
}

func (s *service) save(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	saved, err := s.repo.Save(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notification")
	}
	return saved, nil
}

func visibleTo(notification *models.Notification, recipient Recipient) bool {
	if notification.RecipientID == nil && notification.RecipientRole == nil {
		return true
	}
	if notification.RecipientID != nil && *notification.RecipientID == recipient.UserID {
		return true
	}
	if notification.RecipientRole != nil && *notification.RecipientRole == recipient.Role {
		return true
	}
	return false
}
