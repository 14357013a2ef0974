package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// Repository defines persistence operations for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	Save(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	FindRecentUnread(ctx context.Context, kind enums.NotificationType, componentID uuid.UUID, since time.Time) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipient Recipient, filters ListFilters, params pagination.PageParams) (*NotificationList, error)
	CountUnread(ctx context.Context, recipient Recipient) (int64, error)
	MarkAllRead(ctx context.Context, recipient Recipient, readAt time.Time) (int64, error)
	Stats(ctx context.Context, recipient Recipient) (*Stats, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notification repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) Save(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindRecentUnread is the dedup probe: an unread alert of the same kind for
// the same component created after since suppresses a new one.
func (r *repository) FindRecentUnread(ctx context.Context, kind enums.NotificationType, componentID uuid.UUID, since time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("type = ? AND component_id = ? AND is_read = ? AND created_at >= ?", kind, componentID, false, since).
		Order("created_at DESC").
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repository) recipientScope(recipient Recipient) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipient_id = ? OR recipient_role = ? OR (recipient_id IS NULL AND recipient_role IS NULL)",
			recipient.UserID, recipient.Role,
		)
	}
}

func (r *repository) ListForRecipient(ctx context.Context, recipient Recipient, filters ListFilters, params pagination.PageParams) (*NotificationList, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(r.recipientScope(recipient))
	if !filters.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filters.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&items).Error; err != nil {
		return nil, err
	}

	unread, err := r.CountUnread(ctx, recipient)
	if err != nil {
		return nil, err
	}

	return &NotificationList{
		Items:       items,
		UnreadCount: unread,
		Pagination:  pagination.NewPageMeta(params, len(items), total),
	}, nil
}

func (r *repository) CountUnread(ctx context.Context, recipient Recipient) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(r.recipientScope(recipient)).
		Where("is_read = ? AND is_archived = ?", false, false).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkAllRead(ctx context.Context, recipient Recipient, readAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(r.recipientScope(recipient)).
		Where("is_read = ?", false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": readAt,
			"read_by": recipient.UserID,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) Stats(ctx context.Context, recipient Recipient) (*Stats, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Scopes(r.recipientScope(recipient)).
			Where("is_archived = ?", false)
	}

	stats := &Stats{ByType: map[enums.NotificationType]int64{}}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_read = ?", false).Count(&stats.Unread).Error; err != nil {
		return nil, err
	}
	if err := base().Where("action_required = ? AND action_taken = ?", true, false).Count(&stats.ActionRequired).Error; err != nil {
		return nil, err
	}

	type typeRow struct {
		Type  enums.NotificationType
		Count int64
	}
	var rows []typeRow
	if err := base().
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
	}
	return stats, nil
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
