package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stmt := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  type TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'medium',
  recipient_id TEXT,
  recipient_role TEXT,
  component_id TEXT,
  transaction_id TEXT,
  data TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  read_at DATETIME,
  read_by TEXT,
  is_archived INTEGER NOT NULL DEFAULT 0,
  archived_at DATETIME,
  action_required INTEGER NOT NULL DEFAULT 0,
  action_taken INTEGER NOT NULL DEFAULT 0,
  action_taken_by TEXT,
  action_taken_at DATETIME,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(stmt).Error)
	return db
}

func seedNotification(t *testing.T, repo Repository, mutate func(*models.Notification)) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ID:        uuid.New(),
		Title:     "Low Stock Alert: LM358 Op-Amp",
		Message:   "Only 3 units left.",
		Type:      enums.NotificationTypeLowStock,
		Priority:  enums.NotificationPriorityHigh,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(notification)
	}
	created, err := repo.Create(context.Background(), notification)
	require.NoError(t, err)
	return created
}

func TestFindRecentUnread(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	componentID := uuid.New()
	now := time.Now().UTC()

	seedNotification(t, repo, func(n *models.Notification) {
		n.ComponentID = &componentID
		n.CreatedAt = now.Add(-2 * time.Hour)
	})

	found, err := repo.FindRecentUnread(ctx, enums.NotificationTypeLowStock, componentID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, found)

	_, err = repo.FindRecentUnread(ctx, enums.NotificationTypeOldStock, componentID, now.Add(-24*time.Hour))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindRecentUnread(ctx, enums.NotificationTypeLowStock, componentID, now.Add(-time.Hour))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListForRecipientScope(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	userID := uuid.New()
	adminRole := enums.RoleAdmin
	seedNotification(t, repo, func(n *models.Notification) { n.RecipientID = &userID })
	seedNotification(t, repo, func(n *models.Notification) { n.RecipientRole = &adminRole })
	seedNotification(t, repo, nil)
	otherID := uuid.New()
	seedNotification(t, repo, func(n *models.Notification) { n.RecipientID = &otherID })

	list, err := repo.ListForRecipient(ctx, Recipient{UserID: userID, Role: enums.RoleAdmin}, ListFilters{}, pagination.PageParams{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	require.EqualValues(t, 3, list.UnreadCount)

	asUser, err := repo.ListForRecipient(ctx, Recipient{UserID: uuid.New(), Role: enums.RoleUser}, ListFilters{}, pagination.PageParams{})
	require.NoError(t, err)
	require.Len(t, asUser.Items, 1)
}

func TestListFiltersUnreadAndType(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	recipient := Recipient{UserID: uuid.New(), Role: enums.RoleAdmin}

	readAt := time.Now()
	seedNotification(t, repo, func(n *models.Notification) {
		n.IsRead = true
		n.ReadAt = &readAt
	})
	seedNotification(t, repo, func(n *models.Notification) { n.Type = enums.NotificationTypeSystem })
	seedNotification(t, repo, func(n *models.Notification) { n.IsArchived = true })

	unread, err := repo.ListForRecipient(ctx, recipient, ListFilters{UnreadOnly: true}, pagination.PageParams{})
	require.NoError(t, err)
	require.Len(t, unread.Items, 1)

	system := enums.NotificationTypeSystem
	byType, err := repo.ListForRecipient(ctx, recipient, ListFilters{Type: &system}, pagination.PageParams{})
	require.NoError(t, err)
	require.Len(t, byType.Items, 1)

	all, err := repo.ListForRecipient(ctx, recipient, ListFilters{IncludeArchived: true}, pagination.PageParams{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
}

func TestMarkAllRead(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	recipient := Recipient{UserID: uuid.New(), Role: enums.RoleAdmin}

	seedNotification(t, repo, nil)
	seedNotification(t, repo, nil)

	count, err := repo.MarkAllRead(ctx, recipient, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	unread, err := repo.CountUnread(ctx, recipient)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestCleanupDeletes(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	seedNotification(t, repo, func(n *models.Notification) {
		n.ExpiresAt = now.Add(-time.Hour)
	})
	readAt := now.AddDate(0, 0, -40)
	seedNotification(t, repo, func(n *models.Notification) {
		n.IsRead = true
		n.ReadAt = &readAt
		n.CreatedAt = now.AddDate(0, 0, -40)
	})
	seedNotification(t, repo, nil)

	expired, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	read, err := repo.DeleteReadBefore(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.EqualValues(t, 1, read)
}

func TestStats(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	recipient := Recipient{UserID: uuid.New(), Role: enums.RoleAdmin}

	seedNotification(t, repo, func(n *models.Notification) { n.ActionRequired = true })
	seedNotification(t, repo, func(n *models.Notification) { n.Type = enums.NotificationTypeSystem })

	stats, err := repo.Stats(ctx, recipient)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Total)
	require.EqualValues(t, 2, stats.Unread)
	require.EqualValues(t, 1, stats.ActionRequired)
	require.EqualValues(t, 1, stats.ByType[enums.NotificationTypeLowStock])
	require.EqualValues(t, 1, stats.ByType[enums.NotificationTypeSystem])
}
