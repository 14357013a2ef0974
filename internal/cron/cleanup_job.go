package cron

import (
	"context"
	"fmt"

	"github.com/voltpath/labstock-backend/pkg/logger"
)

type notificationCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger   *logger.Logger
	Notifier notificationCleaner
}

// NewNotificationCleanupJob builds the daily retention sweep: expired
// notifications plus read ones past the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &notificationCleanupJob{logg: params.Logger, notifier: params.Notifier}, nil
}

type notificationCleanupJob struct {
	logg     *logger.Logger
	notifier notificationCleaner
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.notifier.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_deleted", deleted), "notification cleanup complete")
	return nil
}
