package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/internal/notifications"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

type summaryLister interface {
	ListLowStock(ctx context.Context) ([]models.Component, error)
	ListOldStock(ctx context.Context, cutoff time.Time) ([]models.Component, error)
}

type systemNotifier interface {
	CreateSystem(ctx context.Context, input notifications.SystemNotificationInput) (*models.Notification, error)
}

type DailySummaryJobParams struct {
	Logger     *logger.Logger
	Components summaryLister
	Notifier   systemNotifier
	Months     int
	Now        func() time.Time
}

// NewDailySummaryJob builds the once-a-day digest. It emits one system
// notification to the Admin role when anything needs attention and stays
// silent otherwise; running once per day is its own rate limit.
func NewDailySummaryJob(params DailySummaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Components == nil {
		return nil, fmt.Errorf("components repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	months := params.Months
	if months <= 0 {
		months = alerts.OldStockMonths
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &dailySummaryJob{
		logg:       params.Logger,
		components: params.Components,
		notifier:   params.Notifier,
		months:     months,
		now:        now,
	}, nil
}

type dailySummaryJob struct {
	logg       *logger.Logger
	components summaryLister
	notifier   systemNotifier
	months     int
	now        func() time.Time
}

func (j *dailySummaryJob) Name() string { return "daily-summary" }

func (j *dailySummaryJob) Run(ctx context.Context) error {
	lowStock, err := j.components.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	cutoff := j.now().UTC().AddDate(0, -j.months, 0)
	oldStock, err := j.components.ListOldStock(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list old stock: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"low_stock_count": len(lowStock),
		"old_stock_count": len(oldStock),
	})
	if len(lowStock) == 0 && len(oldStock) == 0 {
		j.logg.Info(logCtx, "daily summary: nothing to report")
		return nil
	}

	role := enums.RoleAdmin
	_, err = j.notifier.CreateSystem(ctx, notifications.SystemNotificationInput{
		Title: "Daily Inventory Summary",
		Message: fmt.Sprintf("%d component(s) are at or below their critical threshold and %d component(s) have not moved in %d+ months.",
			len(lowStock), len(oldStock), j.months),
		Priority:      enums.NotificationPriorityMedium,
		RecipientRole: &role,
		Data: notifications.SummaryPayload{
			LowStockCount: len(lowStock),
			OldStockCount: len(oldStock),
		},
	})
	if err != nil {
		return fmt.Errorf("create summary notification: %w", err)
	}
	j.logg.Info(logCtx, "daily summary sent")
	return nil
}
