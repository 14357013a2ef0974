package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

type oldStockLister interface {
	ListOldStock(ctx context.Context, cutoff time.Time) ([]models.Component, error)
}

type oldStockNotifier interface {
	NotifyOldStock(ctx context.Context, component *models.Component) (*models.Notification, error)
}

type OldStockSweepJobParams struct {
	Logger     *logger.Logger
	Components oldStockLister
	Notifier   oldStockNotifier
	Months     int
	Now        func() time.Time
}

// NewOldStockSweepJob builds the daily sweep over components with no
// outward movement inside the staleness window.
func NewOldStockSweepJob(params OldStockSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Components == nil {
		return nil, fmt.Errorf("components repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	months := params.Months
	if months <= 0 {
		months = alerts.OldStockMonths
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &oldStockSweepJob{
		logg:       params.Logger,
		components: params.Components,
		notifier:   params.Notifier,
		months:     months,
		now:        now,
	}, nil
}

type oldStockSweepJob struct {
	logg       *logger.Logger
	components oldStockLister
	notifier   oldStockNotifier
	months     int
	now        func() time.Time
}

func (j *oldStockSweepJob) Name() string { return "old-stock-sweep" }

func (j *oldStockSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, -j.months, 0)
	components, err := j.components.ListOldStock(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list old stock: %w", err)
	}

	notified := 0
	for i := range components {
		component := &components[i]
		if _, err := j.notifier.NotifyOldStock(ctx, component); err != nil {
			j.logg.Error(j.logg.WithComponentID(ctx, component.ID.String()), "old stock notify failed", err)
			continue
		}
		notified++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(components),
		"notified":   notified,
	})
	j.logg.Info(logCtx, "old stock sweep complete")
	return nil
}
