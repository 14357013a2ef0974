package cron

import (
	"context"
	"fmt"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

type lowStockLister interface {
	ListLowStock(ctx context.Context) ([]models.Component, error)
}

type lowStockNotifier interface {
	NotifyLowStock(ctx context.Context, component *models.Component) (*models.Notification, error)
}

type LowStockSweepJobParams struct {
	Logger     *logger.Logger
	Components lowStockLister
	Notifier   lowStockNotifier
}

// NewLowStockSweepJob builds the periodic sweep that raises an alert for
// every Active component at or below its critical threshold. Dedup inside
// the notifier keeps repeated sweeps from spamming.
func NewLowStockSweepJob(params LowStockSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Components == nil {
		return nil, fmt.Errorf("components repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &lowStockSweepJob{
		logg:       params.Logger,
		components: params.Components,
		notifier:   params.Notifier,
	}, nil
}

type lowStockSweepJob struct {
	logg       *logger.Logger
	components lowStockLister
	notifier   lowStockNotifier
}

func (j *lowStockSweepJob) Name() string { return "low-stock-sweep" }

func (j *lowStockSweepJob) Run(ctx context.Context) error {
	components, err := j.components.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}

	notified := 0
	for i := range components {
		component := &components[i]
		if _, err := j.notifier.NotifyLowStock(ctx, component); err != nil {
			j.logg.Error(j.logg.WithComponentID(ctx, component.ID.String()), "low stock notify failed", err)
			continue
		}
		notified++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(components),
		"notified":   notified,
	})
	j.logg.Info(logCtx, "low stock sweep complete")
	return nil
}
