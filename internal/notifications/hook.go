package notifications

import (
	"context"

	"github.com/voltpath/labstock-backend/pkg/db/models"
)

// LowStockHook adapts the service to the error-only notifier contract the
// stock service expects.
type LowStockHook struct {
	Service Service
}

func (h LowStockHook) NotifyLowStock(ctx context.Context, component *models.Component) error {
	_, err := h.Service.NotifyLowStock(ctx, component)
	return err
}
