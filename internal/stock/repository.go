package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
)

// Repository performs the guarded quantity mutations. The guard lives in
// the UPDATE itself so concurrent issues can never drive quantity below
// zero.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
	ApplyInward(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	ApplyOutward(ctx context.Context, id uuid.UUID, quantity int, movedAt time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var component models.Component
	if err := r.db.WithContext(ctx).First(&component, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &component, nil
}

// ApplyInward increments quantity and the inward counter in one statement.
func (r *repository) ApplyInward(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", quantity),
			"total_inward": gorm.Expr("total_inward + ?", quantity),
		})
	return result.RowsAffected, result.Error
}

// ApplyOutward decrements quantity only when enough stock is on hand. A
// zero row count means the component is missing or the guard failed.
func (r *repository) ApplyOutward(ctx context.Context, id uuid.UUID, quantity int, movedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]any{
			"quantity":              gorm.Expr("quantity - ?", quantity),
			"total_outward":         gorm.Expr("total_outward + ?", quantity),
			"last_outward_movement": movedAt,
		})
	return result.RowsAffected, result.Error
}
