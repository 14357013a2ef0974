package assistant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
)

// Repository loads the slice of inventory state that seeds the prompt. All
// reads are scoped to the components the asking user added and the
// movements they performed.
type Repository interface {
	ComponentsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Component, error)
	RecentMovements(ctx context.Context, userID uuid.UUID, limit int) ([]MovementRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ComponentsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Component, error) {
	var components []models.Component
	err := r.db.WithContext(ctx).
		Where("added_by = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}

func (r *repository) RecentMovements(ctx context.Context, userID uuid.UUID, limit int) ([]MovementRow, error) {
	var rows []MovementRow
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLog{}).
		Select("transaction_logs.operation_type, transaction_logs.quantity, transaction_logs.reason_or_project, transaction_logs.transaction_date, components.name AS component_name, components.part_number").
		Joins("JOIN components ON components.id = transaction_logs.component_id").
		Where("transaction_logs.user_id = ?", userID).
		Order("transaction_logs.transaction_date DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
