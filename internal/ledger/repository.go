package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// ApprovalThreshold is the outward quantity at which an approver is required.
const ApprovalThreshold = 100

// Repository defines persistence for the append-only transaction ledger.
// There are deliberately no update or delete operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.TransactionLog) (*models.TransactionLog, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TransactionLog, error)
	RecentForComponent(ctx context.Context, componentID uuid.UUID, limit int) ([]models.TransactionLog, error)
	List(ctx context.Context, filters HistoryFilters, cursor *pagination.Cursor, limit int) ([]models.TransactionLog, error)
	PendingApprovals(ctx context.Context) ([]models.TransactionLog, error)
	Stats(ctx context.Context, from, to time.Time) (*MovementStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.TransactionLog) (*models.TransactionLog, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TransactionLog, error) {
	var entry models.TransactionLog
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) RecentForComponent(ctx context.Context, componentID uuid.UUID, limit int) ([]models.TransactionLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.TransactionLog
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// List walks the ledger newest first. It fetches one row beyond the
// normalized limit so the service can tell whether another page exists.
func (r *repository) List(ctx context.Context, filters HistoryFilters, cursor *pagination.Cursor, limit int) ([]models.TransactionLog, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.TransactionLog{}), filters)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var items []models.TransactionLog
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) applyFilters(query *gorm.DB, filters HistoryFilters) *gorm.DB {
	if filters.ComponentID != nil {
		query = query.Where("component_id = ?", *filters.ComponentID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.OperationType != nil {
		query = query.Where("operation_type = ?", *filters.OperationType)
	}
	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", *filters.EndDate)
	}
	return query
}

func (r *repository) PendingApprovals(ctx context.Context) ([]models.TransactionLog, error) {
	var entries []models.TransactionLog
	err := r.db.WithContext(ctx).
		Where("operation_type = ?", enums.OperationTypeOutward).
		Where("quantity >= ?", ApprovalThreshold).
		Where("approved_by IS NULL").
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func floatToDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

type statsRow struct {
	OperationType enums.OperationType
	Count         int
	TotalQuantity int
	TotalCost     *float64
}

func (r *repository) Stats(ctx context.Context, from, to time.Time) (*MovementStats, error) {
	var rows []statsRow
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLog{}).
		Select("operation_type, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_quantity, SUM(total_cost) AS total_cost").
		Where("transaction_date >= ? AND transaction_date <= ?", from, to).
		Group("operation_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &MovementStats{From: from, To: to}
	for _, row := range rows {
		if row.TotalCost != nil {
			stats.TotalCost = stats.TotalCost.Add(floatToDecimal(*row.TotalCost))
		}
		switch row.OperationType {
		case enums.OperationTypeInward:
			stats.InwardCount = row.Count
			stats.InwardQuantity = row.TotalQuantity
		case enums.OperationTypeOutward:
			stats.OutwardCount = row.Count
			stats.OutwardQuantity = row.TotalQuantity
		}
	}
	return stats, nil
}
