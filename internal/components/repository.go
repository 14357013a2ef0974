package components

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// Repository defines persistence operations for component records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, component *models.Component) (*models.Component, error)
	Save(ctx context.Context, component *models.Component) (*models.Component, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
	FindByPartNumber(ctx context.Context, partNumber string) (*models.Component, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.PageParams, now time.Time) (*ComponentList, error)
	ListLowStock(ctx context.Context) ([]models.Component, error)
	ListOldStock(ctx context.Context, cutoff time.Time) ([]models.Component, error)
	ListForExport(ctx context.Context, filters ExportFilters) ([]models.Component, error)
	CountLedgerEntries(ctx context.Context, componentID uuid.UUID) (int64, error)
	Categories(ctx context.Context) ([]CategorySummary, error)
	Locations(ctx context.Context) ([]LocationSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a component repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, component *models.Component) (*models.Component, error) {
	if err := r.db.WithContext(ctx).Create(component).Error; err != nil {
		return nil, err
	}
	return component, nil
}

func (r *repository) Save(ctx context.Context, component *models.Component) (*models.Component, error) {
	if err := r.db.WithContext(ctx).Save(component).Error; err != nil {
		return nil, err
	}
	return component, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var component models.Component
	if err := r.db.WithContext(ctx).First(&component, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) FindByPartNumber(ctx context.Context, partNumber string) (*models.Component, error) {
	var component models.Component
	if err := r.db.WithContext(ctx).First(&component, "part_number = ?", partNumber).Error; err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Component{}, "id = ?", id).Error
}

// sortColumns whitelists the sortable fields exposed by the listing API.
var sortColumns = map[string]string{
	"name":       "name",
	"partNumber": "part_number",
	"quantity":   "quantity",
	"unitPrice":  "unit_price",
	"category":   "category",
	"location":   "location",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.PageParams, now time.Time) (*ComponentList, error) {
	params = params.Normalize()
	query := r.applyListFilters(r.db.WithContext(ctx).Model(&models.Component{}), filters, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	order := "created_at DESC"
	if col, ok := sortColumns[filters.SortBy]; ok {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		order = col + " " + direction
	}

	var items []models.Component
	err := query.
		Order(order).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ComponentList{
		Items:      items,
		Pagination: pagination.NewPageMeta(params, len(items), total),
	}, nil
}

func (r *repository) applyListFilters(query *gorm.DB, filters ListFilters, now time.Time) *gorm.DB {
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(part_number) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Location != "" {
		query = query.Where("LOWER(location) LIKE LOWER(?)", "%"+filters.Location+"%")
	}
	if filters.Manufacturer != "" {
		query = query.Where("LOWER(manufacturer) LIKE LOWER(?)", "%"+filters.Manufacturer+"%")
	}
	if filters.MinQuantity != nil {
		query = query.Where("quantity >= ?", *filters.MinQuantity)
	}
	if filters.MaxQuantity != nil {
		query = query.Where("quantity <= ?", *filters.MaxQuantity)
	}
	if filters.LowStock {
		query = query.Where("quantity <= critical_low_threshold")
	}
	if filters.OldStock {
		cutoff := now.AddDate(0, -3, 0)
		query = query.Where(
			"last_outward_movement < ? OR (last_outward_movement IS NULL AND created_at < ?)",
			cutoff, cutoff,
		)
	}
	return query
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Component, error) {
	var items []models.Component
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ComponentStatusActive).
		Where("quantity <= critical_low_threshold").
		Order("quantity ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListOldStock(ctx context.Context, cutoff time.Time) ([]models.Component, error) {
	var items []models.Component
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ComponentStatusActive).
		Where(
			"last_outward_movement < ? OR (last_outward_movement IS NULL AND created_at < ?)",
			cutoff, cutoff,
		).
		Order("last_outward_movement ASC NULLS FIRST").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListForExport(ctx context.Context, filters ExportFilters) ([]models.Component, error) {
	query := r.db.WithContext(ctx).Model(&models.Component{})
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.LowStock {
		query = query.Where("quantity <= critical_low_threshold")
	}

	var items []models.Component
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CountLedgerEntries(ctx context.Context, componentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLog{}).
		Where("component_id = ?", componentID).
		Count(&count).Error
	return count, err
}

func (r *repository) Categories(ctx context.Context) ([]CategorySummary, error) {
	var rows []CategorySummary
	err := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(quantity * unit_price), 0) AS total_value").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Locations(ctx context.Context) ([]LocationSummary, error) {
	var rows []LocationSummary
	err := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Select("location, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Group("location").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
