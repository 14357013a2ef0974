package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

// Repository runs the aggregate report queries. Reports read committed
// state only; nothing here mutates.
type Repository interface {
	Overview(ctx context.Context, now time.Time) (*Overview, error)
	MovementTotals(ctx context.Context, window TimeWindow) (*MonthlyStat, error)
	DailyTrends(ctx context.Context, window TimeWindow) ([]DailyTrend, error)
	TopByUsage(ctx context.Context, since time.Time, limit int) ([]TopUsageRow, error)
	TopComponents(ctx context.Context, orderBy string, limit int) ([]models.Component, error)
	UserActivity(ctx context.Context, since time.Time) ([]UserActivityRow, error)
	Alerts(ctx context.Context, now time.Time) (*AlertsReport, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) components(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Component{})
}

func (r *repository) ledger(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.TransactionLog{})
}

func (r *repository) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	overview := &Overview{}

	if err := r.components(ctx).Count(&overview.TotalComponents).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Quantity *int64
		Value    *float64
	}
	err := r.components(ctx).
		Select("SUM(quantity) AS quantity, SUM(quantity * unit_price) AS value").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	if totals.Quantity != nil {
		overview.TotalQuantity = *totals.Quantity
	}
	overview.TotalInventoryValue = floatToDecimal(totals.Value)

	err = r.components(ctx).
		Where("status = ? AND quantity <= critical_low_threshold", enums.ComponentStatusActive).
		Count(&overview.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	cutoff := alerts.Cutoff(now)
	err = r.components(ctx).
		Where("status = ? AND (last_outward_movement < ? OR (last_outward_movement IS NULL AND created_at < ?))",
			enums.ComponentStatusActive, cutoff, cutoff).
		Count(&overview.OldStockCount).Error
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var inwardToday *int64
	err = r.ledger(ctx).
		Select("SUM(quantity)").
		Where("operation_type = ? AND transaction_date >= ? AND transaction_date < ?",
			enums.OperationTypeInward, dayStart, dayStart.AddDate(0, 0, 1)).
		Scan(&inwardToday).Error
	if err != nil {
		return nil, err
	}
	if inwardToday != nil {
		overview.InwardToday = *inwardToday
	}

	return overview, nil
}

// MovementTotals aggregates one window of ledger activity. Callers slice a
// year into months to build the monthly report.
func (r *repository) MovementTotals(ctx context.Context, window TimeWindow) (*MonthlyStat, error) {
	var row struct {
		InwardQuantity   *int64
		OutwardQuantity  *int64
		InwardValue      *float64
		OutwardValue     *float64
		TransactionCount int64
	}
	err := r.ledger(ctx).
		Select(`
			SUM(CASE WHEN operation_type = 'inward' THEN quantity ELSE 0 END) AS inward_quantity,
			SUM(CASE WHEN operation_type = 'outward' THEN quantity ELSE 0 END) AS outward_quantity,
			SUM(CASE WHEN operation_type = 'inward' THEN total_cost ELSE 0 END) AS inward_value,
			SUM(CASE WHEN operation_type = 'outward' THEN total_cost ELSE 0 END) AS outward_value,
			COUNT(*) AS transaction_count`).
		Where("transaction_date >= ? AND transaction_date < ?", window.From, window.To).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stat := &MonthlyStat{
		InwardValue:      floatToDecimal(row.InwardValue),
		OutwardValue:     floatToDecimal(row.OutwardValue),
		TransactionCount: row.TransactionCount,
	}
	if row.InwardQuantity != nil {
		stat.InwardQuantity = *row.InwardQuantity
	}
	if row.OutwardQuantity != nil {
		stat.OutwardQuantity = *row.OutwardQuantity
	}
	return stat, nil
}

func (r *repository) DailyTrends(ctx context.Context, window TimeWindow) ([]DailyTrend, error) {
	var rows []struct {
		Day               string
		InwardQuantity    *int64
		OutwardQuantity   *int64
		InwardValue       *float64
		OutwardValue      *float64
		TotalTransactions int64
	}
	err := r.ledger(ctx).
		Select(`
			DATE(created_at) AS day,
			SUM(CASE WHEN operation_type = 'inward' THEN quantity ELSE 0 END) AS inward_quantity,
			SUM(CASE WHEN operation_type = 'outward' THEN quantity ELSE 0 END) AS outward_quantity,
			SUM(CASE WHEN operation_type = 'inward' THEN total_cost ELSE 0 END) AS inward_value,
			SUM(CASE WHEN operation_type = 'outward' THEN total_cost ELSE 0 END) AS outward_value,
			COUNT(*) AS total_transactions`).
		Where("created_at >= ? AND created_at < ?", window.From, window.To).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	trends := make([]DailyTrend, 0, len(rows))
	for _, row := range rows {
		trend := DailyTrend{
			Date:              row.Day,
			InwardValue:       floatToDecimal(row.InwardValue),
			OutwardValue:      floatToDecimal(row.OutwardValue),
			TotalTransactions: row.TotalTransactions,
		}
		if row.InwardQuantity != nil {
			trend.InwardQuantity = *row.InwardQuantity
		}
		if row.OutwardQuantity != nil {
			trend.OutwardQuantity = *row.OutwardQuantity
		}
		trends = append(trends, trend)
	}
	return trends, nil
}

func (r *repository) TopByUsage(ctx context.Context, since time.Time, limit int) ([]TopUsageRow, error) {
	var rows []struct {
		ComponentID      string
		Name             string
		PartNumber       string
		TotalQuantity    int64
		TransactionCount int64
		TotalValue       *float64
	}
	err := r.ledger(ctx).
		Select(`
			transaction_logs.component_id AS component_id,
			components.name AS name,
			components.part_number AS part_number,
			SUM(transaction_logs.quantity) AS total_quantity,
			COUNT(*) AS transaction_count,
			SUM(transaction_logs.total_cost) AS total_value`).
		Joins("JOIN components ON components.id = transaction_logs.component_id").
		Where("transaction_logs.operation_type = ? AND transaction_logs.created_at >= ?", enums.OperationTypeOutward, since).
		Group("transaction_logs.component_id, components.name, components.part_number").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usage := make([]TopUsageRow, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ComponentID)
		if err != nil {
			return nil, err
		}
		usage = append(usage, TopUsageRow{
			ComponentID:      id,
			Name:             row.Name,
			PartNumber:       row.PartNumber,
			TotalQuantity:    row.TotalQuantity,
			TransactionCount: row.TransactionCount,
			TotalValue:       floatToDecimal(row.TotalValue),
		})
	}
	return usage, nil
}

// TopComponents ranks active components by the given expression, either
// "quantity" or the inventory value product.
func (r *repository) TopComponents(ctx context.Context, orderBy string, limit int) ([]models.Component, error) {
	var items []models.Component
	err := r.components(ctx).
		Where("status = ?", enums.ComponentStatusActive).
		Order(orderBy).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repository) UserActivity(ctx context.Context, since time.Time) ([]UserActivityRow, error) {
	var rows []struct {
		UserID               string
		UserName             string
		UserRole             string
		InwardTransactions   int64
		OutwardTransactions  int64
		TotalQuantityHandled int64
		TotalValueHandled    *float64
	}
	err := r.ledger(ctx).
		Select(`
			transaction_logs.user_id AS user_id,
			users.name AS user_name,
			users.role AS user_role,
			SUM(CASE WHEN transaction_logs.operation_type = 'inward' THEN 1 ELSE 0 END) AS inward_transactions,
			SUM(CASE WHEN transaction_logs.operation_type = 'outward' THEN 1 ELSE 0 END) AS outward_transactions,
			SUM(transaction_logs.quantity) AS total_quantity_handled,
			SUM(transaction_logs.total_cost) AS total_value_handled`).
		Joins("JOIN users ON users.id = transaction_logs.user_id").
		Where("transaction_logs.created_at >= ?", since).
		Group("transaction_logs.user_id, users.name, users.role").
		Order("(SUM(CASE WHEN transaction_logs.operation_type = 'inward' THEN 1 ELSE 0 END) + SUM(CASE WHEN transaction_logs.operation_type = 'outward' THEN 1 ELSE 0 END)) DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	activity := make([]UserActivityRow, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.UserID)
		if err != nil {
			return nil, err
		}
		activity = append(activity, UserActivityRow{
			UserID:               id,
			UserName:             row.UserName,
			UserRole:             enums.Role(row.UserRole),
			InwardTransactions:   row.InwardTransactions,
			OutwardTransactions:  row.OutwardTransactions,
			TotalTransactions:    row.InwardTransactions + row.OutwardTransactions,
			TotalQuantityHandled: row.TotalQuantityHandled,
			TotalValueHandled:    floatToDecimal(row.TotalValueHandled),
		})
	}
	return activity, nil
}

func (r *repository) Alerts(ctx context.Context, now time.Time) (*AlertsReport, error) {
	report := &AlertsReport{}

	err := r.components(ctx).
		Where("status = ? AND quantity <= critical_low_threshold", enums.ComponentStatusActive).
		Order("quantity ASC").
		Limit(20).
		Find(&report.LowStock).Error
	if err != nil {
		return nil, err
	}

	cutoff := alerts.Cutoff(now)
	err = r.components(ctx).
		Where("status = ? AND quantity > 0 AND (last_outward_movement < ? OR (last_outward_movement IS NULL AND created_at < ?))",
			enums.ComponentStatusActive, cutoff, cutoff).
		Order("last_outward_movement ASC").
		Limit(20).
		Find(&report.OldStock).Error
	if err != nil {
		return nil, err
	}

	err = r.ledger(ctx).
		Where("operation_type = ? AND quantity >= ? AND approved_by IS NULL",
			enums.OperationTypeOutward, 100).
		Order("created_at DESC").
		Limit(10).
		Find(&report.PendingApprovals).Error
	if err != nil {
		return nil, err
	}

	err = r.components(ctx).
		Where("status = ? AND quantity = 0", enums.ComponentStatusActive).
		Order("name ASC").
		Limit(20).
		Find(&report.ZeroStock).Error
	if err != nil {
		return nil, err
	}

	report.Summary = AlertsSummary{
		LowStockCount:         len(report.LowStock),
		OldStockCount:         len(report.OldStock),
		PendingApprovalsCount: len(report.PendingApprovals),
		ZeroStockCount:        len(report.ZeroStock),
	}
	return report, nil
}

func (r *repository) SystemStats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}

	componentCounts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Components.Total, r.components(ctx)},
		{&stats.Components.Active, r.components(ctx).Where("status = ?", enums.ComponentStatusActive)},
		{&stats.Components.Discontinued, r.components(ctx).Where("status = ?", enums.ComponentStatusDiscontinued)},
		{&stats.Components.Obsolete, r.components(ctx).Where("status = ?", enums.ComponentStatusObsolete)},
		{&stats.Users.Total, r.db.WithContext(ctx).Model(&models.User{})},
		{&stats.Users.Active, r.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true)},
		{&stats.Users.Inactive, r.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", false)},
		{&stats.Transactions.Total, r.ledger(ctx)},
		{&stats.Notifications.Total, r.db.WithContext(ctx).Model(&models.Notification{})},
		{&stats.Notifications.Archived, r.db.WithContext(ctx).Model(&models.Notification{}).Where("is_archived = ?", true)},
	}
	for _, count := range componentCounts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return nil, err
		}
	}

	var categories []struct {
		Category       string
		ComponentCount int64
		TotalQuantity  int64
		TotalValue     *float64
	}
	err := r.components(ctx).
		Select("category, COUNT(*) AS component_count, SUM(quantity) AS total_quantity, SUM(quantity * unit_price) AS total_value").
		Group("category").
		Order("total_value DESC").
		Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	for _, row := range categories {
		stats.StorageByCategory = append(stats.StorageByCategory, CategoryUsage{
			Category:       row.Category,
			ComponentCount: row.ComponentCount,
			TotalQuantity:  row.TotalQuantity,
			TotalValue:     floatToDecimal(row.TotalValue),
		})
	}

	var roles []struct {
		Role        string
		Count       int64
		ActiveCount int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count, SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS active_count").
		Group("role").
		Order("count DESC").
		Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	for _, row := range roles {
		stats.UsersByRole = append(stats.UsersByRole, RoleCount{
			Role:        enums.Role(row.Role),
			Count:       row.Count,
			ActiveCount: row.ActiveCount,
		})
	}

	return stats, nil
}

func floatToDecimal(value *float64) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*value)
}
