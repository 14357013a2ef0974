package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

// Overview is the headline dashboard card data.
type Overview struct {
	TotalComponents     int64           `json:"totalComponents"`
	TotalQuantity       int64           `json:"totalQuantity"`
	LowStockCount       int64           `json:"lowStockCount"`
	OldStockCount       int64           `json:"oldStockCount"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	InwardToday         int64           `json:"totalInward"`
}

// MonthlyStat aggregates one calendar month of ledger activity.
type MonthlyStat struct {
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	MonthName        string          `json:"monthName"`
	InwardQuantity   int64           `json:"inwardQuantity"`
	OutwardQuantity  int64           `json:"outwardQuantity"`
	InwardValue      decimal.Decimal `json:"inwardValue"`
	OutwardValue     decimal.Decimal `json:"outwardValue"`
	TransactionCount int64           `json:"transactionCount"`
}

// DailyTrend aggregates one day of ledger activity.
type DailyTrend struct {
	Date              string          `json:"date"`
	InwardQuantity    int64           `json:"inwardQuantity"`
	OutwardQuantity   int64           `json:"outwardQuantity"`
	InwardValue       decimal.Decimal `json:"inwardValue"`
	OutwardValue      decimal.Decimal `json:"outwardValue"`
	TotalTransactions int64           `json:"totalTransactions"`
}

// TopUsageRow ranks a component by outward quantity over a window.
type TopUsageRow struct {
	ComponentID      uuid.UUID       `json:"componentId"`
	Name             string          `json:"name"`
	PartNumber       string          `json:"partNumber"`
	TotalQuantity    int64           `json:"totalQuantity"`
	TransactionCount int64           `json:"transactionCount"`
	TotalValue       decimal.Decimal `json:"totalValue"`
}

// TopComponentsKind selects the ranking for the top components report.
type TopComponentsKind string

const (
	TopByUsage    TopComponentsKind = "usage"
	TopByValue    TopComponentsKind = "value"
	TopByQuantity TopComponentsKind = "quantity"
)

// TopComponents holds one of the three rankings. Usage is populated for
// TopByUsage; Components for the other two kinds.
type TopComponents struct {
	Kind       TopComponentsKind  `json:"kind"`
	Usage      []TopUsageRow      `json:"usage,omitempty"`
	Components []models.Component `json:"components,omitempty"`
}

// UserActivityRow aggregates one user's ledger activity over a window.
type UserActivityRow struct {
	UserID               uuid.UUID       `json:"userId"`
	UserName             string          `json:"userName"`
	UserRole             enums.Role      `json:"userRole"`
	InwardTransactions   int64           `json:"inwardTransactions"`
	OutwardTransactions  int64           `json:"outwardTransactions"`
	TotalTransactions    int64           `json:"totalTransactions"`
	TotalQuantityHandled int64           `json:"totalQuantityHandled"`
	TotalValueHandled    decimal.Decimal `json:"totalValueHandled"`
}

// AlertsSummary counts each alert bucket.
type AlertsSummary struct {
	LowStockCount         int `json:"lowStockCount"`
	OldStockCount         int `json:"oldStockCount"`
	PendingApprovalsCount int `json:"pendingApprovalsCount"`
	ZeroStockCount        int `json:"zeroStockCount"`
}

// AlertsReport collects everything that needs attention right now.
type AlertsReport struct {
	LowStock         []models.Component      `json:"lowStockComponents"`
	OldStock         []models.Component      `json:"oldStockComponents"`
	PendingApprovals []models.TransactionLog `json:"pendingApprovals"`
	ZeroStock        []models.Component      `json:"zeroStockComponents"`
	Summary          AlertsSummary           `json:"summary"`
}

// CategoryUsage breaks inventory down by category.
type CategoryUsage struct {
	Category       string          `json:"category"`
	ComponentCount int64           `json:"componentCount"`
	TotalQuantity  int64           `json:"totalQuantity"`
	TotalValue     decimal.Decimal `json:"totalValue"`
}

// RoleCount breaks the user base down by role.
type RoleCount struct {
	Role        enums.Role `json:"role"`
	Count       int64      `json:"count"`
	ActiveCount int64      `json:"activeCount"`
}

// SystemStats is the admin-only system health report.
type SystemStats struct {
	Components struct {
		Total        int64 `json:"total"`
		Active       int64 `json:"active"`
		Discontinued int64 `json:"discontinued"`
		Obsolete     int64 `json:"obsolete"`
	} `json:"components"`
	Users struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
	} `json:"users"`
	Transactions struct {
		Total int64 `json:"total"`
	} `json:"transactions"`
	Notifications struct {
		Total    int64 `json:"total"`
		Archived int64 `json:"archived"`
	} `json:"notifications"`
	StorageByCategory []CategoryUsage `json:"storageByCategory"`
	UsersByRole       []RoleCount     `json:"usersByRole"`
}

// TimeWindow is a half-open range used by the report queries.
type TimeWindow struct {
	From time.Time
	To   time.Time
}
