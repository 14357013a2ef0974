package components

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// CreateComponentInput captures the fields accepted when registering a part.
type CreateComponentInput struct {
	Name                 string          `json:"name" validate:"required"`
	Manufacturer         string          `json:"manufacturer" validate:"required"`
	PartNumber           string          `json:"partNumber" validate:"required"`
	Description          string          `json:"description" validate:"required"`
	Quantity             int             `json:"quantity" validate:"gte=0"`
	Location             string          `json:"location" validate:"required"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	DatasheetLink        *string         `json:"datasheetLink,omitempty" validate:"omitempty,url"`
	Category             string          `json:"category" validate:"required"`
	CriticalLowThreshold int             `json:"criticalLowThreshold" validate:"gte=0"`
	Tags                 []string        `json:"tags,omitempty"`
}

// UpdateComponentInput carries partial edits. Nil fields are left untouched.
// Quantity is deliberately absent: it only moves through stock operations.
type UpdateComponentInput struct {
	Name                 *string                `json:"name,omitempty"`
	Manufacturer         *string                `json:"manufacturer,omitempty"`
	Description          *string                `json:"description,omitempty"`
	Location             *string                `json:"location,omitempty"`
	UnitPrice            *decimal.Decimal       `json:"unitPrice,omitempty"`
	DatasheetLink        *string                `json:"datasheetLink,omitempty" validate:"omitempty,url"`
	Category             *string                `json:"category,omitempty"`
	CriticalLowThreshold *int                   `json:"criticalLowThreshold,omitempty" validate:"omitempty,gte=0"`
	Tags                 []string               `json:"tags,omitempty"`
	Status               *enums.ComponentStatus `json:"status,omitempty"`
}

// ListFilters describe the supported filter knobs for the component listing.
type ListFilters struct {
	Search       string                 `json:"search,omitempty"`
	Category     *string                `json:"category,omitempty"`
	Status       *enums.ComponentStatus `json:"status,omitempty"`
	Location     string                 `json:"location,omitempty"`
	Manufacturer string                 `json:"manufacturer,omitempty"`
	MinQuantity  *int                   `json:"minQuantity,omitempty"`
	MaxQuantity  *int                   `json:"maxQuantity,omitempty"`
	LowStock     bool                   `json:"lowStock,omitempty"`
	OldStock     bool                   `json:"oldStock,omitempty"`
	SortBy       string                 `json:"sortBy,omitempty"`
	SortDesc     bool                   `json:"sortDesc,omitempty"`
}

// ComponentList is one page of components plus paging metadata.
type ComponentList struct {
	Items      []models.Component  `json:"items"`
	Pagination pagination.PageMeta `json:"pagination"`
}

// ComponentDetail pairs a component with its most recent ledger entries.
type ComponentDetail struct {
	Component          *models.Component       `json:"component"`
	RecentTransactions []models.TransactionLog `json:"recentTransactions"`
}

// DeleteOutcome reports whether a delete removed or discontinued the record.
type DeleteOutcome struct {
	Discontinued bool   `json:"discontinued"`
	Message      string `json:"message"`
}

// CategorySummary aggregates inventory by category.
type CategorySummary struct {
	Category      string          `json:"category"`
	Count         int             `json:"count"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// LocationSummary aggregates inventory by storage location.
type LocationSummary struct {
	Location      string `json:"location"`
	Count         int    `json:"count"`
	TotalQuantity int    `json:"totalQuantity"`
}

// BulkImportResult reports per-row outcomes of a bulk import.
type BulkImportResult struct {
	Successful []BulkImportSuccess `json:"successful"`
	Failed     []BulkImportFailure `json:"failed"`
}

// BulkImportSuccess records one imported row.
type BulkImportSuccess struct {
	Index     int               `json:"index"`
	Component *models.Component `json:"component"`
}

// BulkImportFailure records one rejected row with the reason.
type BulkImportFailure struct {
	Index int                  `json:"index"`
	Input CreateComponentInput `json:"input"`
	Error string               `json:"error"`
}

// ExportRow is one flattened component for CSV-shaped export.
type ExportRow struct {
	Name                 string          `json:"name"`
	PartNumber           string          `json:"partNumber"`
	Manufacturer         string          `json:"manufacturer"`
	Category             string          `json:"category"`
	Description          string          `json:"description"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	TotalValue           decimal.Decimal `json:"totalValue"`
	Location             string          `json:"location"`
	CriticalLowThreshold int             `json:"criticalLowThreshold"`
	Status               string          `json:"status"`
	Tags                 string          `json:"tags"`
	DatasheetLink        string          `json:"datasheetLink"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ExportFilters narrow the export the same way the listing does.
type ExportFilters struct {
	Category *string
	Status   *enums.ComponentStatus
	LowStock bool
}

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// PredefinedCategories is the stock set of part categories offered to the UI.
var PredefinedCategories = []string{
	"Resistors",
	"Capacitors",
	"Inductors",
	"Diodes",
	"Transistors",
	"Integrated Circuits (ICs)",
	"Connectors",
	"Sensors",
	"Microcontrollers/Development Boards",
	"Switches/Buttons",
	"LEDs/Displays",
	"Cables/Wires",
	"Mechanical Parts/Hardware",
	"Miscellaneous Lab Supplies",
}
