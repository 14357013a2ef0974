package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

// RecordInput carries everything needed to append one ledger entry.
type RecordInput struct {
	ComponentID     uuid.UUID
	UserID          uuid.UUID
	OperationType   enums.OperationType
	Quantity        int
	QuantityBefore  int
	QuantityAfter   int
	ReasonOrProject string
	Notes           *string
	BatchNumber     *string
	SupplierInvoice *string
	UnitCost        *decimal.Decimal
	TotalCost       *decimal.Decimal
	ApprovedBy      *uuid.UUID
	TransactionDate time.Time
}

// HistoryFilters narrow transaction listings.
type HistoryFilters struct {
	ComponentID   *uuid.UUID
	UserID        *uuid.UUID
	OperationType *enums.OperationType
	StartDate     *time.Time
	EndDate       *time.Time
}

// TransactionList is one cursor page of ledger entries, newest first.
type TransactionList struct {
	Items      []models.TransactionLog `json:"items"`
	HasMore    bool                    `json:"hasMore"`
	NextCursor string                  `json:"nextCursor,omitempty"`
}

// MovementStats aggregates ledger activity over a date range.
type MovementStats struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	InwardCount     int             `json:"inwardCount"`
	OutwardCount    int             `json:"outwardCount"`
	InwardQuantity  int             `json:"inwardQuantity"`
	OutwardQuantity int             `json:"outwardQuantity"`
	TotalCost       decimal.Decimal `json:"totalCost"`
}
