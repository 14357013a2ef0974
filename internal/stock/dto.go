package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/types"
)

// Actor is the authenticated user performing a stock movement.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// InwardInput describes a stock receipt.
type InwardInput struct {
	ComponentID     uuid.UUID        `json:"componentId,omitempty"`
	Quantity        int              `json:"quantity" validate:"required,gte=1"`
	Reason          string           `json:"reason"`
	Notes           *string          `json:"notes,omitempty"`
	BatchNumber     *string          `json:"batchNumber,omitempty"`
	SupplierInvoice *string          `json:"supplierInvoice,omitempty"`
	UnitCost        *decimal.Decimal `json:"unitCost,omitempty"`
	TotalCost       *decimal.Decimal `json:"totalCost,omitempty"`
	TransactionDate time.Time        `json:"transactionDate,omitempty"`
}

// OutwardInput describes a stock issue. ApprovedBy keeps the distinction
// between a key that was never sent and an explicit null, since a null from
// a privileged actor leaves the movement pending approval.
type OutwardInput struct {
	ComponentID     uuid.UUID          `json:"componentId,omitempty"`
	Quantity        int                `json:"quantity" validate:"required,gte=1"`
	Reason          string             `json:"reason" validate:"required"`
	Notes           *string            `json:"notes,omitempty"`
	ApprovedBy      types.NullableUUID `json:"approvedBy"`
	TransactionDate time.Time          `json:"transactionDate,omitempty"`
}

// MovementResult is the state after a committed stock movement.
type MovementResult struct {
	Component   *models.Component      `json:"component"`
	Transaction *models.TransactionLog `json:"transaction"`
}
