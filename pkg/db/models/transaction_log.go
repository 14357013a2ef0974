package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/enums"
)

// TransactionLog records one immutable stock movement with its before/after
// snapshot. Rows are append-only; no update or delete path exists.
type TransactionLog struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ComponentID     uuid.UUID           `gorm:"column:component_id;type:uuid;not null;index" json:"componentId"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	OperationType   enums.OperationType `gorm:"column:operation_type;type:operation_type;not null" json:"operationType"`
	Quantity        int                 `gorm:"column:quantity;not null" json:"quantity"`
	QuantityBefore  int                 `gorm:"column:quantity_before;not null" json:"quantityBefore"`
	QuantityAfter   int                 `gorm:"column:quantity_after;not null" json:"quantityAfter"`
	ReasonOrProject string              `gorm:"column:reason_or_project;type:text;not null" json:"reasonOrProject"`
	Notes           *string             `gorm:"column:notes;type:text" json:"notes,omitempty"`
	BatchNumber     *string             `gorm:"column:batch_number;type:text" json:"batchNumber,omitempty"`
	SupplierInvoice *string             `gorm:"column:supplier_invoice;type:text" json:"supplierInvoice,omitempty"`
	UnitCost        *decimal.Decimal    `gorm:"column:unit_cost;type:numeric(12,2)" json:"unitCost,omitempty"`
	TotalCost       *decimal.Decimal    `gorm:"column:total_cost;type:numeric(14,2)" json:"totalCost,omitempty"`
	ApprovedBy      *uuid.UUID          `gorm:"column:approved_by;type:uuid" json:"approvedBy,omitempty"`
	TransactionDate time.Time           `gorm:"column:transaction_date;type:timestamptz;not null" json:"transactionDate"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// NeedsApproval reports whether this entry is a large outward movement that
// still lacks an approver.
func (t TransactionLog) NeedsApproval() bool {
	return t.OperationType == enums.OperationTypeOutward && t.Quantity >= 100 && t.ApprovedBy == nil
}
