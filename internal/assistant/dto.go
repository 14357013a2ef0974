package assistant

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/enums"
)

// ChatMessage is one prior turn of the conversation, replayed to the model
// so follow-up questions keep their context.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history" validate:"dive"`
}

type ChatResponse struct {
	Output string `json:"output"`
}

// MovementRow is one recent ledger entry joined with its component, enough
// to describe the movement in prose.
type MovementRow struct {
	OperationType   enums.OperationType
	Quantity        int
	ReasonOrProject string
	TransactionDate time.Time
	ComponentName   string
	PartNumber      string
}

// inventoryStats is the aggregate block fed into the system instructions.
type inventoryStats struct {
	TotalComponents   int
	TotalQuantity     int
	LowStockItems     int
	CriticalItems     int
	TotalValue        decimal.Decimal
	ActiveComponents  int
	Discontinued      int
	OldStockItems     int
	TotalInward       int
	TotalOutward      int
	AverageUnitPrice  decimal.Decimal
	Categories        []string
	RecentTxCount     int
}
