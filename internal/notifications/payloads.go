package notifications

import "time"

// LowStockPayload is the data attached to a low_stock notification.
type LowStockPayload struct {
	CurrentQuantity int    `json:"currentQuantity"`
	Threshold       int    `json:"threshold"`
	Location        string `json:"location"`
	PartNumber      string `json:"partNumber"`
}

// OldStockPayload is the data attached to an old_stock notification.
type OldStockPayload struct {
	MonthsWithoutMovement int        `json:"monthsWithoutMovement"`
	CurrentQuantity       int        `json:"currentQuantity"`
	Location              string     `json:"location"`
	PartNumber            string     `json:"partNumber"`
	LastOutwardMovement   *time.Time `json:"lastOutwardMovement,omitempty"`
}

// HighUsagePayload is the data attached to a high_usage notification.
type HighUsagePayload struct {
	QuantityUsed    int    `json:"quantityUsed"`
	WindowDays      int    `json:"windowDays"`
	CurrentQuantity int    `json:"currentQuantity"`
	PartNumber      string `json:"partNumber"`
}

// ApprovalNeededPayload is the data attached to an approval_needed
// notification.
type ApprovalNeededPayload struct {
	Quantity   int    `json:"quantity"`
	PartNumber string `json:"partNumber"`
	Location   string `json:"location"`
}

// SummaryPayload is the data attached to the daily summary notification.
type SummaryPayload struct {
	LowStockCount int `json:"lowStockCount"`
	OldStockCount int `json:"oldStockCount"`
}
