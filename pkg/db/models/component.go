package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/pkg/enums"
)

// Component is the current inventory state of one part. The quantity field
// is only ever mutated through the stock service; totalInward/totalOutward
// are monotonic counters.
type Component struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string                `gorm:"column:name;type:text;not null" json:"name"`
	Manufacturer         string                `gorm:"column:manufacturer;type:text;not null" json:"manufacturer"`
	PartNumber           string                `gorm:"column:part_number;type:text;not null;uniqueIndex" json:"partNumber"`
	Description          string                `gorm:"column:description;type:text;not null" json:"description"`
	Quantity             int                   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Location             string                `gorm:"column:location;type:text;not null" json:"location"`
	UnitPrice            decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	DatasheetLink        *string               `gorm:"column:datasheet_link;type:text" json:"datasheetLink,omitempty"`
	Category             string                `gorm:"column:category;type:text;not null" json:"category"`
	CriticalLowThreshold int                   `gorm:"column:critical_low_threshold;not null;default:0" json:"criticalLowThreshold"`
	Tags                 pq.StringArray        `gorm:"column:tags;type:text[]" json:"tags,omitempty"`
	Status               enums.ComponentStatus `gorm:"column:status;type:component_status;not null;default:'Active'" json:"status"`
	LastOutwardMovement  *time.Time            `gorm:"column:last_outward_movement;type:timestamptz" json:"lastOutwardMovement,omitempty"`
	TotalInward          int                   `gorm:"column:total_inward;not null;default:0" json:"totalInward"`
	TotalOutward         int                   `gorm:"column:total_outward;not null;default:0" json:"totalOutward"`
	AddedBy              uuid.UUID             `gorm:"column:added_by;type:uuid;not null" json:"addedBy"`
	LastModifiedBy       *uuid.UUID            `gorm:"column:last_modified_by;type:uuid" json:"lastModifiedBy,omitempty"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TotalValue is the stock valuation of this record.
func (c Component) TotalValue() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
