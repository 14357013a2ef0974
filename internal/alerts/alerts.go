package alerts

import (
	"time"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

// OldStockMonths is how many calendar months a component may sit without
// outward movement before it counts as old stock.
const OldStockMonths = 3

// CriticallyLow reports whether the component's quantity has fallen to or
// below its critical threshold. Only Active components alert.
func CriticallyLow(c *models.Component) bool {
	if c == nil || c.Status != enums.ComponentStatusActive {
		return false
	}
	return c.Quantity <= c.CriticalLowThreshold
}

// OldStock reports whether the component has had no outward movement inside
// the window. Components that never moved fall back to their creation time.
func OldStock(c *models.Component, now time.Time) bool {
	if c == nil || c.Status != enums.ComponentStatusActive {
		return false
	}
	cutoff := Cutoff(now)
	if c.LastOutwardMovement != nil {
		return c.LastOutwardMovement.Before(cutoff)
	}
	return c.CreatedAt.Before(cutoff)
}

// Cutoff returns the moment before which stock counts as old.
func Cutoff(now time.Time) time.Time {
	return now.AddDate(0, -OldStockMonths, 0)
}

// MonthsSince counts the whole calendar months between from and now, using
// the same AddDate arithmetic as Cutoff.
func MonthsSince(from, now time.Time) int {
	if !from.Before(now) {
		return 0
	}
	months := (now.Year()-from.Year())*12 + int(now.Month()) - int(from.Month())
	if months > 0 && now.AddDate(0, -months, 0).Before(from) {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}
