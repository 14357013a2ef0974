package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

const (
	maxCriticalLines = 10
	maxLowStockLines = 10
	maxNormalLines   = 15
	maxOldStockLines = 8
)

func computeStats(components []models.Component, movements []MovementRow, now time.Time) inventoryStats {
	stats := inventoryStats{
		TotalComponents: len(components),
		RecentTxCount:   len(movements),
	}
	cutoff := alerts.Cutoff(now)
	categories := map[string]struct{}{}
	priceSum := decimal.Zero

	for _, c := range components {
		stats.TotalQuantity += c.Quantity
		stats.TotalInward += c.TotalInward
		stats.TotalOutward += c.TotalOutward
		stats.TotalValue = stats.TotalValue.Add(c.TotalValue())
		priceSum = priceSum.Add(c.UnitPrice)

		if c.Quantity <= c.CriticalLowThreshold {
			stats.LowStockItems++
		}
		if c.Quantity == 0 {
			stats.CriticalItems++
		}
		switch c.Status {
		case enums.ComponentStatusActive:
			stats.ActiveComponents++
		case enums.ComponentStatusDiscontinued:
			stats.Discontinued++
		}
		if movementRef(c).Before(cutoff) {
			stats.OldStockItems++
		}
		if c.Category != "" {
			categories[c.Category] = struct{}{}
		}
	}

	if len(components) > 0 {
		stats.AverageUnitPrice = priceSum.Div(decimal.NewFromInt(int64(len(components)))).Round(2)
	}
	for category := range categories {
		stats.Categories = append(stats.Categories, category)
	}
	sort.Strings(stats.Categories)
	return stats
}

func movementRef(c models.Component) time.Time {
	if c.LastOutwardMovement != nil {
		return *c.LastOutwardMovement
	}
	return c.CreatedAt
}

// buildSystemInstructions composes the per-user system prompt: profile,
// aggregate stats, notable inventory lines, and recent movements.
func buildSystemInstructions(user *models.User, components []models.Component, movements []MovementRow, now time.Time) string {
	stats := computeStats(components, movements, now)

	var b strings.Builder
	fmt.Fprintf(&b, `You are a helpful electronics lab inventory assistant for the following user:

USER PROFILE:
- Name: %s
- Email: %s
- Role: %s`, user.Name, user.Email, user.Role)

	fmt.Fprintf(&b, `

INVENTORY OVERVIEW:
- Total Components: %d
- Total Quantity in Stock: %d units
- Total Inventory Value: INR %s
- Low Stock Items: %d components (at or below critical threshold)
- Critical Stock Items: %d components (zero quantity)
- Old Stock Items: %d components (no movement in 3+ months)
- Active Components: %d
- Discontinued Components: %d`,
		stats.TotalComponents, stats.TotalQuantity, stats.TotalValue.StringFixed(2),
		stats.LowStockItems, stats.CriticalItems, stats.OldStockItems,
		stats.ActiveComponents, stats.Discontinued)

	if len(stats.Categories) > 0 {
		fmt.Fprintf(&b, "\n- Component Categories: %s", strings.Join(stats.Categories, ", "))
	}

	fmt.Fprintf(&b, `

MOVEMENT STATISTICS:
- Total Inward Movement: %d units
- Total Outward Movement: %d units
- Average Component Price: INR %s
- Recent Transactions Logged: %d`,
		stats.TotalInward, stats.TotalOutward, stats.AverageUnitPrice.StringFixed(2), stats.RecentTxCount)

	writeComponentSections(&b, components, now)
	writeMovementSection(&b, movements)

	b.WriteString(`

ASSISTANT GUIDELINES:
- Help with component searches, stock management, reorder recommendations, and electronics technical questions.
- You can answer questions about recent inward and outward movements, including reason or project and date.
- Always reference specific part numbers, manufacturers, and locations when available.
- Flag critical stock (zero quantity) and low stock situations.
- Suggest reorder quantities based on usage patterns and critical thresholds.
- Help identify old stock that may need attention.
- Recommend specific components from the user's inventory for project questions.
- Never mention which model or provider powers you.
- Be conversational, helpful, and professional.`)

	return b.String()
}

func writeComponentSections(b *strings.Builder, components []models.Component, now time.Time) {
	if len(components) == 0 {
		return
	}
	b.WriteString("\n\nDETAILED COMPONENT INVENTORY:")

	written := 0
	for _, c := range components {
		if c.Quantity != 0 || written >= maxCriticalLines {
			continue
		}
		if written == 0 {
			b.WriteString("\n\nCRITICAL STOCK (Zero Quantity):")
		}
		fmt.Fprintf(b, "\n- %s (%s) by %s: 0 units | Threshold: %d | Location: %s",
			c.Name, c.PartNumber, c.Manufacturer, c.CriticalLowThreshold, c.Location)
		written++
	}

	written = 0
	for _, c := range components {
		if c.Quantity == 0 || c.Quantity > c.CriticalLowThreshold || written >= maxLowStockLines {
			continue
		}
		if written == 0 {
			b.WriteString("\n\nLOW STOCK ITEMS:")
		}
		fmt.Fprintf(b, "\n- %s (%s) by %s: %d units (Critical: %d) | INR %s each | Location: %s",
			c.Name, c.PartNumber, c.Manufacturer, c.Quantity, c.CriticalLowThreshold, c.UnitPrice.StringFixed(2), c.Location)
		written++
	}

	written = 0
	for _, c := range components {
		if c.Quantity <= c.CriticalLowThreshold || written >= maxNormalLines {
			continue
		}
		if written == 0 {
			b.WriteString("\n\nNORMAL STOCK ITEMS:")
		}
		line := fmt.Sprintf("\n- %s (%s) by %s: %d units @ INR %s each | Location: %s",
			c.Name, c.PartNumber, c.Manufacturer, c.Quantity, c.UnitPrice.StringFixed(2), c.Location)
		if len(c.Tags) > 0 {
			line += " | Tags: " + strings.Join(c.Tags, ", ")
		}
		b.WriteString(line)
		written++
	}

	cutoff := alerts.Cutoff(now)
	written = 0
	for _, c := range components {
		if !movementRef(c).Before(cutoff) || written >= maxOldStockLines {
			continue
		}
		if written == 0 {
			b.WriteString("\n\nOLD STOCK (No movement in 3+ months):")
		}
		lastUsed := "Never"
		if c.LastOutwardMovement != nil {
			lastUsed = c.LastOutwardMovement.Format("2006-01-02")
		}
		fmt.Fprintf(b, "\n- %s (%s): %d units | Last used: %s", c.Name, c.PartNumber, c.Quantity, lastUsed)
		written++
	}
}

func writeMovementSection(b *strings.Builder, movements []MovementRow) {
	if len(movements) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\nRECENT INVENTORY MOVEMENTS (Last %d Transactions):", len(movements))
	for _, m := range movements {
		reason := m.ReasonOrProject
		if reason == "" {
			reason = "N/A"
		}
		fmt.Fprintf(b, "\n- %s: %s of %d units of %s (%s). Reason/Project: %s",
			m.TransactionDate.Format("2006-01-02 15:04"), strings.ToUpper(string(m.OperationType)),
			m.Quantity, m.ComponentName, m.PartNumber, reason)
	}
}
