package alerts

import (
	"testing"
	"time"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

func TestCriticallyLow(t *testing.T) {
	cases := []struct {
		name string
		c    *models.Component
		want bool
	}{
		{"nil component", nil, false},
		{"above threshold", &models.Component{Status: enums.ComponentStatusActive, Quantity: 11, CriticalLowThreshold: 10}, false},
		{"at threshold", &models.Component{Status: enums.ComponentStatusActive, Quantity: 10, CriticalLowThreshold: 10}, true},
		{"below threshold", &models.Component{Status: enums.ComponentStatusActive, Quantity: 3, CriticalLowThreshold: 10}, true},
		{"zero quantity", &models.Component{Status: enums.ComponentStatusActive, Quantity: 0, CriticalLowThreshold: 0}, true},
		{"discontinued never alerts", &models.Component{Status: enums.ComponentStatusDiscontinued, Quantity: 0, CriticalLowThreshold: 10}, false},
		{"obsolete never alerts", &models.Component{Status: enums.ComponentStatusObsolete, Quantity: 0, CriticalLowThreshold: 10}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CriticallyLow(tc.c); got != tc.want {
				t.Fatalf("CriticallyLow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOldStock(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	fourMonthsAgo := now.AddDate(0, -4, 0)
	twoMonthsAgo := now.AddDate(0, -2, 0)

	cases := []struct {
		name string
		c    *models.Component
		want bool
	}{
		{"nil component", nil, false},
		{
			"stale outward movement",
			&models.Component{Status: enums.ComponentStatusActive, LastOutwardMovement: &fourMonthsAgo},
			true,
		},
		{
			"recent outward movement",
			&models.Component{Status: enums.ComponentStatusActive, LastOutwardMovement: &twoMonthsAgo},
			false,
		},
		{
			"never moved, old record",
			&models.Component{Status: enums.ComponentStatusActive, CreatedAt: fourMonthsAgo},
			true,
		},
		{
			"never moved, fresh record",
			&models.Component{Status: enums.ComponentStatusActive, CreatedAt: twoMonthsAgo},
			false,
		},
		{
			"recent movement outweighs old creation",
			&models.Component{Status: enums.ComponentStatusActive, CreatedAt: fourMonthsAgo, LastOutwardMovement: &twoMonthsAgo},
			false,
		},
		{
			"discontinued never alerts",
			&models.Component{Status: enums.ComponentStatusDiscontinued, LastOutwardMovement: &fourMonthsAgo},
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OldStock(tc.c, now); got != tc.want {
				t.Fatalf("OldStock = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCutoffExactBoundary(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	boundary := Cutoff(now)

	c := &models.Component{Status: enums.ComponentStatusActive, LastOutwardMovement: &boundary}
	if OldStock(c, now) {
		t.Fatal("movement exactly at the cutoff should not count as old")
	}

	justBefore := boundary.Add(-time.Second)
	c.LastOutwardMovement = &justBefore
	if !OldStock(c, now) {
		t.Fatal("movement one second before the cutoff should count as old")
	}
}

func TestMonthsSince(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		from time.Time
		want int
	}{
		{"same instant", now, 0},
		{"future", now.AddDate(0, 1, 0), 0},
		{"under a month", now.AddDate(0, 0, -20), 0},
		{"exactly three months", now.AddDate(0, -3, 0), 3},
		{"day short of three months", now.AddDate(0, -3, 1), 2},
		{"across a year boundary", time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), 9},
		// 180 days is six 30-day blocks but only five calendar months here.
		{"long months do not inflate the count", now.AddDate(0, 0, -180), 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonthsSince(tc.from, now); got != tc.want {
				t.Fatalf("MonthsSince = %d, want %d", got, tc.want)
			}
		})
	}
}
