package components

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:components_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	componentsTable := `
CREATE TABLE IF NOT EXISTS components (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  manufacturer TEXT NOT NULL,
  part_number TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  location TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  datasheet_link TEXT,
  category TEXT NOT NULL,
  critical_low_threshold INTEGER NOT NULL DEFAULT 0,
  tags TEXT,
  status TEXT NOT NULL DEFAULT 'Active',
  last_outward_movement DATETIME,
  total_inward INTEGER NOT NULL DEFAULT 0,
  total_outward INTEGER NOT NULL DEFAULT 0,
  added_by TEXT NOT NULL,
  last_modified_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactionLogs := `
CREATE TABLE IF NOT EXISTS transaction_logs (
  id TEXT PRIMARY KEY,
  component_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  operation_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  quantity_before INTEGER NOT NULL,
  quantity_after INTEGER NOT NULL,
  reason_or_project TEXT NOT NULL,
  notes TEXT,
  batch_number TEXT,
  supplier_invoice TEXT,
  unit_cost NUMERIC,
  total_cost NUMERIC,
  approved_by TEXT,
  transaction_date DATETIME NOT NULL,
  created_at DATETIME
);`

	for _, stmt := range []string{componentsTable, transactionLogs} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}
