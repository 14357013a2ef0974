package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:assistant_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
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
);`, `
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
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedComponent(t *testing.T, db *gorm.DB, addedBy uuid.UUID, name string) *models.Component {
	t.Helper()
	component := &models.Component{
		ID:           uuid.New(),
		Name:         name,
		Manufacturer: "Texas Instruments",
		PartNumber:   name + "-" + uuid.NewString()[:8],
		Description:  "test part",
		Quantity:     10,
		Location:     "Shelf A1",
		Category:     "Integrated Circuits (ICs)",
		Status:       enums.ComponentStatusActive,
		AddedBy:      addedBy,
	}
	require.NoError(t, db.Create(component).Error)
	return component
}

func TestComponentsForUserScopesAndLimits(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	mine := uuid.New()
	someoneElse := uuid.New()

	for i := 0; i < 3; i++ {
		seedComponent(t, db, mine, "LM358")
	}
	seedComponent(t, db, someoneElse, "NE555")

	components, err := repo.ComponentsForUser(context.Background(), mine, 50)
	require.NoError(t, err)
	require.Len(t, components, 3)
	for _, c := range components {
		require.Equal(t, mine, c.AddedBy)
	}

	components, err = repo.ComponentsForUser(context.Background(), mine, 2)
	require.NoError(t, err)
	require.Len(t, components, 2)
}

func TestRecentMovementsJoinsAndOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	component := seedComponent(t, db, userID, "LM358")

	base := time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &models.TransactionLog{
			ID:              uuid.New(),
			ComponentID:     component.ID,
			UserID:          userID,
			OperationType:   enums.OperationTypeOutward,
			Quantity:        i + 1,
			QuantityBefore:  10,
			QuantityAfter:   10 - (i + 1),
			ReasonOrProject: "Bench testing",
			TransactionDate: base.AddDate(0, 0, i),
		}
		require.NoError(t, db.Create(entry).Error)
	}

	rows, err := repo.RecentMovements(context.Background(), userID, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 3, rows[0].Quantity)
	require.Equal(t, component.Name, rows[0].ComponentName)
	require.Equal(t, component.PartNumber, rows[0].PartNumber)
	require.True(t, rows[0].TransactionDate.After(rows[1].TransactionDate))

	rows, err = repo.RecentMovements(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}
