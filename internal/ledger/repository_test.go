package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stmt := `
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
	require.NoError(t, db.Exec(stmt).Error)
	return db
}

func seedEntry(t *testing.T, repo Repository, mutate func(*models.TransactionLog)) *models.TransactionLog {
	t.Helper()
	entry := &models.TransactionLog{
		ID:              uuid.New(),
		ComponentID:     uuid.New(),
		UserID:          uuid.New(),
		OperationType:   enums.OperationTypeInward,
		Quantity:        10,
		QuantityBefore:  0,
		QuantityAfter:   10,
		ReasonOrProject: "restock",
		TransactionDate: time.Now().UTC(),
	}
	if mutate != nil {
		mutate(entry)
	}
	created, err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	return created
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	componentID := uuid.New()
	userID := uuid.New()
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.ComponentID = componentID
		e.UserID = userID
	})
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.OperationType = enums.OperationTypeOutward
		e.QuantityBefore = 50
		e.QuantityAfter = 40
	})

	byComponent, err := repo.List(ctx, HistoryFilters{ComponentID: &componentID}, nil, 0)
	require.NoError(t, err)
	require.Len(t, byComponent, 1)

	outward := enums.OperationTypeOutward
	byOp, err := repo.List(ctx, HistoryFilters{OperationType: &outward}, nil, 0)
	require.NoError(t, err)
	require.Len(t, byOp, 1)
	require.Equal(t, enums.OperationTypeOutward, byOp[0].OperationType)

	byUser, err := repo.List(ctx, HistoryFilters{UserID: &userID}, nil, 0)
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	all, err := repo.List(ctx, HistoryFilters{}, nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestRepositoryListCursorWalk(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 5; i++ {
		seedEntry(t, repo, nil)
	}

	// Page size two plus the buffer row that signals another page.
	first, err := repo.List(ctx, HistoryFilters{}, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 3)
	seen[first[0].ID] = true
	seen[first[1].ID] = true

	last := first[1]
	second, err := repo.List(ctx, HistoryFilters{}, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, 2)
	require.NoError(t, err)
	require.Len(t, second, 3)
	for _, entry := range second {
		require.False(t, seen[entry.ID], "entry %s repeated across pages", entry.ID)
	}
}

func TestRepositoryListDateRange(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.TransactionDate = now.AddDate(0, 0, -10)
	})
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.TransactionDate = now
	})

	start := now.AddDate(0, 0, -1)
	recent, err := repo.List(ctx, HistoryFilters{StartDate: &start}, nil, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestRepositoryRecentForComponentOrdersAndLimits(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	componentID := uuid.New()

	for i := 0; i < 12; i++ {
		seedEntry(t, repo, func(e *models.TransactionLog) {
			e.ComponentID = componentID
		})
	}

	recent, err := repo.RecentForComponent(ctx, componentID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
}

func TestRepositoryPendingApprovals(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	approver := uuid.New()
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.OperationType = enums.OperationTypeOutward
		e.Quantity = 150
		e.QuantityBefore = 500
		e.QuantityAfter = 350
	})
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.OperationType = enums.OperationTypeOutward
		e.Quantity = 200
		e.QuantityBefore = 500
		e.QuantityAfter = 300
		e.ApprovedBy = &approver
	})
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.OperationType = enums.OperationTypeOutward
		e.Quantity = 50
		e.QuantityBefore = 500
		e.QuantityAfter = 450
	})

	pending, err := repo.PendingApprovals(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 150, pending[0].Quantity)
}

func TestRepositoryStats(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	cost := decimal.NewFromFloat(25.50)
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.Quantity = 100
		e.QuantityAfter = 100
		e.TotalCost = &cost
	})
	seedEntry(t, repo, func(e *models.TransactionLog) {
		e.OperationType = enums.OperationTypeOutward
		e.Quantity = 30
		e.QuantityBefore = 100
		e.QuantityAfter = 70
	})

	stats, err := repo.Stats(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 1, stats.InwardCount)
	require.Equal(t, 100, stats.InwardQuantity)
	require.Equal(t, 1, stats.OutwardCount)
	require.Equal(t, 30, stats.OutwardQuantity)
	require.True(t, stats.TotalCost.Equal(decimal.NewFromFloat(25.50)), "got %s", stats.TotalCost)
}
