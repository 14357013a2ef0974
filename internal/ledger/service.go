package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// Service exposes ledger operations: one writer, several readers.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.TransactionLog, error)
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.TransactionLog, error)
	RecentForComponent(ctx context.Context, componentID uuid.UUID, limit int) ([]models.TransactionLog, error)
	List(ctx context.Context, filters HistoryFilters, params pagination.Params) (*TransactionList, error)
	PendingApprovals(ctx context.Context) ([]models.TransactionLog, error)
	Stats(ctx context.Context, from, to time.Time) (*MovementStats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a ledger service.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// Validate checks a record input without touching storage.
func Validate(input RecordInput) error {
	if input.ComponentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.OperationType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid operation type %q", input.OperationType))
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.QuantityBefore < 0 || input.QuantityAfter < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantities cannot be negative")
	}
	switch input.OperationType {
	case enums.OperationTypeInward:
		if input.QuantityAfter != input.QuantityBefore+input.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity after must equal before plus quantity")
		}
	case enums.OperationTypeOutward:
		if input.QuantityAfter != input.QuantityBefore-input.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity after must equal before minus quantity")
		}
		if strings.TrimSpace(input.ReasonOrProject) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "reason or project is required for outward transactions")
		}
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.TotalCost != nil && input.TotalCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total cost cannot be negative")
	}
	return nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.TransactionLog, error) {
	return s.record(ctx, s.repo, input)
}

// RecordTx appends an entry inside an existing transaction so the stock
// mutation and its audit record commit together.
func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.TransactionLog, error) {
	return s.record(ctx, s.repo.WithTx(tx), input)
}

func (s *service) record(ctx context.Context, repo Repository, input RecordInput) (*models.TransactionLog, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	totalCost := input.TotalCost
	if totalCost == nil && input.UnitCost != nil {
		derived := input.UnitCost.Mul(decimal.NewFromInt(int64(input.Quantity)))
		totalCost = &derived
	}

	transactionDate := input.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = s.now()
	}

	entry := &models.TransactionLog{
		ID:              uuid.New(),
		ComponentID:     input.ComponentID,
		UserID:          input.UserID,
		OperationType:   input.OperationType,
		Quantity:        input.Quantity,
		QuantityBefore:  input.QuantityBefore,
		QuantityAfter:   input.QuantityAfter,
		ReasonOrProject: strings.TrimSpace(input.ReasonOrProject),
		Notes:           input.Notes,
		BatchNumber:     input.BatchNumber,
		SupplierInvoice: input.SupplierInvoice,
		UnitCost:        input.UnitCost,
		TotalCost:       totalCost,
		ApprovedBy:      input.ApprovedBy,
		TransactionDate: transactionDate,
	}

	created, err := repo.Create(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return created, nil
}

func (s *service) RecentForComponent(ctx context.Context, componentID uuid.UUID, limit int) ([]models.TransactionLog, error) {
	entries, err := s.repo.RecentForComponent(ctx, componentID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent transactions")
	}
	return entries, nil
}

func (s *service) List(ctx context.Context, filters HistoryFilters, params pagination.Params) (*TransactionList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items, err := s.repo.List(ctx, filters, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &TransactionList{Items: items}
	if len(items) > limit {
		last := items[limit-1]
		list.Items = items[:limit]
		list.HasMore = true
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (s *service) PendingApprovals(ctx context.Context) ([]models.TransactionLog, error) {
	entries, err := s.repo.PendingApprovals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending approvals")
	}
	return entries, nil
}

func (s *service) Stats(ctx context.Context, from, to time.Time) (*MovementStats, error) {
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}
	stats, err := s.repo.Stats(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate transaction stats")
	}
	return stats, nil
}
