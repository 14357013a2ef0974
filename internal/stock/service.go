package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/internal/ledger"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

const defaultInwardReason = "Stock replenishment"

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Recorder appends a ledger entry inside the caller's transaction.
type Recorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input ledger.RecordInput) (*models.TransactionLog, error)
}

// LowStockNotifier raises a low stock alert for a component. Implementations
// are expected to deduplicate internally.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, component *models.Component) error
}

// Service moves stock. Every mutation commits atomically with its ledger
// entry; the component quantity column is never written anywhere else.
type Service interface {
	Inward(ctx context.Context, actor *Actor, input InwardInput) (*MovementResult, error)
	Outward(ctx context.Context, actor *Actor, input OutwardInput) (*MovementResult, error)
}

type service struct {
	tx       TxRunner
	repo     Repository
	recorder Recorder
	notifier LowStockNotifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a stock service. The notifier is optional.
func NewService(
	tx TxRunner,
	repo Repository,
	recorder Recorder,
	notifier LowStockNotifier,
	logg *logger.Logger,
	now func() time.Time,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("ledger recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{tx: tx, repo: repo, recorder: recorder, notifier: notifier, logg: logg, now: now}, nil
}

func (s *service) Inward(ctx context.Context, actor *Actor, input InwardInput) (*MovementResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.CanInward() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot receive stock")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = defaultInwardReason
	}

	var result MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.ApplyInward(ctx, input.ComponentID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply inward movement")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}

		component, err := repo.FindByID(ctx, input.ComponentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload component")
		}

		entry, err := s.recorder.RecordTx(ctx, tx, ledger.RecordInput{
			ComponentID:     input.ComponentID,
			UserID:          actor.UserID,
			OperationType:   enums.OperationTypeInward,
			Quantity:        input.Quantity,
			QuantityBefore:  component.Quantity - input.Quantity,
			QuantityAfter:   component.Quantity,
			ReasonOrProject: reason,
			Notes:           input.Notes,
			BatchNumber:     input.BatchNumber,
			SupplierInvoice: input.SupplierInvoice,
			UnitCost:        input.UnitCost,
			TotalCost:       input.TotalCost,
			TransactionDate: input.TransactionDate,
		})
		if err != nil {
			return err
		}

		result.Component = component
		result.Transaction = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Outward(ctx context.Context, actor *Actor, input OutwardInput) (*MovementResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.CanOutward() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot issue stock")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason or project is required for outward transactions")
	}

	needsApproval := input.Quantity >= ledger.ApprovalThreshold && !actor.Role.IsPrivileged()
	if needsApproval && input.ApprovedBy.Ptr() == nil {
		return nil, pkgerrors.New(pkgerrors.CodeApprovalRequired,
			fmt.Sprintf("outward movements of %d or more units need an approver", ledger.ApprovalThreshold)).
			WithDetails(map[string]any{"threshold": ledger.ApprovalThreshold, "requested": input.Quantity})
	}

	var approvedBy *uuid.UUID
	if input.Quantity >= ledger.ApprovalThreshold {
		approvedBy = input.ApprovedBy.Ptr()
		// A privileged actor self-approves unless the request carried an
		// explicit null, which records the movement as pending approval.
		if approvedBy == nil && !input.ApprovedBy.Null() {
			id := actor.UserID
			approvedBy = &id
		}
	}

	movedAt := s.now()
	var result MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.ApplyOutward(ctx, input.ComponentID, input.Quantity, movedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply outward movement")
		}
		if affected == 0 {
			component, findErr := repo.FindByID(ctx, input.ComponentID)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load component")
			}
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock on hand").
				WithDetails(map[string]any{"available": component.Quantity, "requested": input.Quantity})
		}

		component, err := repo.FindByID(ctx, input.ComponentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload component")
		}

		entry, err := s.recorder.RecordTx(ctx, tx, ledger.RecordInput{
			ComponentID:     input.ComponentID,
			UserID:          actor.UserID,
			OperationType:   enums.OperationTypeOutward,
			Quantity:        input.Quantity,
			QuantityBefore:  component.Quantity + input.Quantity,
			QuantityAfter:   component.Quantity,
			ReasonOrProject: strings.TrimSpace(input.Reason),
			Notes:           input.Notes,
			ApprovedBy:      approvedBy,
			TransactionDate: input.TransactionDate,
		})
		if err != nil {
			return err
		}

		result.Component = component
		result.Transaction = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.maybeRaiseLowStock(ctx, result.Component)
	return &result, nil
}

// maybeRaiseLowStock runs after commit. Alert delivery never fails the
// movement that triggered it.
func (s *service) maybeRaiseLowStock(ctx context.Context, component *models.Component) {
	if s.notifier == nil || !alerts.CriticallyLow(component) {
		return
	}
	if err := s.notifier.NotifyLowStock(ctx, component); err != nil {
		s.logg.Error(s.logg.WithComponentID(ctx, component.ID.String()), "raise low stock alert", err)
	}
}
