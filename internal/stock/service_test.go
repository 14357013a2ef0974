package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/ledger"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/types"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	components map[uuid.UUID]*models.Component
	movedAt    *time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{components: map[uuid.UUID]*models.Component{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Component, error) {
	component, ok := f.components[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *component
	return &clone, nil
}

func (f *fakeRepo) ApplyInward(_ context.Context, id uuid.UUID, quantity int) (int64, error) {
	component, ok := f.components[id]
	if !ok {
		return 0, nil
	}
	component.Quantity += quantity
	component.TotalInward += quantity
	return 1, nil
}

func (f *fakeRepo) ApplyOutward(_ context.Context, id uuid.UUID, quantity int, movedAt time.Time) (int64, error) {
	component, ok := f.components[id]
	if !ok || component.Quantity < quantity {
		return 0, nil
	}
	component.Quantity -= quantity
	component.TotalOutward += quantity
	component.LastOutwardMovement = &movedAt
	f.movedAt = &movedAt
	return 1, nil
}

type fakeRecorder struct {
	inputs []ledger.RecordInput
	err    error
}

func (f *fakeRecorder) RecordTx(_ context.Context, _ *gorm.DB, input ledger.RecordInput) (*models.TransactionLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &models.TransactionLog{
		ID:            uuid.New(),
		ComponentID:   input.ComponentID,
		OperationType: input.OperationType,
		Quantity:      input.Quantity,
		ApprovedBy:    input.ApprovedBy,
	}, nil
}

type fakeNotifier struct {
	notified []uuid.UUID
	err      error
}

func (f *fakeNotifier) NotifyLowStock(_ context.Context, component *models.Component) error {
	f.notified = append(f.notified, component.ID)
	return f.err
}

type fixture struct {
	svc      Service
	repo     *fakeRepo
	recorder *fakeRecorder
	notifier *fakeNotifier
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newFakeRepo(),
		recorder: &fakeRecorder{},
		notifier: &fakeNotifier{},
		clock:    time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC),
	}
	logg := logger.New(logger.Options{ServiceName: "stock-test", Output: io.Discard})
	svc, err := NewService(fakeTxRunner{}, f.repo, f.recorder, f.notifier, logg, func() time.Time { return f.clock })
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seed(quantity, threshold int) *models.Component {
	component := &models.Component{
		ID:                   uuid.New(),
		Name:                 "LM358 Op-Amp",
		PartNumber:           "LM358N",
		Quantity:             quantity,
		CriticalLowThreshold: threshold,
		Status:               enums.ComponentStatusActive,
		Location:             "Shelf A1",
	}
	f.repo.components[component.ID] = component
	return component
}

func technician() *Actor {
	return &Actor{UserID: uuid.New(), Role: enums.RoleLabTechnician}
}

func TestInward(t *testing.T) {
	f := newFixture(t)
	component := f.seed(10, 5)

	result, err := f.svc.Inward(context.Background(), technician(), InwardInput{
		ComponentID: component.ID,
		Quantity:    25,
	})
	require.NoError(t, err)
	require.Equal(t, 35, result.Component.Quantity)
	require.Equal(t, 25, result.Component.TotalInward)

	require.Len(t, f.recorder.inputs, 1)
	entry := f.recorder.inputs[0]
	require.Equal(t, enums.OperationTypeInward, entry.OperationType)
	require.Equal(t, 10, entry.QuantityBefore)
	require.Equal(t, 35, entry.QuantityAfter)
	require.Equal(t, "Stock replenishment", entry.ReasonOrProject)
}

func TestInwardUnknownComponent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Inward(context.Background(), technician(), InwardInput{
		ComponentID: uuid.New(),
		Quantity:    5,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestInwardRoleGate(t *testing.T) {
	f := newFixture(t)
	component := f.seed(10, 5)

	_, err := f.svc.Inward(context.Background(), &Actor{UserID: uuid.New(), Role: enums.RoleResearcher}, InwardInput{
		ComponentID: component.ID,
		Quantity:    5,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = f.svc.Inward(context.Background(), nil, InwardInput{ComponentID: component.ID, Quantity: 5})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestOutward(t *testing.T) {
	f := newFixture(t)
	component := f.seed(50, 5)

	result, err := f.svc.Outward(context.Background(), technician(), OutwardInput{
		ComponentID: component.ID,
		Quantity:    20,
		Reason:      "Project Falcon",
	})
	require.NoError(t, err)
	require.Equal(t, 30, result.Component.Quantity)
	require.Equal(t, 20, result.Component.TotalOutward)
	require.NotNil(t, result.Component.LastOutwardMovement)
	require.Equal(t, f.clock, *result.Component.LastOutwardMovement)

	entry := f.recorder.inputs[0]
	require.Equal(t, 50, entry.QuantityBefore)
	require.Equal(t, 30, entry.QuantityAfter)
	require.Nil(t, entry.ApprovedBy)
	require.Empty(t, f.notifier.notified)
}

func TestOutwardInsufficientStock(t *testing.T) {
	f := newFixture(t)
	component := f.seed(5, 2)

	_, err := f.svc.Outward(context.Background(), technician(), OutwardInput{
		ComponentID: component.ID,
		Quantity:    10,
		Reason:      "Project Falcon",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	require.Equal(t, map[string]any{"available": 5, "requested": 10}, typed.Details())
	require.Equal(t, 5, f.repo.components[component.ID].Quantity)
}

func TestOutwardApprovalRequired(t *testing.T) {
	f := newFixture(t)
	component := f.seed(500, 5)
	researcher := &Actor{UserID: uuid.New(), Role: enums.RoleResearcher}

	_, err := f.svc.Outward(context.Background(), researcher, OutwardInput{
		ComponentID: component.ID,
		Quantity:    150,
		Reason:      "Pilot build",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeApprovalRequired, pkgerrors.As(err).Code())

	approver := uuid.New()
	result, err := f.svc.Outward(context.Background(), researcher, OutwardInput{
		ComponentID: component.ID,
		Quantity:    150,
		Reason:      "Pilot build",
		ApprovedBy:  types.NullableUUID{Set: true, Value: &approver},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Transaction.ApprovedBy)
	require.Equal(t, approver, *result.Transaction.ApprovedBy)
}

func TestOutwardAdminSelfApproves(t *testing.T) {
	f := newFixture(t)
	component := f.seed(500, 5)
	admin := &Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	result, err := f.svc.Outward(context.Background(), admin, OutwardInput{
		ComponentID: component.ID,
		Quantity:    200,
		Reason:      "Production run",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Transaction.ApprovedBy)
	require.Equal(t, admin.UserID, *result.Transaction.ApprovedBy)
}

func TestOutwardExplicitNullLeavesApprovalPending(t *testing.T) {
	f := newFixture(t)
	component := f.seed(500, 5)
	admin := &Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	body := fmt.Sprintf(`{"componentId":%q,"quantity":200,"reason":"Production run","approvedBy":null}`, component.ID)
	var input OutwardInput
	require.NoError(t, json.Unmarshal([]byte(body), &input))
	require.True(t, input.ApprovedBy.Null())

	result, err := f.svc.Outward(context.Background(), admin, input)
	require.NoError(t, err)
	require.Nil(t, result.Transaction.ApprovedBy)
	require.True(t, result.Transaction.NeedsApproval())

	// A researcher sending the same explicit null still lacks an approver.
	researcher := &Actor{UserID: uuid.New(), Role: enums.RoleResearcher}
	_, err = f.svc.Outward(context.Background(), researcher, input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeApprovalRequired, pkgerrors.As(err).Code())
}

func TestOutwardMissingReason(t *testing.T) {
	f := newFixture(t)
	component := f.seed(50, 5)

	_, err := f.svc.Outward(context.Background(), technician(), OutwardInput{
		ComponentID: component.ID,
		Quantity:    5,
		Reason:      "  ",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestOutwardRaisesLowStockAlert(t *testing.T) {
	f := newFixture(t)
	component := f.seed(12, 10)

	_, err := f.svc.Outward(context.Background(), technician(), OutwardInput{
		ComponentID: component.ID,
		Quantity:    4,
		Reason:      "Bench repair",
	})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{component.ID}, f.notifier.notified)
}

func TestOutwardAlertFailureDoesNotFailMovement(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	component := f.seed(12, 10)

	result, err := f.svc.Outward(context.Background(), technician(), OutwardInput{
		ComponentID: component.ID,
		Quantity:    4,
		Reason:      "Bench repair",
	})
	require.NoError(t, err)
	require.Equal(t, 8, result.Component.Quantity)
}
