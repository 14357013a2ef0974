package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/alerts"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// TransactionReader supplies recent ledger entries for the detail view.
type TransactionReader interface {
	RecentForComponent(ctx context.Context, componentID uuid.UUID, limit int) ([]models.TransactionLog, error)
}

// Service exposes component record operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateComponentInput) (*models.Component, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateComponentInput) (*models.Component, error)
	Get(ctx context.Context, id uuid.UUID) (*ComponentDetail, error)
	List(ctx context.Context, filters ListFilters, params pagination.PageParams) (*ComponentList, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) (*DeleteOutcome, error)
	LowStock(ctx context.Context) ([]models.Component, error)
	OldStock(ctx context.Context) ([]models.Component, error)
	Categories(ctx context.Context) ([]CategorySummary, error)
	Locations(ctx context.Context) ([]LocationSummary, error)
	Export(ctx context.Context, filters ExportFilters) ([]ExportRow, error)
	BulkImport(ctx context.Context, actor Actor, inputs []CreateComponentInput) (*BulkImportResult, error)
}

const recentTransactionLimit = 10

type service struct {
	repo         Repository
	transactions TransactionReader
	now          func() time.Time
}

// NewService builds a component service with the required dependencies.
func NewService(repo Repository, transactions TransactionReader, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("components repository required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transaction reader required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, transactions: transactions, now: now}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateComponentInput) (*models.Component, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	partNumber := strings.TrimSpace(input.PartNumber)
	if partNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part number required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.CriticalLowThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "critical low threshold cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	if existing, err := s.repo.FindByPartNumber(ctx, partNumber); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "part number already exists").
			WithDetails(map[string]string{"field": "partNumber", "value": partNumber})
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check part number")
	}

	modifiedBy := actor.UserID
	component := &models.Component{
		ID:                   uuid.New(),
		Name:                 strings.TrimSpace(input.Name),
		Manufacturer:         strings.TrimSpace(input.Manufacturer),
		PartNumber:           partNumber,
		Description:          input.Description,
		Quantity:             input.Quantity,
		Location:             strings.TrimSpace(input.Location),
		UnitPrice:            input.UnitPrice,
		DatasheetLink:        input.DatasheetLink,
		Category:             strings.TrimSpace(input.Category),
		CriticalLowThreshold: input.CriticalLowThreshold,
		Tags:                 input.Tags,
		Status:               enums.ComponentStatusActive,
		AddedBy:              actor.UserID,
		LastModifiedBy:       &modifiedBy,
	}

	created, err := s.repo.Create(ctx, component)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "part number already exists").
				WithDetails(map[string]string{"field": "partNumber", "value": partNumber})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create component")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateComponentInput) (*models.Component, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}

	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		component.Name = strings.TrimSpace(*input.Name)
	}
	if input.Manufacturer != nil {
		component.Manufacturer = strings.TrimSpace(*input.Manufacturer)
	}
	if input.Description != nil {
		component.Description = *input.Description
	}
	if input.Location != nil {
		component.Location = strings.TrimSpace(*input.Location)
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		component.UnitPrice = *input.UnitPrice
	}
	if input.DatasheetLink != nil {
		component.DatasheetLink = input.DatasheetLink
	}
	if input.Category != nil {
		component.Category = strings.TrimSpace(*input.Category)
	}
	if input.CriticalLowThreshold != nil {
		if *input.CriticalLowThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "critical low threshold cannot be negative")
		}
		component.CriticalLowThreshold = *input.CriticalLowThreshold
	}
	if input.Tags != nil {
		component.Tags = input.Tags
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
		}
		component.Status = *input.Status
	}

	modifiedBy := actor.UserID
	component.LastModifiedBy = &modifiedBy

	saved, err := s.repo.Save(ctx, component)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update component")
	}
	return saved, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ComponentDetail, error) {
	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactions.RecentForComponent(ctx, component.ID, recentTransactionLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent transactions")
	}

	return &ComponentDetail{Component: component, RecentTransactions: recent}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.PageParams) (*ComponentList, error) {
	list, err := s.repo.List(ctx, filters, params, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list components")
	}
	return list, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) (*DeleteOutcome, error) {
	if !actor.Role.IsPrivileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete components")
	}

	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.CountLedgerEntries(ctx, component.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ledger entries")
	}

	if entries > 0 {
		component.Status = enums.ComponentStatusDiscontinued
		modifiedBy := actor.UserID
		component.LastModifiedBy = &modifiedBy
		if _, err := s.repo.Save(ctx, component); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discontinue component")
		}
		return &DeleteOutcome{
			Discontinued: true,
			Message:      "component marked as discontinued due to existing transaction history",
		}, nil
	}

	if err := s.repo.Delete(ctx, component.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete component")
	}
	return &DeleteOutcome{Message: "component deleted"}, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Component, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return items, nil
}

func (s *service) OldStock(ctx context.Context) ([]models.Component, error) {
	items, err := s.repo.ListOldStock(ctx, alerts.Cutoff(s.now()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list old stock")
	}
	return items, nil
}

func (s *service) Categories(ctx context.Context) ([]CategorySummary, error) {
	rows, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate categories")
	}
	return rows, nil
}

func (s *service) Locations(ctx context.Context) ([]LocationSummary, error) {
	rows, err := s.repo.Locations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate locations")
	}
	return rows, nil
}

func (s *service) Export(ctx context.Context, filters ExportFilters) ([]ExportRow, error) {
	items, err := s.repo.ListForExport(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export components")
	}

	rows := make([]ExportRow, 0, len(items))
	for _, c := range items {
		link := ""
		if c.DatasheetLink != nil {
			link = *c.DatasheetLink
		}
		rows = append(rows, ExportRow{
			Name:                 c.Name,
			PartNumber:           c.PartNumber,
			Manufacturer:         c.Manufacturer,
			Category:             c.Category,
			Description:          c.Description,
			Quantity:             c.Quantity,
			UnitPrice:            c.UnitPrice,
			TotalValue:           c.TotalValue(),
			Location:             c.Location,
			CriticalLowThreshold: c.CriticalLowThreshold,
			Status:               string(c.Status),
			Tags:                 strings.Join(c.Tags, ", "),
			DatasheetLink:        link,
			CreatedAt:            c.CreatedAt,
			UpdatedAt:            c.UpdatedAt,
		})
	}
	return rows, nil
}

func (s *service) BulkImport(ctx context.Context, actor Actor, inputs []CreateComponentInput) (*BulkImportResult, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "components array is required")
	}

	result := &BulkImportResult{
		Successful: []BulkImportSuccess{},
		Failed:     []BulkImportFailure{},
	}
	for i, input := range inputs {
		created, err := s.Create(ctx, actor, input)
		if err != nil {
			result.Failed = append(result.Failed, BulkImportFailure{
				Index: i,
				Input: input,
				Error: err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, BulkImportSuccess{Index: i, Component: created})
	}
	return result, nil
}

func (s *service) loadComponent(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	component, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
	}
	return component, nil
}
