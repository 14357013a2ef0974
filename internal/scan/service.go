package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
)

// Draft is a pre-filled component form derived from a scanned code. The
// caller reviews and submits it through the normal component create flow.
type Draft struct {
	Name         string                `json:"name"`
	Manufacturer string                `json:"manufacturer"`
	PartNumber   string                `json:"partNumber"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Quantity     int                   `json:"quantity"`
	Status       enums.ComponentStatus `json:"status"`
}

// LookupResult carries either an existing component matching the scanned
// code or a draft for creating a new one, never both.
type LookupResult struct {
	Existing *models.Component `json:"existing,omitempty"`
	Draft    *Draft            `json:"draft,omitempty"`
}

// PartFinder is the slice of the component repository the scanner needs.
type PartFinder interface {
	FindByPartNumber(ctx context.Context, partNumber string) (*models.Component, error)
}

type Service interface {
	Lookup(ctx context.Context, code string) (*LookupResult, error)
}

type service struct {
	finder PartFinder
}

func NewService(finder PartFinder) (Service, error) {
	if finder == nil {
		return nil, fmt.Errorf("scan service: part finder is required")
	}
	return &service{finder: finder}, nil
}

// Lookup resolves a scanned barcode or typed part number. A code matching
// an existing part number returns that component so the caller can restock
// it instead of creating a duplicate.
func (s *service) Lookup(ctx context.Context, code string) (*LookupResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code is required")
	}

	existing, err := s.finder.FindByPartNumber(ctx, normalized)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up scanned part")
	}
	if existing != nil {
		return &LookupResult{Existing: existing}, nil
	}

	draft := &Draft{
		Name:         normalized,
		Manufacturer: "Unknown",
		PartNumber:   normalized,
		Description:  "Scanned component, details pending",
		Category:     "Miscellaneous Lab Supplies",
		Quantity:     1,
		Status:       enums.ComponentStatusActive,
	}
	if entry := identify(normalized); entry != nil {
		draft.Manufacturer = entry.Manufacturer
		draft.Category = entry.Category
		draft.Description = entry.Description
		draft.Name = fmt.Sprintf("%s %s", entry.Manufacturer, normalized)
	}
	return &LookupResult{Draft: draft}, nil
}
