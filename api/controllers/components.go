package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voltpath/labstock-backend/api/middleware"
	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/components"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

func actorFromContext(r *http.Request) components.Actor {
	return components.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

func pageParams(r *http.Request) (pagination.PageParams, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.PageParams{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 200)
	if err != nil {
		return pagination.PageParams{}, err
	}
	return pagination.PageParams{Page: page, Limit: limit}, nil
}

func CreateComponent(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input components.CreateComponentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.Create(r.Context(), actorFromContext(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, component)
	}
}

func UpdateComponent(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input components.UpdateComponentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.Update(r.Context(), actorFromContext(r), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, component)
	}
}

func GetComponent(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func DeleteComponent(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Delete(r.Context(), actorFromContext(r), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

func ListComponents(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func listFiltersFromQuery(r *http.Request) (components.ListFilters, error) {
	filters := components.ListFilters{
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		Location:     strings.TrimSpace(r.URL.Query().Get("location")),
		Manufacturer: strings.TrimSpace(r.URL.Query().Get("manufacturer")),
		SortBy:       strings.TrimSpace(r.URL.Query().Get("sortBy")),
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filters.Category = &category
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.ComponentStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("minQuantity")); raw != "" {
		value, err := validators.ParseQueryInt(r, "minQuantity", 0, 0, 1<<30)
		if err != nil {
			return filters, err
		}
		filters.MinQuantity = &value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("maxQuantity")); raw != "" {
		value, err := validators.ParseQueryInt(r, "maxQuantity", 0, 0, 1<<30)
		if err != nil {
			return filters, err
		}
		filters.MaxQuantity = &value
	}

	lowStock, err := validators.ParseQueryBool(r, "lowStock")
	if err != nil {
		return filters, err
	}
	filters.LowStock = lowStock

	oldStock, err := validators.ParseQueryBool(r, "oldStock")
	if err != nil {
		return filters, err
	}
	filters.OldStock = oldStock

	sortDesc, err := validators.ParseQueryBool(r, "sortDesc")
	if err != nil {
		return filters, err
	}
	filters.SortDesc = sortDesc

	return filters, nil
}

func LowStockComponents(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OldStockComponents(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.OldStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ComponentCategories(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func ComponentLocations(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := svc.Locations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, locations)
	}
}

func PredefinedCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, components.PredefinedCategories)
	}
}

func ExportComponents(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := components.ExportFilters{}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			filters.Category = &category
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.ComponentStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		lowStock, err := validators.ParseQueryBool(r, "lowStock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.LowStock = lowStock

		rows, err := svc.Export(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type bulkImportRequest struct {
	Components []components.CreateComponentInput `json:"components" validate:"required,min=1,dive"`
}

func BulkImportComponents(svc components.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkImportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkImport(r.Context(), actorFromContext(r), req.Components)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
