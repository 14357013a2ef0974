package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/ledger"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

func ListTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := ledger.HistoryFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("componentId")); raw != "" {
			id, err := validators.ParsePathUUID(raw, "componentId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.ComponentID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
			id, err := validators.ParsePathUUID(raw, "userId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.UserID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("operationType")); raw != "" {
			op, err := enums.ParseOperationType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid operation type"))
				return
			}
			filters.OperationType = &op
		}
		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.StartDate = start
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.EndDate = end

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ComponentTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentID, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.RecentForComponent(r.Context(), componentID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func PendingApprovals(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.PendingApprovals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// TransactionStats aggregates movement totals over a date window, defaulting
// to the last 30 days.
func TransactionStats(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		to := time.Now().UTC()
		if end != nil {
			to = *end
		}
		from := to.AddDate(0, 0, -30)
		if start != nil {
			from = *start
		}

		stats, err := svc.Stats(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
