package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/voltpath/labstock-backend/api/middleware"
	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/dashboard"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

func DashboardOverview(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}

func DashboardMonthlyStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentYear := time.Now().UTC().Year()
		year, err := validators.ParseQueryInt(r, "year", currentYear, 2000, currentYear+1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		months, err := validators.ParseQueryInt(r, "months", 12, 1, 24)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.MonthlyStats(r.Context(), middleware.RoleFromContext(r.Context()), year, months)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func DashboardDailyTrends(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trends, err := svc.DailyTrends(r.Context(), middleware.RoleFromContext(r.Context()), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trends)
	}
}

func DashboardTopComponents(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := dashboard.TopByUsage
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			kind = dashboard.TopComponentsKind(raw)
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		window, err := validators.ParseQueryInt(r, "window", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		top, err := svc.TopComponents(r.Context(), middleware.RoleFromContext(r.Context()), kind, limit, window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, top)
	}
}

func DashboardUserActivity(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := validators.ParseQueryInt(r, "window", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activity, err := svc.UserActivity(r.Context(), middleware.RoleFromContext(r.Context()), window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activity)
	}
}

func DashboardAlerts(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Alerts(r.Context(), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func DashboardSystemStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.SystemStats(r.Context(), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
