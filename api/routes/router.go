package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltpath/labstock-backend/api/controllers"
	"github.com/voltpath/labstock-backend/api/middleware"
	"github.com/voltpath/labstock-backend/internal/assistant"
	"github.com/voltpath/labstock-backend/internal/auth"
	"github.com/voltpath/labstock-backend/internal/components"
	"github.com/voltpath/labstock-backend/internal/dashboard"
	"github.com/voltpath/labstock-backend/internal/ledger"
	"github.com/voltpath/labstock-backend/internal/notifications"
	"github.com/voltpath/labstock-backend/internal/scan"
	"github.com/voltpath/labstock-backend/internal/stock"
	"github.com/voltpath/labstock-backend/internal/users"
	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/redis"
)

const (
	loginRateLimit    = 10
	registerRateLimit = 5
	authRateWindow    = time.Minute
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      db.Pinger
	Redis         *redis.Client
	AuthService   auth.Service
	Users         users.Service
	UserLoader    controllers.ActorLoader
	Components    components.Service
	Stock         stock.Service
	Ledger        ledger.Service
	Notifications notifications.Service
	Dashboard     dashboard.Service
	Scan          scan.Service
	Assistant     assistant.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger redis.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	limiter := func(scope string, limit int64) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(scope, limit, authRateWindow, deps.Redis, logg)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(limiter("login", loginRateLimit)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(limiter("register", registerRateLimit)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.AuthMe(deps.AuthService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/components", func(r chi.Router) {
			r.Get("/", controllers.ListComponents(deps.Components, logg))
			r.Get("/low-stock", controllers.LowStockComponents(deps.Components, logg))
			r.Get("/old-stock", controllers.OldStockComponents(deps.Components, logg))
			r.Get("/categories", controllers.ComponentCategories(deps.Components, logg))
			r.Get("/predefined-categories", controllers.PredefinedCategories())
			r.Get("/locations", controllers.ComponentLocations(deps.Components, logg))
			r.Get("/{componentId}", controllers.GetComponent(deps.Components, logg))
			r.Get("/{componentId}/transactions", controllers.ComponentTransactions(deps.Ledger, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(enums.Role.CanManageComponents, logg))
				r.Post("/", controllers.CreateComponent(deps.Components, logg))
				r.Put("/{componentId}", controllers.UpdateComponent(deps.Components, logg))
				r.Delete("/{componentId}", controllers.DeleteComponent(deps.Components, logg))
				r.Post("/bulk-import", controllers.BulkImportComponents(deps.Components, logg))
				r.Get("/export", controllers.ExportComponents(deps.Components, logg))
			})

			r.With(middleware.RequirePermission(enums.Role.CanInward, logg)).
				Post("/{componentId}/inward", controllers.InwardStock(deps.Stock, logg))
			r.With(middleware.RequirePermission(enums.Role.CanOutward, logg)).
				Post("/{componentId}/outward", controllers.OutwardStock(deps.Stock, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(deps.Ledger, logg))
			r.With(middleware.RequirePermission(enums.Role.CanViewReports, logg)).
				Get("/stats", controllers.TransactionStats(deps.Ledger, logg))
			r.With(middleware.RequireAdmin(logg)).
				Get("/pending-approvals", controllers.PendingApprovals(deps.Ledger, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/stats", controllers.NotificationStats(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/{notificationId}/archive", controllers.ArchiveNotification(deps.Notifications, logg))
			r.Post("/{notificationId}/action", controllers.TakeNotificationAction(deps.Notifications, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/system", controllers.CreateSystemNotification(deps.Notifications, logg))
				r.Post("/cleanup", controllers.CleanupNotifications(deps.Notifications, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/overview", controllers.DashboardOverview(deps.Dashboard, logg))
			r.Get("/monthly-stats", controllers.DashboardMonthlyStats(deps.Dashboard, logg))
			r.Get("/daily-trends", controllers.DashboardDailyTrends(deps.Dashboard, logg))
			r.Get("/top-components", controllers.DashboardTopComponents(deps.Dashboard, logg))
			r.Get("/alerts", controllers.DashboardAlerts(deps.Dashboard, logg))
			r.Get("/user-activity", controllers.DashboardUserActivity(deps.Dashboard, logg))
			r.Get("/system-stats", controllers.DashboardSystemStats(deps.Dashboard, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Put("/me", controllers.UpdateProfile(deps.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", controllers.ListUsers(deps.Users, logg))
				r.Get("/{userId}", controllers.GetUser(deps.Users, logg))
				r.Put("/{userId}/role", controllers.SetUserRole(deps.Users, logg))
				r.Put("/{userId}/active", controllers.SetUserActive(deps.Users, logg))
			})
		})

		r.Route("/scan", func(r chi.Router) {
			r.Get("/lookup", controllers.ScanLookup(deps.Scan, logg))
			r.Post("/lookup", controllers.ScanLookup(deps.Scan, logg))
		})

		r.Post("/assistant/chat", controllers.AssistantChat(deps.Assistant, deps.UserLoader, logg))
	})

	return r
}
