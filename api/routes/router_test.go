package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/internal/assistant"
	"github.com/voltpath/labstock-backend/internal/auth"
	"github.com/voltpath/labstock-backend/internal/components"
	"github.com/voltpath/labstock-backend/internal/dashboard"
	"github.com/voltpath/labstock-backend/internal/ledger"
	"github.com/voltpath/labstock-backend/internal/notifications"
	"github.com/voltpath/labstock-backend/internal/scan"
	"github.com/voltpath/labstock-backend/internal/stock"
	"github.com/voltpath/labstock-backend/internal/users"
	pkgAuth "github.com/voltpath/labstock-backend/pkg/auth"
	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Me(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubUserService struct{}

func (stubUserService) Get(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUserService) List(context.Context, enums.Role, users.ListFilters, pagination.PageParams) (*users.UserList, error) {
	return &users.UserList{}, nil
}

func (stubUserService) UpdateProfile(context.Context, uuid.UUID, users.UpdateProfileInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUserService) SetRole(context.Context, enums.Role, uuid.UUID, enums.Role) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUserService) SetActive(context.Context, enums.Role, uuid.UUID, bool) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubUserLoader struct{}

func (stubUserLoader) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return &models.User{}, nil
}

type stubComponentService struct{}

func (stubComponentService) Create(context.Context, components.Actor, components.CreateComponentInput) (*models.Component, error) {
	return &models.Component{}, nil
}

func (stubComponentService) Update(context.Context, components.Actor, uuid.UUID, components.UpdateComponentInput) (*models.Component, error) {
	return &models.Component{}, nil
}

func (stubComponentService) Get(context.Context, uuid.UUID) (*components.ComponentDetail, error) {
	return &components.ComponentDetail{}, nil
}

func (stubComponentService) List(context.Context, components.ListFilters, pagination.PageParams) (*components.ComponentList, error) {
	return &components.ComponentList{}, nil
}

func (stubComponentService) Delete(context.Context, components.Actor, uuid.UUID) (*components.DeleteOutcome, error) {
	return &components.DeleteOutcome{}, nil
}

func (stubComponentService) LowStock(context.Context) ([]models.Component, error) {
	return nil, nil
}

func (stubComponentService) OldStock(context.Context) ([]models.Component, error) {
	return nil, nil
}

func (stubComponentService) Categories(context.Context) ([]components.CategorySummary, error) {
	return nil, nil
}

func (stubComponentService) Locations(context.Context) ([]components.LocationSummary, error) {
	return nil, nil
}

func (stubComponentService) Export(context.Context, components.ExportFilters) ([]components.ExportRow, error) {
	return nil, nil
}

func (stubComponentService) BulkImport(context.Context, components.Actor, []components.CreateComponentInput) (*components.BulkImportResult, error) {
	return &components.BulkImportResult{}, nil
}

type stubStockService struct{}

func (stubStockService) Inward(context.Context, *stock.Actor, stock.InwardInput) (*stock.MovementResult, error) {
	return &stock.MovementResult{}, nil
}

func (stubStockService) Outward(context.Context, *stock.Actor, stock.OutwardInput) (*stock.MovementResult, error) {
	return &stock.MovementResult{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Record(context.Context, ledger.RecordInput) (*models.TransactionLog, error) {
	return &models.TransactionLog{}, nil
}

func (stubLedgerService) RecordTx(ctx context.Context, tx *gorm.DB, input ledger.RecordInput) (*models.TransactionLog, error) {
	return &models.TransactionLog{}, nil
}

func (stubLedgerService) RecentForComponent(context.Context, uuid.UUID, int) ([]models.TransactionLog, error) {
	return nil, nil
}

func (stubLedgerService) List(context.Context, ledger.HistoryFilters, pagination.Params) (*ledger.TransactionList, error) {
	return &ledger.TransactionList{}, nil
}

func (stubLedgerService) PendingApprovals(context.Context) ([]models.TransactionLog, error) {
	return nil, nil
}

func (stubLedgerService) Stats(context.Context, time.Time, time.Time) (*ledger.MovementStats, error) {
	return &ledger.MovementStats{}, nil
}

type stubNotificationService struct{}

func (stubNotificationService) NotifyLowStock(context.Context, *models.Component) (*models.Notification, error) {
	return nil, nil
}

func (stubNotificationService) NotifyOldStock(context.Context, *models.Component) (*models.Notification, error) {
	return nil, nil
}

func (stubNotificationService) NotifyHighUsage(context.Context, *models.Component, int, int) (*models.Notification, error) {
	return nil, nil
}

func (stubNotificationService) NotifyApprovalNeeded(context.Context, *models.Component, *models.TransactionLog) (*models.Notification, error) {
	return nil, nil
}

func (stubNotificationService) CreateSystem(context.Context, notifications.SystemNotificationInput) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationService) List(context.Context, notifications.Recipient, notifications.ListFilters, pagination.PageParams) (*notifications.NotificationList, error) {
	return &notifications.NotificationList{}, nil
}

func (stubNotificationService) UnreadCount(context.Context, notifications.Recipient) (int64, error) {
	return 0, nil
}

func (stubNotificationService) MarkRead(context.Context, notifications.Recipient, uuid.UUID) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationService) MarkAllRead(context.Context, notifications.Recipient) (int64, error) {
	return 0, nil
}

func (stubNotificationService) Archive(context.Context, notifications.Recipient, uuid.UUID) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationService) TakeAction(context.Context, notifications.Recipient, uuid.UUID) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationService) Stats(context.Context, notifications.Recipient) (*notifications.Stats, error) {
	return &notifications.Stats{}, nil
}

func (stubNotificationService) Cleanup(context.Context) (int64, error) {
	return 0, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Overview(context.Context) (*dashboard.Overview, error) {
	return &dashboard.Overview{}, nil
}

func (stubDashboardService) MonthlyStats(context.Context, enums.Role, int, int) ([]dashboard.MonthlyStat, error) {
	return nil, nil
}

func (stubDashboardService) DailyTrends(context.Context, enums.Role, int) ([]dashboard.DailyTrend, error) {
	return nil, nil
}

func (stubDashboardService) TopComponents(context.Context, enums.Role, dashboard.TopComponentsKind, int, int) (*dashboard.TopComponents, error) {
	return &dashboard.TopComponents{}, nil
}

func (stubDashboardService) UserActivity(context.Context, enums.Role, int) ([]dashboard.UserActivityRow, error) {
	return nil, nil
}

func (stubDashboardService) Alerts(context.Context, enums.Role) (*dashboard.AlertsReport, error) {
	return &dashboard.AlertsReport{}, nil
}

func (stubDashboardService) SystemStats(context.Context, enums.Role) (*dashboard.SystemStats, error) {
	return &dashboard.SystemStats{}, nil
}

type stubScanService struct{}

func (stubScanService) Lookup(context.Context, string) (*scan.LookupResult, error) {
	return &scan.LookupResult{}, nil
}

type stubAssistantService struct{}

func (stubAssistantService) Chat(context.Context, *models.User, assistant.ChatRequest) (*assistant.ChatResponse, error) {
	return &assistant.ChatResponse{Output: "ok"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "labstock",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DBPinger:      stubPinger{},
		Redis:         nil,
		AuthService:   stubAuthService{},
		Users:         stubUserService{},
		UserLoader:    stubUserLoader{},
		Components:    stubComponentService{},
		Stock:         stubStockService{},
		Ledger:        stubLedgerService{},
		Notifications: stubNotificationService{},
		Dashboard:     stubDashboardService{},
		Scan:          stubScanService{},
		Assistant:     stubAssistantService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Route Tester",
		Email:  "tester@voltpath.io",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func readerFor(body string) io.Reader {
	return strings.NewReader(body)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/components", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/components", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestComponentWriteRequiresManagerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/components/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleResearcher))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for researcher got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/components/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleLabTechnician))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for lab technician got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOutwardAllowedForResearcher(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"quantity":2,"reason":"Project Beta"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/components/"+uuid.NewString()+"/outward", readerFor(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleResearcher))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInwardForbiddenForResearcher(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/components/"+uuid.NewString()+"/inward", readerFor(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleResearcher))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleManufacturingEngineer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestReportRoutesGateOnRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/stats", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for basic user got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/transactions/stats", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleManufacturingEngineer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manufacturing engineer got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAssistantChatRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", readerFor(`{"message":"how many resistors do I have?"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
