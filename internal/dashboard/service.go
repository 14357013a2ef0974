package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
)

const (
	defaultTrendDays    = 30
	defaultTopLimit     = 10
	defaultTopWindow    = 30
	defaultMonths       = 12
	maxMonths           = 24
	defaultUserActivity = 30
)

// Service serves the dashboard reports. Overview is open to any
// authenticated user; the detailed reports are gated by role.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	MonthlyStats(ctx context.Context, role enums.Role, year, months int) ([]MonthlyStat, error)
	DailyTrends(ctx context.Context, role enums.Role, days int) ([]DailyTrend, error)
	TopComponents(ctx context.Context, role enums.Role, kind TopComponentsKind, limit, windowDays int) (*TopComponents, error)
	UserActivity(ctx context.Context, role enums.Role, windowDays int) ([]UserActivityRow, error)
	Alerts(ctx context.Context, role enums.Role) (*AlertsReport, error)
	SystemStats(ctx context.Context, role enums.Role) (*SystemStats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a dashboard service.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	overview, err := s.repo.Overview(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build dashboard overview")
	}
	return overview, nil
}

func (s *service) MonthlyStats(ctx context.Context, role enums.Role, year, months int) ([]MonthlyStat, error) {
	if err := requireReports(role); err != nil {
		return nil, err
	}

	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if months <= 0 {
		months = defaultMonths
	}
	if months > maxMonths {
		months = maxMonths
	}

	// Walk backwards from the current month of the requested year.
	anchor := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats := make([]MonthlyStat, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := anchor.AddDate(0, -i, 0)
		stat, err := s.repo.MovementTotals(ctx, TimeWindow{
			From: monthStart,
			To:   monthStart.AddDate(0, 1, 0),
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate monthly stats")
		}
		stat.Month = int(monthStart.Month())
		stat.Year = monthStart.Year()
		stat.MonthName = monthStart.Month().String()
		stats = append(stats, *stat)
	}
	return stats, nil
}

func (s *service) DailyTrends(ctx context.Context, role enums.Role, days int) ([]DailyTrend, error) {
	if err := requireReports(role); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultTrendDays
	}

	now := s.now()
	trends, err := s.repo.DailyTrends(ctx, TimeWindow{
		From: now.AddDate(0, 0, -days),
		To:   now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily trends")
	}
	return trends, nil
}

func (s *service) TopComponents(ctx context.Context, role enums.Role, kind TopComponentsKind, limit, windowDays int) (*TopComponents, error) {
	if err := requireReports(role); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if windowDays <= 0 {
		windowDays = defaultTopWindow
	}

	result := &TopComponents{Kind: kind}
	switch kind {
	case TopByUsage:
		usage, err := s.repo.TopByUsage(ctx, s.now().AddDate(0, 0, -windowDays), limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank components by usage")
		}
		result.Usage = usage
	case TopByValue:
		items, err := s.repo.TopComponents(ctx, "quantity * unit_price DESC", limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank components by value")
		}
		result.Components = items
	case TopByQuantity:
		items, err := s.repo.TopComponents(ctx, "quantity DESC", limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank components by quantity")
		}
		result.Components = items
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown ranking %q", kind))
	}
	return result, nil
}

func (s *service) UserActivity(ctx context.Context, role enums.Role, windowDays int) ([]UserActivityRow, error) {
	if role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may view user activity")
	}
	if windowDays <= 0 {
		windowDays = defaultUserActivity
	}

	activity, err := s.repo.UserActivity(ctx, s.now().AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate user activity")
	}
	return activity, nil
}

func (s *service) Alerts(ctx context.Context, role enums.Role) (*AlertsReport, error) {
	if err := requireReports(role); err != nil {
		return nil, err
	}

	report, err := s.repo.Alerts(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "collect inventory alerts")
	}
	return report, nil
}

func (s *service) SystemStats(ctx context.Context, role enums.Role) (*SystemStats, error) {
	if role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may view system stats")
	}

	stats, err := s.repo.SystemStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate system stats")
	}
	return stats, nil
}

func requireReports(role enums.Role) error {
	if !role.CanViewReports() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot view dashboard reports")
	}
	return nil
}
