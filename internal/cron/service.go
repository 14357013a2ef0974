package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the scheduler.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Metrics  *metrics.CronJobMetrics
}

// Service drives each registered job on its own fixed cadence. Jobs are
// independent: a failure or panic in one run never affects the others.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	metrics  *metrics.CronJobMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		metrics:  params.Metrics,
	}, nil
}

// Run executes every job once at startup, then on its interval, until the
// context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var wg sync.WaitGroup
	for _, entry := range s.registry.Entries() {
		wg.Add(1)
		go func(entry Entry) {
			defer wg.Done()
			s.runLoop(ctx, entry)
		}(entry)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Service) runLoop(ctx context.Context, entry Entry) {
	interval := entry.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	s.runOnce(ctx, entry)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(s.logg.WithField(ctx, "job", entry.Job.Name()), "job loop stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, entry)
		}
	}
}

func (s *Service) runOnce(ctx context.Context, entry Entry) {
	jobCtx := s.logg.WithField(ctx, "job", entry.Job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	if entry.Lock != nil {
		locked, err := entry.Lock.Acquire(jobCtx)
		if err != nil {
			s.logg.Error(jobCtx, "lock acquire failed", err)
			s.recordFailure(entry.Job.Name())
			return
		}
		if !locked {
			s.logg.Info(jobCtx, "another worker holds the lock; skipping run")
			s.recordSkipped(entry.Job.Name())
			return
		}
		defer func() {
			if relErr := entry.Lock.Release(jobCtx); relErr != nil {
				s.logg.Error(jobCtx, "lock release failed", relErr)
			}
		}()
	}

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := s.runGuarded(jobCtx, entry.Job)
	duration := time.Since(start)
	s.observeDuration(entry.Job.Name(), duration)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(entry.Job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(entry.Job.Name())
}

func (s *Service) runGuarded(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}

func (s *Service) recordSkipped(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSkipped(job)
}
