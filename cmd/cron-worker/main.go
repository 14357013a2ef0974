package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltpath/labstock-backend/internal/components"
	"github.com/voltpath/labstock-backend/internal/cron"
	"github.com/voltpath/labstock-backend/internal/notifications"
	"github.com/voltpath/labstock-backend/internal/users"
	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/db"
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/mailer"
	"github.com/voltpath/labstock-backend/pkg/metrics"
	"github.com/voltpath/labstock-backend/pkg/migrate"
	"github.com/voltpath/labstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	componentRepo := components.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	sender := mailer.NewSMTPSender(cfg.SMTP, logg)
	notificationService, err := notifications.NewService(notificationRepo, userRepo, sender, cfg.Alerts, logg, nil)
	fatalOn(logg, "notification service", err)

	lowStockJob, err := cron.NewLowStockSweepJob(cron.LowStockSweepJobParams{
		Logger:     logg,
		Components: componentRepo,
		Notifier:   notificationService,
	})
	fatalOn(logg, "low stock job", err)

	oldStockJob, err := cron.NewOldStockSweepJob(cron.OldStockSweepJobParams{
		Logger:     logg,
		Components: componentRepo,
		Notifier:   notificationService,
		Months:     cfg.Alerts.OldStockMonths,
	})
	fatalOn(logg, "old stock job", err)

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:   logg,
		Notifier: notificationService,
	})
	fatalOn(logg, "cleanup job", err)

	summaryJob, err := cron.NewDailySummaryJob(cron.DailySummaryJobParams{
		Logger:     logg,
		Components: componentRepo,
		Notifier:   notificationService,
		Months:     cfg.Alerts.OldStockMonths,
	})
	fatalOn(logg, "daily summary job", err)

	registry := cron.NewRegistry(
		cron.Entry{Job: lowStockJob, Interval: cfg.Scheduler.LowStockInterval, Lock: mustLock(logg, redisClient, lowStockJob.Name())},
		cron.Entry{Job: oldStockJob, Interval: cfg.Scheduler.OldStockInterval, Lock: mustLock(logg, redisClient, oldStockJob.Name())},
		cron.Entry{Job: cleanupJob, Interval: cfg.Scheduler.CleanupInterval, Lock: mustLock(logg, redisClient, cleanupJob.Name())},
		cron.Entry{Job: summaryJob, Interval: cfg.Scheduler.DailySummaryInterval, Lock: mustLock(logg, redisClient, summaryJob.Name())},
	)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	fatalOn(logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func mustLock(logg *logger.Logger, store redis.Locker, job string) *cron.JobLock {
	lock, err := cron.NewJobLock(store, job, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create job lock", err)
		os.Exit(1)
	}
	return lock
}

func fatalOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
