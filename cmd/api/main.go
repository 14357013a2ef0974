package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/voltpath/labstock-backend/api/routes"
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
	"github.com/voltpath/labstock-backend/pkg/logger"
	"github.com/voltpath/labstock-backend/pkg/mailer"
	"github.com/voltpath/labstock-backend/pkg/migrate"
	"github.com/voltpath/labstock-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	userRepo := users.NewRepository(dbClient.DB())
	componentRepo := components.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	stockRepo := stock.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	dashboardRepo := dashboard.NewRepository(dbClient.DB())
	assistantRepo := assistant.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	fatalOn(logg, "auth service", err)

	userService, err := users.NewService(userRepo, nil)
	fatalOn(logg, "user service", err)

	ledgerService, err := ledger.NewService(ledgerRepo, nil)
	fatalOn(logg, "ledger service", err)

	componentService, err := components.NewService(componentRepo, ledgerService, nil)
	fatalOn(logg, "component service", err)

	sender := mailer.NewSMTPSender(cfg.SMTP, logg)
	notificationService, err := notifications.NewService(notificationRepo, userRepo, sender, cfg.Alerts, logg, nil)
	fatalOn(logg, "notification service", err)

	stockService, err := stock.NewService(
		dbClient,
		stockRepo,
		ledgerService,
		notifications.LowStockHook{Service: notificationService},
		logg,
		nil,
	)
	fatalOn(logg, "stock service", err)

	dashboardService, err := dashboard.NewService(dashboardRepo, nil)
	fatalOn(logg, "dashboard service", err)

	scanService, err := scan.NewService(componentRepo)
	fatalOn(logg, "scan service", err)

	var completer assistant.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = openai.NewClient(cfg.OpenAI.APIKey)
	}
	assistantService, err := assistant.NewService(assistantRepo, completer, redisClient, cfg.OpenAI, logg, nil)
	fatalOn(logg, "assistant service", err)

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DBPinger:      dbClient,
		Redis:         redisClient,
		AuthService:   authService,
		Users:         userService,
		UserLoader:    userRepo,
		Components:    componentService,
		Stock:         stockService,
		Ledger:        ledgerService,
		Notifications: notificationService,
		Dashboard:     dashboardService,
		Scan:          scanService,
		Assistant:     assistantService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

func fatalOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
