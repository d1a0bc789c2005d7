package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-bms/meridian-bms/internal/app"
	"github.com/meridian-bms/meridian-bms/internal/auth"
	"github.com/meridian-bms/meridian-bms/internal/billing"
	"github.com/meridian-bms/meridian-bms/internal/crm/clients"
	"github.com/meridian-bms/meridian-bms/internal/hr/employees"
	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/journal"
	"github.com/meridian-bms/meridian-bms/internal/ledger/linked"
	"github.com/meridian-bms/meridian-bms/internal/ledger/periods"
	"github.com/meridian-bms/meridian-bms/internal/ledger/reports"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/messaging"
	"github.com/meridian-bms/meridian-bms/internal/platform/db"
	"github.com/meridian-bms/meridian-bms/internal/shared"
	"github.com/meridian-bms/meridian-bms/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo)
	ledgerCfg, err := settingsService.Get(ctx)
	if err != nil {
		logger.Error("load accounting settings", slog.Any("error", err))
		os.Exit(1)
	}
	settingsHandler := settings.NewHandler(logger, settingsService)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	periodsRepo := periods.NewRepository(pool)
	periodsService := periods.NewService(periodsRepo)
	periodsHandler := periods.NewHandler(logger, periodsService)

	provisioner := linked.NewProvisioner(linked.NewRepository(pool), ledgerCfg, logger)

	journalRepo := journal.NewRepository(pool)
	journalService := journal.NewService(journalRepo, periodsService, auditLogger, ledgerCfg)
	journalHandler := journal.NewHandler(logger, journalService, ledgerCfg)

	reportsService := reports.NewService(reports.NewRepository(pool))
	reportsHandler := reports.NewHandler(logger, reportsService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	notifier := messaging.NewNotifier(jobsClient, logger)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo, provisioner, logger)
	clientsHandler := clients.NewHandler(logger, clientsService)

	employeesRepo := employees.NewRepository(pool)
	employeesService := employees.NewService(employeesRepo, provisioner, journalService, notifier, ledgerCfg, logger)
	employeesHandler := employees.NewHandler(logger, employeesService, ledgerCfg)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, clientsService, provisioner, journalService, notifier, ledgerCfg, logger)
	billingHandler := billing.NewHandler(logger, billingService, ledgerCfg)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		AuthHandler:     authHandler,
		AccountsHandler: accountsHandler,
		SettingsHandler: settingsHandler,
		PeriodsHandler:  periodsHandler,
		JournalHandler:  journalHandler,
		ReportsHandler:  reportsHandler,
		ClientsHandler:  clientsHandler,
		EmployeeHandler: employeesHandler,
		BillingHandler:  billingHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
