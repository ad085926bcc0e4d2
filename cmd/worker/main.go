package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/rentfold/rentfold/internal/app"
	"github.com/rentfold/rentfold/internal/billing"
	jobmetrics "github.com/rentfold/rentfold/internal/jobs"
	"github.com/rentfold/rentfold/internal/platform/db"
	"github.com/rentfold/rentfold/internal/shared"
	"github.com/rentfold/rentfold/internal/templates"
	"github.com/rentfold/rentfold/internal/tenants"
	"github.com/rentfold/rentfold/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	billingRepo := billing.NewPGRepository(pool)
	billingService := billing.NewService(billingRepo, nil, idempotencyStore, auditLogger)

	tenantRepo := tenants.NewPGRepository(pool)
	tenantService := tenants.NewService(tenantRepo, nil, nil, auditLogger)

	templateRepo := templates.NewPGRepository(pool)
	templateService := templates.NewService(templateRepo, auditLogger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)
	mailer := jobs.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	scanner := jobs.NewScanner(billingService, tenantService, templateService, client, metrics, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(mailer, logger)},
			{Type: jobs.TaskTypeOverdueScan, Handler: scanner.Handler()},
			{Type: jobs.TaskTypeMaintenance, Handler: jobs.NewMaintenanceHandler(idempotencyStore, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 7 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: jobs.NewMaintenanceTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
