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

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/app"
	"github.com/rentfold/rentfold/internal/auth"
	"github.com/rentfold/rentfold/internal/billing"
	"github.com/rentfold/rentfold/internal/branding"
	"github.com/rentfold/rentfold/internal/leases"
	"github.com/rentfold/rentfold/internal/observability"
	"github.com/rentfold/rentfold/internal/platform/cache"
	"github.com/rentfold/rentfold/internal/platform/db"
	"github.com/rentfold/rentfold/internal/portal"
	"github.com/rentfold/rentfold/internal/properties"
	"github.com/rentfold/rentfold/internal/shared"
	"github.com/rentfold/rentfold/internal/templates"
	"github.com/rentfold/rentfold/internal/tenants"
	"github.com/rentfold/rentfold/internal/tickets"
	"github.com/rentfold/rentfold/internal/users"
	"github.com/rentfold/rentfold/internal/view"
	"github.com/rentfold/rentfold/jobs"
	"github.com/rentfold/rentfold/report"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "rentfold_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	engine, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	grantStore := access.NewGrantStore(dbpool)
	resolver := access.NewResolver(grantStore, redisClient, cfg.RoleCacheTTL, logger)
	metrics := observability.NewMetrics()
	guard := access.Guard{Resolver: resolver, Logger: logger, Metrics: metrics}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	accessHandler := access.NewHandler(logger, guard)

	propertyRepo := properties.NewRepository(dbpool)
	propertyService := properties.NewService(propertyRepo, auditLogger)
	propertyHandler := properties.NewHandler(logger, propertyService)

	tenantRepo := tenants.NewPGRepository(dbpool)
	tenantService := tenants.NewService(tenantRepo, grantStore, resolver, auditLogger)
	tenantHandler := tenants.NewHandler(logger, tenantService)

	leaseRepo := leases.NewPGRepository(dbpool)
	leaseService := leases.NewService(leaseRepo, propertyService, auditLogger)
	leaseHandler := leases.NewHandler(logger, leaseService)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	brandingRepo := branding.NewPGRepository(dbpool)
	brandingService := branding.NewService(brandingRepo, auditLogger)
	brandingHandler := branding.NewHandler(logger, brandingService)
	invoiceRenderer := branding.NewRenderer(brandingService, engine, pdfClient)

	billingRepo := billing.NewPGRepository(dbpool)
	billingService := billing.NewService(billingRepo, leaseService, idempotencyStore, auditLogger)
	billingHandler := billing.NewHandler(logger, billingService, invoiceRenderer)

	ticketRepo := tickets.NewPGRepository(dbpool)
	ticketService := tickets.NewService(ticketRepo, auditLogger)
	ticketHandler := tickets.NewHandler(logger, ticketService)

	templateRepo := templates.NewPGRepository(dbpool)
	templateService := templates.NewService(templateRepo, auditLogger)
	templateHandler := templates.NewHandler(logger, templateService)

	userRepo := users.NewPGRepository(dbpool)
	userService := users.NewService(userRepo, grantStore, resolver, sessionManager, auditLogger)
	userHandler := users.NewHandler(logger, userService, auditLogger, grantStore)

	portalHandler := portal.NewHandler(logger, tenantService, leaseService, billingService, ticketService, invoiceRenderer)

	reportHandler := report.NewHandler(pdfClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Guard:             guard,
		AuthHandler:       authHandler,
		AccessHandler:     accessHandler,
		PropertiesHandler: propertyHandler,
		TenantsHandler:    tenantHandler,
		LeasesHandler:     leaseHandler,
		BillingHandler:    billingHandler,
		TicketsHandler:    ticketHandler,
		TemplatesHandler:  templateHandler,
		BrandingHandler:   brandingHandler,
		PortalHandler:     portalHandler,
		UsersHandler:      userHandler,
		ReportHandler:     reportHandler,
		JobsHandler:       jobHandler,
		Metrics:           metrics,
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
