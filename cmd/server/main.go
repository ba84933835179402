package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/infrastructure/audit"
	"github.com/arcollect/backend/internal/infrastructure/cache"
	"github.com/arcollect/backend/internal/infrastructure/config"
	"github.com/arcollect/backend/internal/infrastructure/logger"
	"github.com/arcollect/backend/internal/infrastructure/notification"
	"github.com/arcollect/backend/internal/infrastructure/persistence"
	"github.com/arcollect/backend/internal/infrastructure/scheduler"
	"github.com/arcollect/backend/internal/interfaces/http/handler"
	"github.com/arcollect/backend/internal/interfaces/http/middleware"
	"github.com/arcollect/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Arcollect Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Run schema migrations
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Transaction scope shared by all services
	scope := persistence.NewGormTransactionScope(db.DB)

	// Reminder throttle: Redis when reachable, in-memory otherwise
	throttleFactory := cache.NewReminderThrottleFactory(cfg.Redis, cache.WithLogger(log))
	throttle, err := throttleFactory.CreateThrottle()
	if err != nil {
		log.Fatal("Failed to create reminder throttle", zap.Error(err))
	}

	notifier := notification.NewLogNotifier(log)
	auditLogger := audit.NewGormAuditLogger(db.DB, log)

	// Application services
	ledgerService := appcollections.NewLedgerService(
		scope, notifier, auditLogger, throttle, cfg.Collections.ReminderWindow, log)
	paymentService := appcollections.NewPaymentService(scope, notifier, auditLogger, log)
	changeRequestService := appcollections.NewChangeRequestService(
		scope, notifier, auditLogger, cfg.Approval.AutoApproveWindow, log)
	disputeService := appcollections.NewDisputeService(scope, auditLogger, log)

	// Background sweeps: change request auto-approval and collection aging
	sweepRunner := scheduler.NewSweepRunner(cfg.Scheduler, changeRequestService, ledgerService, log)
	if err := sweepRunner.Start(); err != nil {
		log.Fatal("Failed to start sweep runner", zap.Error(err))
	}

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.ResolveActor(),
	)

	// Routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewCollectionHandler(ledgerService, disputeService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewChangeRequestHandler(changeRequestService)).
		Register(handler.NewSystemHandler(db, sweepRunner)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := sweepRunner.Stop(ctx); err != nil {
		log.Error("Failed to stop sweep runner", zap.Error(err))
	}

	log.Info("Arcollect Backend stopped")
}
