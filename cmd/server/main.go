package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/config"
	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/repository"
	"github.com/mamadbah2/platelog/internal/repository/mongodb"
	"github.com/mamadbah2/platelog/internal/repository/sheets"
	"github.com/mamadbah2/platelog/internal/repository/sqlite"
	"github.com/mamadbah2/platelog/internal/scheduler"
	"github.com/mamadbah2/platelog/internal/server/handlers"
	"github.com/mamadbah2/platelog/internal/server/router"
	analysissvc "github.com/mamadbah2/platelog/internal/service/analysis"
	entrysvc "github.com/mamadbah2/platelog/internal/service/entries"
	reportingsvc "github.com/mamadbah2/platelog/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/platelog/internal/service/whatsapp"
	"github.com/mamadbah2/platelog/internal/worker"
	"github.com/mamadbah2/platelog/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/platelog/pkg/clients/whatsapp"
	"github.com/mamadbah2/platelog/pkg/logger"
)

const reanalysisQueueSize = 16

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, closeStore, err := openStore(context.Background(), cfg.Storage, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	aiClient := anthropic.NewClient(cfg.AI)
	analysis := analysissvc.NewService(aiClient, logger.Named(baseLogger, "svc.analysis"))

	// Re-analysis tasks get room for one advisor call plus storage round-trips.
	queue := worker.NewQueue(reanalysisQueueSize, 2*cfg.AI.Timeout, logger.Named(baseLogger, "worker"))
	foodLog := entrysvc.NewService(
		repository.NewCollections(store),
		analysis,
		cfg.Location(),
		logger.Named(baseLogger, "svc.entries"),
		entrysvc.WithTrigger(queue),
	)
	queue.Start(func(ctx context.Context, label string) error {
		_, err := foodLog.AnalyzeDay(ctx, label)
		if errors.Is(err, models.ErrNoEntries) {
			return nil
		}
		return err
	})
	defer queue.Stop()

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
		baseLogger.Info("google sheets export enabled")
	}
	reportingSvc := reportingsvc.NewService(foodLog, exporter, logger.Named(baseLogger, "svc.reporting"))

	var notifier scheduler.DayNotifier
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappsvc.NewNotifier(whatsappclient.NewClient(cfg.WhatsApp), cfg.WhatsApp.Recipient, foodLog, logger.Named(baseLogger, "svc.whatsapp"))
		baseLogger.Info("whatsapp day summaries enabled")
	}

	sched := scheduler.NewScheduler(cfg.Schedule.AnalysisCron, cfg.Location(), foodLog, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(
		handlers.NewEntryHandler(foodLog, logger.Named(baseLogger, "handlers.entries")),
		handlers.NewAnalysisHandler(analysis, logger.Named(baseLogger, "handlers.analysis")),
		logger.Named(baseLogger, "router"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore returns the configured collection store and its close function.
func openStore(ctx context.Context, cfg config.StorageConfig, base *zap.Logger) (repository.Store, func() error, error) {
	switch cfg.Driver {
	case config.StorageMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return repo.Close(context.Background()) }, nil
	case config.StorageMemory:
		base.Warn("using in-memory storage, the food log will not survive a restart")
		return repository.NewMemoryStore(), func() error { return nil }, nil
	default:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath, logger.Named(base, "repo.sqlite"))
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}
}
