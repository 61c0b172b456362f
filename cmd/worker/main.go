package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/mindful-harmony/internal/config"
	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/benvon/mindful-harmony/internal/telemetry"
	"github.com/benvon/mindful-harmony/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for AI provider logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.Environment, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_required_for_worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTELEnabled,
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.OTELServiceName + "-worker",
		Environment: cfg.Environment,
	}, zapLogger)
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	journalRepo := database.NewJournalRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	guard := ai.NewGuardFromConfig(ctx, ai.NewDefaultRegistry(), cfg, zapLogger, debugMode)
	if !guard.HasProvider() {
		zapLogger.Warn("no_ai_provider_configured_reanalysis_will_keep_fallbacks")
	}

	reanalyzer := workers.NewJournalReanalyzer(guard, journalRepo, jobQueue, zapLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	go workers.Consume(ctx, msgChan, errChan, reanalyzer, zapLogger)

	dlqGC := queue.NewGarbageCollector(jobQueue, cfg.DLQGCInterval, cfg.DLQRetention, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped", zap.Error(err))
		}
	}()

	if guard.HasProvider() {
		reprocessor := workers.NewReprocessor(jobQueue, journalRepo, workers.DefaultSweepLookback, zapLogger)
		go reprocessor.Start(ctx, cfg.ReanalyzeSweepInterval)
	}

	zapLogger.Info("worker_started",
		zap.Duration("dlq_retention", cfg.DLQRetention),
		zap.Duration("dlq_gc_interval", cfg.DLQGCInterval),
		zap.Duration("sweep_interval", cfg.ReanalyzeSweepInterval),
	)

	<-sigChan
	zapLogger.Info("worker_shutting_down")
	cancel()
	zapLogger.Info("worker_stopped")
}
