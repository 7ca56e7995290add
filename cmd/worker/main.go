package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loopreel/loopreel/internal/application"
	"github.com/loopreel/loopreel/internal/config"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/media"
	"github.com/loopreel/loopreel/internal/queue"
	"github.com/loopreel/loopreel/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting worker service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseRetries <= 0 {
		conf.DatabaseRetries = 10
	}

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	if !conf.StorageConfigured() {
		slog.Error("object storage not configured; workers cannot upload artifacts")
		os.Exit(1)
	}
	store, err := storage.NewS3Store(ctx, *conf)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	dispatcher := queue.NewDispatcher(ctx, dbc, conf.QueueDisabled)
	fallback := queue.NewFallback(conf.VideoWorkers)
	pipeline := media.NewPipeline(dbc, store)
	mediaSvc := media.NewService(dbc, store, dispatcher, fallback, pipeline, conf.TmpDir)

	// Recover orphaned jobs stuck in "processing" from previous crashes/restarts
	slog.Info("Recovering stuck jobs from previous service instances")
	runMaintenance(ctx, dbc)

	// Periodically recover stuck jobs and fail excessive retries (not just on startup).
	// This prevents long-running ffmpeg operations from permanently blocking the queue.
	go func() {
		ticker := time.NewTicker(2 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runMaintenance(ctx, dbc)
			}
		}
	}()

	wake := make(chan struct{}, 1)
	go queue.ListenAndSignal(ctx, conf.DatabaseDSN, wake)

	videoWorkers := conf.VideoWorkers
	if videoWorkers <= 0 {
		videoWorkers = queue.PolicyFor(queue.KindProcessVideo).Concurrency
	}
	taggingWorkers := conf.TaggingWorkers
	if taggingWorkers <= 0 {
		taggingWorkers = queue.PolicyFor(queue.KindAfterVideoReady).Concurrency
	}

	slog.Info("Workers started", "video_workers", videoWorkers, "tagging_workers", taggingWorkers)
	for i := 0; i < videoWorkers; i++ {
		go queue.Worker(ctx, dbc, queue.KindProcessVideo,
			mediaSvc.ProcessVideoHandler(), mediaSvc.ProcessVideoExhausted(), wake)
	}
	for i := 0; i < taggingWorkers; i++ {
		go queue.Worker(ctx, dbc, queue.KindAfterVideoReady,
			mediaSvc.AfterVideoReadyHandler(), nil, wake)
	}

	<-ctx.Done()
	slog.Info("Worker service stopping")
}

func runMaintenance(ctx context.Context, dbc *db.DatabaseConnection) {
	q := dbc.Queries(ctx)
	if n, err := q.RecoverStuckJobs(ctx); err != nil {
		slog.Error("failed to recover stuck jobs", "error", err)
	} else if n > 0 {
		slog.Warn("recovered stuck jobs", "count", n)
	}
	if n, err := q.FailExcessiveRetryJobs(ctx); err != nil {
		slog.Error("failed to fail excessive retry jobs", "error", err)
	} else if n > 0 {
		slog.Warn("permanently failed jobs exceeding max retries", "count", n)
	}
}
