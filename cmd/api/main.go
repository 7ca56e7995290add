package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/loopreel/loopreel/cmd/api/internal/web"
	"github.com/loopreel/loopreel/internal/application"
	"github.com/loopreel/loopreel/internal/auth"
	"github.com/loopreel/loopreel/internal/config"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/event"
	"github.com/loopreel/loopreel/internal/feed"
	"github.com/loopreel/loopreel/internal/media"
	"github.com/loopreel/loopreel/internal/queue"
	"github.com/loopreel/loopreel/internal/storage"
	"github.com/loopreel/loopreel/internal/vote"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting api service")

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

	if err := dbc.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// The store stays nil when storage is not configured. Video creation
	// then fails with 503 instead of accepting uploads it cannot keep.
	var store storage.BlobStore
	if conf.StorageConfigured() {
		s3, err := storage.NewS3Store(ctx, *conf)
		if err != nil {
			slog.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		store = s3
	} else {
		slog.Warn("object storage not configured; video creation will be rejected")
	}

	dispatcher := queue.NewDispatcher(ctx, dbc, conf.QueueDisabled)
	fallback := queue.NewFallback(conf.VideoWorkers)

	pipeline := media.NewPipeline(dbc, store)
	mediaSvc := media.NewService(dbc, store, dispatcher, fallback, pipeline, conf.TmpDir)
	voteSvc := vote.NewService(dbc)
	feedSvc := feed.NewService(dbc)
	eventSvc := event.NewService(dbc)

	tokens := auth.NewTokens(conf.JWTSecret)

	e, err := web.NewWebserver(dbc, tokens, mediaSvc, voteSvc, feedSvc, eventSvc)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
