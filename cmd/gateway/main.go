package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/upb/llm-dispatch/audit"
	"github.com/upb/llm-dispatch/config"
	"github.com/upb/llm-dispatch/dispatch"
	"github.com/upb/llm-dispatch/handlers"
	"github.com/upb/llm-dispatch/routes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client := dispatch.New(cfg, dispatch.WithLogger(logger))

	var recorder audit.Recorder = audit.NopRecorder{}
	var db *audit.DB
	if cfg.Database != nil {
		db, err = audit.OpenDB(*cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to open audit database", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		recorder = audit.NewPostgresRecorder(db, logger)
	}

	deps := &routes.Dependencies{
		Config:     cfg,
		Completion: handlers.NewCompletionHandler(client, recorder, logger),
		Health:     newHealthHandler(db),
		Providers:  client,
		Logger:     logger,
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("gateway listening",
			zap.String("addr", srv.Addr),
			zap.Strings("providers", client.Providers()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsDevelopment() || cfg.Observability.LogFormat == "text" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.Observability.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func newHealthHandler(db *audit.DB) *handlers.HealthHandler {
	if db == nil {
		return handlers.NewHealthHandler(nil)
	}
	return handlers.NewHealthHandler(db)
}
