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

	"github.com/SaraMars666/MOV-OS/internal/app"
	"github.com/SaraMars666/MOV-OS/internal/clp"
	"github.com/SaraMars666/MOV-OS/internal/observability"
	"github.com/SaraMars666/MOV-OS/internal/platform/cache"
	"github.com/SaraMars666/MOV-OS/internal/platform/db"
	"github.com/SaraMars666/MOV-OS/internal/reports"
	reporthttp "github.com/SaraMars666/MOV-OS/internal/reports/http"
	"github.com/SaraMars666/MOV-OS/jobs"
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

	repo := reports.NewRepository(dbpool)
	reportCache := reports.NewCache(redisClient, cfg.CacheTTL)
	reportService := reports.NewService(repo, reportCache, logger, reports.ServiceConfig{
		TaxRatePct: cfg.TaxRate(),
		Location:   cfg.Location(),
	})
	historyService := reports.NewHistoryService(repo, cfg.Location())

	reportsHandler := reporthttp.NewHandler(logger, reportService, historyService, clp.DefaultConvention())
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	// Cache versions bump on the sales channel; keep a listener alive so this
	// process also reacts to invalidations published by other producers.
	go func() {
		if err := reportCache.ListenForInvalidation(ctx, "sales.bump"); err != nil && ctx.Err() == nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportsHandler,
		JobsHandler:    jobsHandler,
		Metrics:        metrics,
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
