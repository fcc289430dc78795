package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborview-hms/harborview/internal/app"
	"github.com/harborview-hms/harborview/internal/directory"
	"github.com/harborview-hms/harborview/internal/observability"
	"github.com/harborview-hms/harborview/internal/platform/cache"
	"github.com/harborview-hms/harborview/internal/platform/db"
	"github.com/harborview-hms/harborview/internal/rbac"
	"github.com/harborview-hms/harborview/internal/session"
	"github.com/harborview-hms/harborview/internal/shared"
)

func main() {
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

	metrics := observability.NewMetrics()

	sessions := session.NewManager(redisClient, cfg.SessionCookieName, cfg.SessionIdleTTL, cfg.IsProduction())
	recorder := session.NewRecorder(pool)
	sessionHandler := session.NewHandler(logger, sessions, recorder, metrics)

	directoryService := directory.NewService(directory.NewRepository(pool))

	rbacRepo := rbac.NewRepository(pool)
	registry := rbac.NewRegistry(rbacRepo)
	index := rbac.NewIndex(rbacRepo)
	auditor := shared.NewAccessAuditor(pool)
	guard := rbac.NewGuard(registry, index, auditor, metrics, logger)
	rbacMiddleware := rbac.Middleware{Guard: guard, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbac.NewService(rbacRepo, rbacRepo), rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Sessions:       sessions,
		Directory:      directoryService,
		Registry:       registry,
		SessionHandler: sessionHandler,
		RBACHandler:    rbacHandler,
		RBACMiddleware: rbacMiddleware,
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
