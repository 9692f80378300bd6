package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-dashboard/api/swagger"
	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/client"
	"github.com/noah-isme/attendance-dashboard/internal/handler"
	"github.com/noah-isme/attendance-dashboard/internal/middleware"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/service"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	"github.com/noah-isme/attendance-dashboard/pkg/cache"
	"github.com/noah-isme/attendance-dashboard/pkg/config"
	"github.com/noah-isme/attendance-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-dashboard/pkg/middleware/requestid"
)

// @title Attendance Dashboard
// @version 0.1.0
// @description Role-gated attendance pages over the attendance REST backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	models.AlertDismissAfter = cfg.Alerts.DismissAfter

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	storage, ready, closeStorage, err := sessionStorage(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("session store unavailable", zap.Error(err))
	}
	defer closeStorage()

	backend := client.New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, nil,
		client.WithLogger(logr), client.WithObserver(metrics))
	deps := service.Dependencies{
		Client:    backend,
		Metrics:   metrics,
		Validator: service.NewValidator(),
		Table:     service.TableOptions{PageSizes: cfg.Table.PageSizes, DefaultPageSize: cfg.Table.DefaultPageSize},
		Capture: capture.Options{
			JPEGQuality:     cfg.Capture.JPEGQuality,
			LocationTimeout: cfg.Capture.LocationTimeout,
			MaxDimension:    capture.DefaultMaxDimension,
		},
		Location: time.Local,
		Logger:   logr,
	}

	sessionMW := middleware.Session(
		middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TokenKey:   cfg.Session.TokenKey,
			TTL:        cfg.Session.TTL,
			SecureOnly: cfg.Session.SecureOnly,
		},
		storage,
		func(m *session.Manager, store session.Storage) *service.Workspace {
			return service.NewWorkspace(deps, m, store)
		},
		metrics, logr,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, ready)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.NewHandlers(
		handler.NewAttendanceHandler(service.NewLiveClock(cfg.Clock.Interval, time.Local), 0),
		metricsHandler,
	)
	handler.RegisterRoutes(r, handlers, sessionMW, session.DefaultPolicy())

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// clock streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}

// sessionStorage picks the per-session store. The ready check is nil for
// in-process stores.
func sessionStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (middleware.StorageFactory, handler.ReadyCheck, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb, err := cache.NewRedis(ctx, cfg.Redis, logr)
		if err != nil {
			return nil, nil, nil, err
		}
		factory := func(id string) session.Storage {
			return session.NewRedisStorage(rdb, id, cfg.Session.TTL)
		}
		ready := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return factory, ready, func() { _ = rdb.Close() }, nil
	case config.SessionStoreFile:
		logr.Warn("file sessions are for the command-line client; using memory sessions")
	}
	registry := session.NewMemoryRegistry(cfg.Session.TTL)
	return func(id string) session.Storage { return registry.For(id) }, nil, func() {}, nil
}
