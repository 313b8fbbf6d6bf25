// Package main is the entry point for the storefront API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/campusshop/storefront/internal/cache"
	"github.com/campusshop/storefront/internal/config"
	"github.com/campusshop/storefront/internal/handler"
	"github.com/campusshop/storefront/internal/middleware"
	"github.com/campusshop/storefront/internal/queue"
	"github.com/campusshop/storefront/internal/repo"
	"github.com/campusshop/storefront/internal/service"
	"github.com/campusshop/storefront/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	if cfg.MigrateOnStart {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Cache and messaging ---------------------------------------------
	// Both are optional. A nil Redis client turns the cache into a
	// pass-through; an empty broker URL disables publishing.
	rdb := cache.NewRedisClient(ctx, cfg.RedisURL, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	eventCache := cache.NewEventCache(rdb, cfg.CacheTTL, logger)
	publisher := queue.NewPublisher(cfg.RabbitMQURL, logger)
	if !publisher.Enabled() {
		slog.Info("RABBITMQ_URL not set, order and sheet publishing disabled")
	}

	// --- Repos and services ----------------------------------------------
	eventRepo := repo.NewEventRepo(pool)
	productRepo := repo.NewProductRepo(pool)
	eventProductRepo := repo.NewEventProductRepo(pool)
	orderRepo := repo.NewOrderRepo(pool)

	events := service.NewEventService(eventRepo, productRepo, eventProductRepo, eventCache, logger)
	svc := handler.Services{
		Events:       events,
		Availability: service.NewAvailabilityService(events, orderRepo),
		Checkout:     service.NewCheckoutService(events, repo.NewTxRunner(pool), publisher, logger),
		Orders:       service.NewOrderService(orderRepo, logger),
		Export:       service.NewExportService(events, orderRepo, publisher, logger),
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. The body limit sits last so rejected requests are
	// still logged and carry CORS headers.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(svc, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout leaves room for large spreadsheet exports.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending migrations over a short-lived database/sql
// connection opened through the pgx stdlib driver.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "versions", applied)
	return nil
}
