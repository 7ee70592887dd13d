package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wardline/notify-hub/internal/api/router"
	appconfig "github.com/wardline/notify-hub/internal/config"
	"github.com/wardline/notify-hub/internal/events"
	"github.com/wardline/notify-hub/internal/hub"
	"github.com/wardline/notify-hub/internal/observability/metrics"
	"github.com/wardline/notify-hub/pkg/logging"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting notify-hub API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.SessionJWTSecret == "" {
		logger.Error("SESSION_JWT_SECRET is required")
		os.Exit(1)
	}
	if cfg.EmitAuthSecret == "" {
		logger.Error("EMIT_AUTH_SECRET is required")
		os.Exit(1)
	}

	rdb := newRedisClient(cfg)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// Dedupe fails open, so a cold Redis degrades rather than blocks.
		logger.Warn("redis unreachable, emit dedupe degraded", "error", err, "addr", cfg.RedisAddr)
	}
	cancelPing()

	dedupe := events.NewProcessedStore(rdb, cfg.EventDedupeTTL)
	hubMetrics := metrics.NewHubMetrics(nil)

	h := hub.New(hub.Config{
		SessionSecret:  cfg.SessionJWTSecret,
		PollWait:       cfg.PollWait,
		SessionBuffer:  cfg.SessionBuffer,
		AllowedOrigins: cfg.WSAllowedOrigins,
	}, dedupe, hubMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Hub:                h,
		MetricsHandler:     promhttp.Handler(),
		SessionSecret:      cfg.SessionJWTSecret,
		EmitSecret:         cfg.EmitAuthSecret,
		TokenTTL:           cfg.SessionTokenTTL,
		CORSAllowedOrigins: cfg.WSAllowedOrigins,
	})

	// No Read/Write timeouts: the socket and the long-poll endpoint hold
	// connections open well past any sane request deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close failed", "error", err)
	}

	logger.Info("server stopped")
}

func newRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
