package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/finsend/transfer-service/internal/api"
	"github.com/finsend/transfer-service/internal/api/middleware"
	"github.com/finsend/transfer-service/internal/config"
	"github.com/finsend/transfer-service/internal/db"
	"github.com/finsend/transfer-service/internal/events"
	"github.com/finsend/transfer-service/internal/fx"
	"github.com/finsend/transfer-service/internal/idempotency"
	"github.com/finsend/transfer-service/internal/observability"
	"github.com/finsend/transfer-service/internal/repository"
	"github.com/finsend/transfer-service/internal/service"
	"github.com/finsend/transfer-service/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server and outbox relay, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	var publisher events.Publisher
	publisher, err = events.NewAMQPPublisher(cfg.AMQPURL, logger)
	if err != nil {
		logger.Warn("amqp unavailable, events stay queued in outbox", zap.Error(err))
		publisher = events.NewNoopPublisher(logger)
	}
	defer publisher.Close()

	repo := repository.NewPostgresRepository(pool)
	rates := fx.NewCachedRateSource(fx.NewStaticRateSource(nil), redisClient, cfg.FXRateCacheTTL)
	converter := fx.NewRateConverter(rates)
	transferSvc := service.NewTransferService(repo, converter, logger)
	idemStore := idempotency.NewStore(redisClient, pool, cfg.IdempotencyTTL)

	outboxWorker := worker.NewOutboxWorker(repo, publisher, logger).
		WithPollInterval(cfg.OutboxPollInterval).
		WithBatchSize(cfg.OutboxBatchSize)
	stopWorker := outboxWorker.Run(ctx)
	logger.Info("outbox relay started", zap.Duration("interval", cfg.OutboxPollInterval), zap.Int32("batch", cfg.OutboxBatchSize))

	router := api.NewRouter(cfg, logger, pool, redisClient, transferSvc, idemStore, middleware.ClaimsAuthorizer{})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping outbox relay")
	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
