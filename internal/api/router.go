package api

import (
	"github.com/finsend/transfer-service/internal/api/handler"
	"github.com/finsend/transfer-service/internal/api/middleware"
	"github.com/finsend/transfer-service/internal/config"
	"github.com/finsend/transfer-service/internal/api/spec"
	"github.com/finsend/transfer-service/internal/idempotency"
	"github.com/finsend/transfer-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	redis     redis.Cmdable
	svc       *service.TransferService
	idemStore *idempotency.Store
	auth      service.Authorizer
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, redisClient redis.Cmdable,
	svc *service.TransferService, idemStore *idempotency.Store, auth service.Authorizer) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		svc:       svc,
		idemStore: idemStore,
		auth:      auth,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	transferHandler := handler.NewTransferHandler(api.svc)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/healthz/live", healthHandler.Live)
		r.Get("/healthz/ready", healthHandler.Ready)
		r.Get("/openapi.yaml", spec.OpenAPIHandler())
	})
	r.Handle("/metrics", promhttp.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.With(
			middleware.RequireAuthorized(api.auth, service.ActionCreateTransfer),
			middleware.IdempotencyMiddleware(api.idemStore, api.logger),
		).Post("/v1/transfers", transferHandler.CreateTransfer)

		r.With(middleware.RequireAuthorized(api.auth, service.ActionReadTransfer)).
			Get("/v1/transfers/code/{code}", transferHandler.GetTransferByCode)
		r.With(middleware.RequireAuthorized(api.auth, service.ActionReadTransfer)).
			Get("/v1/transfers/{id}", transferHandler.GetTransferByID)

		r.With(middleware.RequireAuthorized(api.auth, service.ActionUpdateTransfer)).
			Patch("/v1/transfers/{id}/status", transferHandler.UpdateTransferStatus)
		r.With(middleware.RequireAuthorized(api.auth, service.ActionDeleteTransfer)).
			Delete("/v1/transfers/{id}", transferHandler.DeleteTransfer)
	})

	return r
}
