package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/config"
	"paygate/internal/configuration"
	"paygate/internal/db"
	"paygate/internal/gateway"
	"paygate/internal/gateway/providers"
	"paygate/internal/lock"
	"paygate/internal/logger"
	"paygate/internal/metrics"
	"paygate/internal/middleware"
	"paygate/internal/payment"
	"paygate/internal/payment/webhook"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

var (
	initDBFunc      = db.NewDatabase
	initRedisFunc   = func(ctx context.Context, addr string) (lock.RedisClient, error) { return lock.NewRedisClient(ctx, addr) }
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

const shutdownTimeout = 10 * time.Second

// services is everything the router needs.
type services struct {
	registry    *gateway.Registry
	factory     *payment.Factory
	metrics     *metrics.Callbacks
	limiter     *middleware.RateLimiter
	adminSecret []byte
	health      func(r *http.Request) error
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	var database *sql.DB
	if cfg.UseDatabase() {
		database, err = initDBFunc(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	svc, err := newServices(context.Background(), cfg, database)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go svc.limiter.Run(time.Minute, stop)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("payment gateway server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case s := <-sig:
		logger.L().Info("shutting down", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newServices wires storage, locking and gateways. A nil database selects
// the in-memory transaction manager and requires a gateway config file.
func newServices(ctx context.Context, cfg *config.Config, database *sql.DB) (*services, error) {
	log := logger.L()

	registry, err := providers.NewRegistry(providers.Options{XenditBaseURL: cfg.XenditBaseURL})
	if err != nil {
		return nil, err
	}

	configs, err := configStore(cfg, database)
	if err != nil {
		return nil, err
	}

	all, err := configs.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := configuration.ValidateAll(registry, all); err != nil {
		return nil, err
	}
	for _, c := range all {
		log.Info("payment gateway configured",
			zap.String("alias", c.Alias),
			zap.String("gateway", c.GatewayName),
			zap.Bool("enabled", c.Enabled),
			zap.String("callback_url", cfg.CallbackURL(c.Alias)),
		)
	}

	var manager payment.TransactionManager = transaction.NewMemoryRepository()
	opts := []payment.Option{}
	if database != nil {
		manager = transaction.NewRepository(database)
		opts = append(opts, payment.WithCallbackLog(payment.NewCallbackRepository(database)))
	}
	opts = append(opts, payment.WithListeners(
		payment.PersistingListener{Manager: manager},
		payment.LoggingListener{},
	))

	if cfg.RedisAddr != "" {
		client, err := initRedisFunc(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, payment.WithLocker(lock.NewRedisLocker(client, lock.RedisOptions{})))
		log.Info("using redis callback lock", zap.String("addr", cfg.RedisAddr))
	}

	svc := &services{
		registry:    registry,
		factory:     payment.NewFactory(registry, configs, manager, opts...),
		metrics:     metrics.NewCallbacks(),
		limiter:     middleware.NewRateLimiter(0),
		adminSecret: []byte(cfg.AdminJWTSecret),
	}
	if database != nil {
		svc.health = func(r *http.Request) error { return database.PingContext(r.Context()) }
	}
	return svc, nil
}

func configStore(cfg *config.Config, database *sql.DB) (configuration.Store, error) {
	if cfg.GatewayConfigFile != "" {
		return configuration.LoadFile(cfg.GatewayConfigFile)
	}
	if database == nil {
		return nil, errors.New("no gateway configuration source")
	}
	return configuration.NewRepository(database), nil
}

func setupRouter(svc *services) http.Handler {
	mux := http.NewServeMux()

	h := webhook.NewHandler(webhook.FromFactory(svc.factory)).WithMetrics(svc.metrics)
	h.Register(mux, svc.limiter.Middleware(middleware.TierCallback))

	admin := middleware.AdminAuth(svc.adminSecret)
	mux.Handle("GET /admin/gateways", admin(webhook.Gateways(svc.registry)))
	mux.Handle("GET /admin/metrics", admin(webhook.Metrics(svc.metrics)))
	mux.Handle("GET /health", webhook.Health(svc.health))

	return middleware.Chain(mux,
		middleware.Recover,
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
	)
}
