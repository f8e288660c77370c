package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/adapters/exchangerates"
	"github.com/SscSPs/expense_tracker_app/internal/amqp"
	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_tracker_app/internal/core/services"
	"github.com/SscSPs/expense_tracker_app/internal/handlers"
	"github.com/SscSPs/expense_tracker_app/internal/middleware"
	"github.com/SscSPs/expense_tracker_app/internal/platform/config"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/kvstore"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/memory"
	"github.com/SscSPs/expense_tracker_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	rateCache, closeCache, err := openRateCache(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	repos, closeRepos, err := openRepositories(ctx, cfg, rateCache, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	rateClient := exchangerates.NewClient(cfg.ExchangeRateBaseURL, cfg.ExchangeRateAccessKey, cfg.ExchangeRateTimeout)

	container, err := services.NewContainer(ctx, cfg, repos, rateClient, analytics.DefaultCalendar())
	if err != nil {
		return err
	}
	defer container.Close()

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			// The API stays usable without the broker.
			logger.Warn("AMQP unavailable, expense changes will not be forwarded", slog.String("error", err.Error()))
		} else {
			defer amqpClient.Close()
			unsubscribe := container.Hub.Subscribe(amqp.NewForwarder(amqpClient))
			defer unsubscribe()
			logger.Info("Forwarding expense changes to AMQP", slog.String("exchange", cfg.AMQPExchange))
		}
	}

	go func() {
		if err := container.RateStore.WarmUp(ctx); err != nil {
			logger.Warn("Initial exchange rate load failed", slog.String("error", err.Error()))
		}
	}()
	go container.RateStore.RunAutoRefresh(ctx, cfg.RateRefreshInterval)

	router, err := newRouter(cfg, logger)
	if err != nil {
		return err
	}
	handlers.RegisterRoutes(router, cfg, container.Services)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("backend", cfg.DataBackend))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.CORSAllowedOrigins) == 0 || cfg.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	r.Use(middleware.RateLimit(limiterInstance))

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	return r, nil
}

// openRateCache returns the durable sqlite cache, or an in-memory one when
// RATE_CACHE_PATH is empty.
func openRateCache(cfg *config.Config, logger *slog.Logger) (portsrepo.KeyValueStore, func(), error) {
	if cfg.RateCachePath == "" {
		logger.Info("Using in-memory exchange rate cache")
		return kvstore.NewMemoryStore(), func() {}, nil
	}

	store, err := kvstore.NewSQLiteStore(cfg.RateCachePath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using sqlite exchange rate cache", slog.String("path", cfg.RateCachePath))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing rate cache", slog.String("error", err.Error()))
		}
	}, nil
}

func openRepositories(ctx context.Context, cfg *config.Config, rateCache portsrepo.KeyValueStore, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DataBackend != config.BackendPostgres {
		logger.Info("Using in-memory expense repository")
		return portsrepo.RepositoryProvider{
			ExpenseRepo: memory.NewExpenseRepository(),
			RateCache:   rateCache,
		}, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := pgsql.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool, rateCache), func() { database.ClosePgxPool(dbPool) }, nil
}
