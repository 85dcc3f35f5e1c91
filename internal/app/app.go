package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/auth"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/config"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/event"
	handler "github.com/mgolovanova35-netizen/wishlist-backend/internal/handler/http"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/notify"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/parse"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/service"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/store"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/database"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/health"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httpclient"
	pkgkafka "github.com/mgolovanova35-netizen/wishlist-backend/pkg/kafka"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/middleware"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/tracing"
)

// App wires together all dependencies and runs the wishlist backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "wishlist",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Record store client behind a circuit breaker.
	storeHTTP := httpclient.New(httpclient.DefaultConfig())
	breaker := httpclient.NewCircuitBreakerClient(storeHTTP, httpclient.DefaultCircuitBreakerConfig("record-store"), logger)
	storeClient := store.New(cfg.StoreBaseURL, cfg.StoreAPIKey, breaker, logger)
	logger.Info("record store client initialized", slog.String("base_url", cfg.StoreBaseURL))

	// Optional Redis cache for parse results.
	var redisClient *redis.Client
	var parseCache *parse.Cache
	if cfg.CacheEnabled {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		parseCache = parse.NewCache(redisClient, cfg.CacheTTL, logger)
		logger.Info("parse cache enabled", slog.String("addr", cfg.RedisAddr()))
	}

	// Optional Kafka event producer.
	var producer *pkgkafka.Producer
	var events *event.Producer
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Optional reservation notifications through the bot API. Assigned to
	// the interface only when enabled so a disabled notifier stays nil.
	var notifier service.ReservationNotifier
	if cfg.NotifyEnabled {
		tn, err := notify.New(cfg.TelegramBotToken, logger)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		notifier = tn
		logger.Info("reservation notifications enabled")
	}

	// Link parsing pipeline. Page fetches get one attempt each; a dead page
	// is an extraction failure, not something to retry.
	pageClient := httpclient.New(pageClientConfig(cfg.ParseTimeout))
	fetcher := parse.NewFetcher(pageClient, cfg.ParseUserAgent)
	dispatcher := parse.NewDispatcher(
		parse.NewWildberriesStrategy(pageClient, cfg.CardAPIURL, cfg.ParseUserAgent),
		parse.NewOzonStrategy(fetcher),
		parse.NewYandexStrategy(fetcher),
		parse.NewGenericStrategy(fetcher),
	)
	parser := parse.NewParser(dispatcher, parseCache, logger)

	// Build the dependency graph.
	verifier := auth.NewVerifier(cfg.TelegramBotToken)
	wishlistService := service.NewWishlistService(storeClient, parser, events, notifier, logger)
	wishlistHandler := handler.NewWishlistHandler(verifier, wishlistService, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("record-store", storeClient.Ping)
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(wishlistHandler, healthHandler, logger, middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// pageClientConfig is the outbound client configuration for product pages:
// a single attempt per fetch with the configured timeout.
func pageClientConfig(timeout time.Duration) httpclient.Config {
	cfg := httpclient.NoRetryConfig()
	cfg.Timeout = timeout
	return cfg
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Redis client.
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
