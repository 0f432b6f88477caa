package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api"
	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
	"github.com/anu-devcode/deploy-test-sub001/internal/automation"
	"github.com/anu-devcode/deploy-test-sub001/internal/cache"
	"github.com/anu-devcode/deploy-test-sub001/internal/config"
	"github.com/anu-devcode/deploy-test-sub001/internal/events"
	"github.com/anu-devcode/deploy-test-sub001/internal/logging"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository/memory"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository/postgres"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
	"github.com/anu-devcode/deploy-test-sub001/pkg/db"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional config file (.env or .yaml)")
	flag.Parse()

	bootLogger := logging.New("info", "json")
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("Start setup auth")
	permCfg, err := auth.LoadPermissionConfig(cfg.PermissionsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.PermissionsFile).Msg("load permissions")
	}
	policy := auth.NewPolicy(permCfg)
	maker, err := auth.NewMaker(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("token maker")
	}
	logger.Info().Msg("Finish setup auth")

	logger.Info().Msg("Start setup storage")
	store, closeStore := setupStore(ctx, cfg, logger)
	defer closeStore()
	logger.Info().Msg("Finish setup storage")

	logger.Info().Msg("Start setup promotion cache")
	promotionCache, closeCache := setupCache(ctx, cfg, logger)
	defer closeCache()
	logger.Info().Msg("Finish setup promotion cache")

	logger.Info().Msg("Start setup event publisher")
	publisher := setupPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("close publisher")
		}
	}()
	logger.Info().Msg("Finish setup event publisher")

	engine := automation.NewEngine(logger)
	service.RegisterActions(engine, service.SystemClock)
	tx := service.NewDispatcher(store, engine, publisher, service.SystemClock, logger)

	handler := api.NewRouter(api.Services{
		Customers:  service.NewCustomerService(tx, logger),
		Products:   service.NewProductService(tx, logger),
		Orders:     service.NewOrderService(tx, promotionCache, logger),
		Deliveries: service.NewDeliveryService(tx, logger),
		Reviews:    service.NewReviewService(tx, logger),
		Promotions: service.NewPromotionService(tx, promotionCache, logger),
		Automation: service.NewAutomationService(tx, logger),
		Analytics:  service.NewAnalyticsService(tx, logger),
	}, maker, policy, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting commerce-service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("listen")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown")
	}
	logger.Info().Msg("server stopped")
}

// setupStore connects to Postgres, or falls back to the in-memory store when
// DB_ENABLED is false.
func setupStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Store, func()) {
	if !cfg.DBEnabled {
		logger.Warn().Msg("DB_ENABLED is false, using in-memory store")
		return memory.NewStore(), func() {}
	}

	conn, err := db.NewPostgresConnection(ctx, db.PostgresConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn, cfg.DBName); err != nil {
			logger.Fatal().Err(err).Msg("db migrate")
		}
	}
	return postgres.NewStore(conn), func() {
		if err := conn.Close(); err != nil {
			logger.Error().Err(err).Msg("close db")
		}
	}
}

// setupCache returns a nil cache when REDIS_ADDR is unset; the services
// then read promotions straight from the store.
func setupCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cache.PromotionCache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, promotion cache disabled")
		_ = client.Close()
		return nil, func() {}
	}
	return cache.NewPromotionCache(client, cfg.PromotionCacheTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}
}

func setupPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return events.NewLogPublisher(logger)
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: brokers, Topic: cfg.KafkaTopic}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("kafka publisher")
	}
	return pub
}
