package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/adapters/providers"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/core/services"
	"github.com/SscSPs/mma_fxrates/internal/handlers"
	"github.com/SscSPs/mma_fxrates/internal/middleware"
	"github.com/SscSPs/mma_fxrates/internal/platform/analytics"
	"github.com/SscSPs/mma_fxrates/internal/platform/config"
	rediscache "github.com/SscSPs/mma_fxrates/internal/repositories/cache/redis"
	"github.com/SscSPs/mma_fxrates/internal/repositories/database/pgsql"
	"github.com/SscSPs/mma_fxrates/internal/repositories/memory"
	"github.com/SscSPs/mma_fxrates/internal/scheduler"
	"github.com/SscSPs/mma_fxrates/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title MMA FX Rates API
// @version 1.0
// @description Exchange-rate resolution and conversion service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EmergencyRatesStale(time.Now()) {
		logger.Warn("Emergency rate table is older than the configured maximum age; review EMERGENCY_RATES",
			slog.String("as_of", cfg.EmergencyRatesAsOf.Format(domain.DateLayout)),
			slog.Int("age_days", cfg.EmergencyRatesAge(time.Now())),
			slog.Int("max_age_days", cfg.EmergencyRatesMaxAgeDays))
	}

	repos, closeRepos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize rate store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	posthogClient := analytics.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	clock := domain.SystemClock{}
	rateProviders, err := providers.Build(cfg.RateProviders, cfg.RateProviderURLs, providers.NewHTTPClient(cfg.ProviderTimeout), clock)
	if err != nil {
		logger.Error("Failed to build rate providers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container := services.NewServiceContainer(cfg, repos, rateProviders, posthogClient, clock)

	refreshScheduler, err := scheduler.New(container.Updater, scheduler.Options{
		AnchorCurrency: cfg.AnchorCurrency,
		TimeOfDay:      cfg.RefreshTime,
		Location:       cfg.RefreshTimezone,
		MaxRetries:     cfg.RefreshMaxRetries,
		RetryDelay:     cfg.RefreshRetryDelay,
		RunOnStartup:   cfg.RefreshOnStartup,
	}, logger)
	if err != nil {
		logger.Error("Failed to create rate scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	refreshScheduler.Start(middleware.WithLogger(ctx, logger))
	defer refreshScheduler.Stop()

	router, err := newRouter(cfg, logger, container, posthogClient)
	if err != nil {
		logger.Error("Failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// buildRepositories picks Postgres when PGSQL_URL is set and the in-memory store otherwise,
// then wraps the result with the Redis cache when REDIS_ADDR is set.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	var (
		repos   portsrepo.RepositoryProvider
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return repos, cleanup, err
		}
		closers = append(closers, func() { database.ClosePgxPool(dbPool) })

		if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			cleanup()
			return repos, func() {}, err
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	} else {
		logger.Warn("Using in-memory rate store; rates will not survive a restart")
		repos = portsrepo.RepositoryProvider{ExchangeRateRepo: memory.NewExchangeRateRepository()}
	}

	if cfg.RedisAddr != "" {
		client := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("Error closing redis client", slog.String("error", err.Error()))
			}
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not reachable at startup; cache will fall through to the store", slog.String("error", err.Error()))
		}
		repos.ExchangeRateRepo = rediscache.NewCachingExchangeRateRepository(repos.ExchangeRateRepo, client, cfg.RedisCacheTTL, logger)
		logger.Info("Redis rate cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	return repos, cleanup, nil
}

func runMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection using the pgx stdlib driver
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func newRouter(cfg *config.Config, logger *slog.Logger, container *portssvc.ServiceContainer, posthogClient *analytics.PosthogClientWrapper) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}

	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig),
		middleware.RateLimit(limiterInstance),
		middleware.PosthogMiddleware(posthogClient),
	)

	handlers.RegisterRoutes(r, cfg, container)
	return r, nil
}
