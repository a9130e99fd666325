package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pricescanner/aggregator/config"
	"github.com/pricescanner/aggregator/internal/database"
	"github.com/pricescanner/aggregator/internal/handlers"
	"github.com/pricescanner/aggregator/internal/httpx"
	"github.com/pricescanner/aggregator/internal/middleware"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/search"
	"github.com/pricescanner/aggregator/internal/storage"
	"github.com/pricescanner/aggregator/internal/telemetry"
	"github.com/pricescanner/aggregator/internal/vendors"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting price aggregator")

	ctx := context.Background()

	cleanup, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    telemetry.DefaultServiceName,
		ServiceVersion: "1.0.0",
		Environment:    os.Getenv("ENVIRONMENT"),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry init failed, continuing without it")
	} else {
		defer cleanup(ctx)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Storage.BasePath).Msg("Failed to open local storage")
	}

	watchStore, dbConnected := buildWatchStore(ctx, cfg, store, logger)
	if dbConnected {
		defer database.Close()
	}

	retryConfig := httpx.DefaultRetryConfig()
	retryConfig.MaxRetries = cfg.Backend.MaxRetries
	retryConfig.RequestTimeout = cfg.Backend.RequestTimeout
	httpClient := httpx.NewClient(retryConfig)

	ratesService := rates.NewService(ctx, rates.NewHTTPProvider(cfg.Rates.URL, httpClient), store, cfg.Rates.Base)
	if err := ratesService.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial rate refresh failed, serving persisted or degenerate table")
	}

	coordinator := search.NewCoordinator(
		vendors.NewBackendClient(cfg.Backend.URL, httpClient),
		search.Config{PageSize: cfg.Backend.PageSize, EnrichTop: cfg.Backend.EnrichTop},
	)

	watches, err := watchlist.NewService(ctx, watchStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load watchlist")
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	searchHandler := handlers.NewSearchHandler(coordinator, ratesService, watches, cfg.Search.Country, cfg.Search.Currency)
	watchHandler := handlers.NewWatchHandler(watches, ratesService, cfg.Search.Currency)
	ratesHandler := handlers.NewRatesHandler(ratesService)

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
	}))
	{
		api.GET("/search", searchHandler.Search)
		api.GET("/vendors", handlers.ListVendors)

		api.GET("/rates", ratesHandler.GetRates)
		api.POST("/rates/refresh", ratesHandler.RefreshRates)

		api.GET("/watches", watchHandler.ListWatches)
		api.POST("/watches", watchHandler.CreateWatch)
		api.POST("/watches/refresh", watchHandler.RefreshWatches)
		api.PATCH("/watches/:id", watchHandler.UpdateWatch)
		api.DELETE("/watches/:id", watchHandler.DeleteWatch)
		api.POST("/watches/:id/reset-baseline", watchHandler.ResetBaseline)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// buildWatchStore picks the watch snapshot backend. Postgres is used
// when configured and reachable; anything else falls back to the local
// file store so the service always starts.
func buildWatchStore(ctx context.Context, cfg *config.Config, store storage.Storage, logger *zerolog.Logger) (watchlist.Store, bool) {
	if cfg.Storage.Type != "postgres" {
		return watchlist.NewSnapshotStore(store), false
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Warn().Msg("storage.type is postgres but DATABASE_URL not set, using local snapshots")
		return watchlist.NewSnapshotStore(store), false
	}

	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Warn().Err(err).Msg("Database unreachable, using local snapshots")
		return watchlist.NewSnapshotStore(store), false
	}

	watchStore, err := database.NewWatchStore(ctx, database.Pool())
	if err != nil {
		logger.Warn().Err(err).Msg("Watch schema setup failed, using local snapshots")
		database.Close()
		return watchlist.NewSnapshotStore(store), false
	}

	logger.Info().Msg("Database connected")
	return watchStore, true
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "price-aggregator").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
