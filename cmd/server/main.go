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

	"github.com/shopaudit/catalog-validator/config"
	"github.com/shopaudit/catalog-validator/internal/database"
	"github.com/shopaudit/catalog-validator/internal/handlers"
	"github.com/shopaudit/catalog-validator/internal/middleware"
	"github.com/shopaudit/catalog-validator/internal/storage"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting catalog validator service")

	ctx := context.Background()

	// Run history is optional; the service validates without it.
	if dbURL := config.GetDatabaseURL(); dbURL != "" {
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		logger.Info().Msg("Database connected")
	} else {
		logger.Info().Msg("No DATABASE_URL set, run history disabled")
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var archive storage.Archive
	if cfg.Storage.Path != "" {
		archive, err = storage.NewLocalArchive(cfg.Storage.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open upload archive")
		}
		logger.Info().Str("path", cfg.Storage.Path).Msg("Upload archive enabled")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())

	validator := handlers.NewValidator(cfg, logger, archive)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	if cfg.Server.APIKey != "" {
		api.Use(middleware.APIKeyAuth(cfg.Server.APIKey))
	}
	api.POST("/validate",
		middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		validator.Validate)
	api.GET("/runs", handlers.ListRuns)
	api.GET("/runs/:runId", handlers.GetRun)
	api.GET("/archive", validator.ListArchive)
	api.POST("/revalidate", validator.Revalidate)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
}

func initLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}

	var output io.Writer = os.Stdout
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
