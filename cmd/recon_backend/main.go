package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/recon_workbench/internal/adapters/notify"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/core/services"
	"github.com/SscSPs/recon_workbench/internal/handlers"
	"github.com/SscSPs/recon_workbench/internal/middleware"
	"github.com/SscSPs/recon_workbench/internal/platform/config"
	"github.com/SscSPs/recon_workbench/internal/platform/metrics"
	"github.com/SscSPs/recon_workbench/internal/repositories/database/pgsql"
	"github.com/SscSPs/recon_workbench/pkg/cache"
	"github.com/SscSPs/recon_workbench/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Recon Workbench API
// @version 1.0
// @description General Ledger upload and re-upload reconciliation service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// --- Run Database Migrations ---
	logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
	applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	var redisClient *redis.Client
	var notifier portssvc.LedgerChangeNotifier = notify.LogNotifier{}
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		notifier = notify.NewRedisNotifier(redisClient, cfg.LedgerChangeChannel)
		logger.Info("Ledger change notifications enabled", slog.String("channel", cfg.LedgerChangeChannel))
	}

	appMetrics := metrics.New(nil)

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LedgerInsertBatchSize)
	serviceContainer := services.NewServiceContainer(cfg, repos, notifier, appMetrics)

	uploadLimiter, err := middleware.NewLimiter(cfg.UploadRateLimit, redisClient)
	if err != nil {
		logger.Error("Failed to create upload rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, metrics, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), middleware.MetricsMiddleware(appMetrics), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, middleware.RateLimit(uploadLimiter))

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
