package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yigit/examalloc/internal/app/allocation"
	appControllers "github.com/yigit/examalloc/internal/app/controllers"
	appMigrations "github.com/yigit/examalloc/internal/app/migrations"
	appRepos "github.com/yigit/examalloc/internal/app/repositories"
	appRoutes "github.com/yigit/examalloc/internal/app/routes"
	appServices "github.com/yigit/examalloc/internal/app/services"
	"github.com/yigit/examalloc/internal/config"
	"github.com/yigit/examalloc/internal/db"
	appMiddleware "github.com/yigit/examalloc/internal/middleware"
	"github.com/yigit/examalloc/internal/pkg/logger"
	"github.com/yigit/examalloc/internal/pkg/metrics"
	"github.com/yigit/examalloc/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store                appServices.AllocationStore
	Snapshots            *allocation.SnapshotStore
	Registry             *prometheus.Registry // nil when metrics are disabled
	Recorder             metrics.Recorder
	AllocationService    appServices.AllocationService
	AllocationController *appControllers.AllocationController
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Strs("envOverrides", cfg.EnvOverrides).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool, lgr).MigrateFromDirectory(migrateCtx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.SeedDemo {
		if err := seed.CreateDemoData(ctx, dbPool, seed.DemoRoster(6, 40), lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// NewRosterStore builds the Postgres-backed allocation store
func NewRosterStore(dbPool *pgxpool.Pool) appServices.AllocationStore {
	return appRepos.NewRepositories(dbPool).RosterStore()
}

// BuildDependencies initializes the allocation service and its controller on top of store.
func BuildDependencies(cfg *config.Config, store appServices.AllocationStore, lgr zerolog.Logger) (*Dependencies, error) {
	if store == nil {
		return nil, fmt.Errorf("allocation store is required")
	}
	deps := &Dependencies{
		Store:     store,
		Snapshots: allocation.NewSnapshotStore(),
		Recorder:  metrics.NewNop(),
		Logger:    lgr,
	}

	if cfg.Metrics.Enabled {
		deps.Registry = prometheus.NewRegistry()
		deps.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Recorder = metrics.NewPrometheus(deps.Registry, "examalloc")
	}

	policy := appServices.AllocationPolicy{
		TargetExaminers: cfg.Allocation.TargetExaminers,
		DefaultCapacity: cfg.Allocation.DefaultCapacity,
		MinCapacity:     cfg.Allocation.MinCapacity,
		MaxCapacity:     cfg.Allocation.MaxCapacity,
		SerializeResets: cfg.Allocation.SerializeResets,
	}
	deps.AllocationService = appServices.NewAllocationService(store, deps.Snapshots, policy, deps.Recorder, lgr)
	deps.AllocationController = appControllers.NewAllocationController(deps.AllocationService)

	lgr.Info().
		Int("targetExaminers", policy.TargetExaminers).
		Int("defaultCapacity", policy.DefaultCapacity).
		Bool("serializeResets", policy.SerializeResets).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Allocation service ready")
	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.AllocationController)

	if deps.Registry != nil {
		appRoutes.SetupMetrics(router, cfg.Metrics.Path, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
