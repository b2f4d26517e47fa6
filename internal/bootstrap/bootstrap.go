package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/evrim/counselbridge/internal/app/controllers"
	appMigrations "github.com/evrim/counselbridge/internal/app/migrations"
	appRepos "github.com/evrim/counselbridge/internal/app/repositories"
	appRoutes "github.com/evrim/counselbridge/internal/app/routes"
	appServices "github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/config"
	"github.com/evrim/counselbridge/internal/db"
	appMiddleware "github.com/evrim/counselbridge/internal/middleware"
	pkgAuth "github.com/evrim/counselbridge/internal/pkg/auth"
	"github.com/evrim/counselbridge/internal/pkg/helpers"
	"github.com/evrim/counselbridge/internal/pkg/logger"
	"github.com/evrim/counselbridge/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	ConnectionService    *appServices.ConnectionService
	CounselorService     *appServices.CounselorService
	AuthService          *appServices.AuthService
	StatsService         *appServices.StatsService
	AuthController       *appControllers.AuthController
	ConnectionController *appControllers.ConnectionController
	AdminController      *appControllers.AdminController
	CounselorController  *appControllers.CounselorController
	StatsController      *appControllers.StatsController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds
// default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), cfg, dbPool, lgr); err != nil {
		// Seeding is best-effort; a partial seed should not block startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.ConnectionService = appServices.NewConnectionService(
		deps.Repos.UserRepository,
		deps.Repos.CounselorRepository,
		deps.Repos.ConnectionRequestRepository,
		deps.Repos.ActivityRepository,
		lgr,
	)
	deps.CounselorService = appServices.NewCounselorService(deps.Repos.CounselorRepository)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.StatsService = appServices.NewStatsService(
		deps.Repos.UserRepository,
		deps.Repos.CounselorRepository,
		deps.Repos.ConnectionRequestRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.ConnectionController = appControllers.NewConnectionController(deps.ConnectionService)
	deps.AdminController = appControllers.NewAdminController(deps.ConnectionService)
	deps.CounselorController = appControllers.NewCounselorController(deps.CounselorService)
	deps.StatsController = appControllers.NewStatsController(deps.StatsService)

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

	router := gin.Default()

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ConnectionController,
		deps.AdminController,
		deps.CounselorController,
		deps.StatsController,
		deps.AuthMiddleware,
	)

	return router
}
