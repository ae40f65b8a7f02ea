package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/questionbank/internal/app/auth"
	appControllers "github.com/yigit/questionbank/internal/app/controllers"
	appMigrations "github.com/yigit/questionbank/internal/app/migrations"
	appRepos "github.com/yigit/questionbank/internal/app/repositories"
	appRoutes "github.com/yigit/questionbank/internal/app/routes"
	appServices "github.com/yigit/questionbank/internal/app/services"
	"github.com/yigit/questionbank/internal/config"
	"github.com/yigit/questionbank/internal/db"
	appMiddleware "github.com/yigit/questionbank/internal/middleware"
	pkgAuth "github.com/yigit/questionbank/internal/pkg/auth"
	"github.com/yigit/questionbank/internal/pkg/cache"
	"github.com/yigit/questionbank/internal/pkg/filestorage"
	"github.com/yigit/questionbank/internal/pkg/logger"
	"github.com/yigit/questionbank/internal/pkg/metrics"
	"github.com/yigit/questionbank/internal/pkg/validation"
	"github.com/yigit/questionbank/internal/seed"
)

const cachePrefix = "questionbank"

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB          *db.PostgresDB
	Redis       *redis.Client
	Repos       *appRepos.Repositories
	Services    appServices.Services
	Controllers appRoutes.Controllers
	JWTService  *pkgAuth.JWTService
	Authorizer  *appAuth.Authorizer
	FileStorage *filestorage.LocalStorage
	Metrics     *metrics.Metrics
	Cache       *cache.Helper
	Logger      zerolog.Logger

	AuthMiddleware *appMiddleware.AuthMiddleware
}

// Close releases the external connections held by the dependencies
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Error closing redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection pool.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies pending migrations from the configured directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	dir := cfg.Database.MigrationsDir
	if _, err := os.Stat(dir); err != nil {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Str("path", dir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Migrate(ctx, os.DirFS(dir)); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// RunSeed loads the default catalog, permission sets and admin account.
func RunSeed(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (seed.Result, error) {
	repos := appRepos.NewRepositories(database.Pool)
	seeder := seed.NewSeeder(repos.TaxonomyRepository, repos.CustomRoleRepository, repos.UserRepository, lgr)
	return seeder.Run(ctx, seed.Admin{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	})
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	deps.Metrics = metrics.New()

	if cfg.Redis.Enabled {
		deps.Redis = cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	} else {
		lgr.Info().Msg("Redis disabled, caching off")
	}
	deps.Cache = cache.NewHelper(deps.Redis, cachePrefix, cfg.CacheTTL())

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.PublicBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenTTL(),
		RefreshTokenExp: cfg.RefreshTokenTTL(),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.Authorizer = appAuth.NewAuthorizer(deps.Repos.CustomRoleRepository)

	deps.Services = appServices.Services{
		Auth: appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService, lgr),
		User: appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.TokenRepository, lgr),
		Role: appServices.NewRoleService(deps.Repos.CustomRoleRepository, lgr),
		Form: appServices.NewFormService(deps.Repos.FormRepository, deps.Repos.ResponseRepository, deps.Metrics, lgr),
		Book: appServices.NewBookService(
			deps.Repos.BookRepository,
			deps.Repos.TaxonomyRepository,
			deps.FileStorage,
			deps.Authorizer,
			deps.Metrics,
			cfg.Server.MaxUploadBytes,
			lgr,
		),
		Taxonomy: appServices.NewTaxonomyService(deps.Repos.TaxonomyRepository, deps.Cache, lgr),
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.Auth, deps.Authorizer)

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.Services.Auth, lgr),
		User:     appControllers.NewUserController(deps.Services.User),
		Role:     appControllers.NewRoleController(deps.Services.Role),
		Form:     appControllers.NewFormController(deps.Services.Form),
		Book:     appControllers.NewBookController(deps.Services.Book, cfg.Server.MaxUploadBytes, lgr),
		Taxonomy: appControllers.NewTaxonomyController(deps.Services.Taxonomy),
		Health: appControllers.NewHealthController(
			map[string]appControllers.HealthCheck{"database": database.Ping},
			map[string]appControllers.HealthCheck{"cache": deps.Cache.HealthCheck},
		),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	if err := validation.Register(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	mediaPrefix := mediaRoute(cfg.Server.PublicBaseURL)
	router.Static(mediaPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Str("route", mediaPrefix).Msg("Static file serving configured for uploads")

	return router, nil
}

// mediaRoute is the URL path uploads are served under, taken from the
// public base URL so links and routes agree.
func mediaRoute(publicBaseURL string) string {
	u, err := url.Parse(publicBaseURL)
	if err != nil || strings.Trim(u.Path, "/") == "" {
		return "/media"
	}
	return "/" + strings.Trim(u.Path, "/")
}
