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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/alumnet/internal/app/auth"
	appControllers "github.com/yigit/alumnet/internal/app/controllers"
	appMigrations "github.com/yigit/alumnet/internal/app/migrations"
	"github.com/yigit/alumnet/internal/app/models"
	appRepos "github.com/yigit/alumnet/internal/app/repositories"
	appRoutes "github.com/yigit/alumnet/internal/app/routes"
	appServices "github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/config"
	"github.com/yigit/alumnet/internal/db"
	appMiddleware "github.com/yigit/alumnet/internal/middleware"
	pkgAuth "github.com/yigit/alumnet/internal/pkg/auth"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/dispatch"
	"github.com/yigit/alumnet/internal/pkg/logger"
	"github.com/yigit/alumnet/internal/pkg/metrics"
	"github.com/yigit/alumnet/internal/seed"
)

// ConfigPathEnv overrides the location of the YAML config file
const ConfigPathEnv = "ALUMNET_CONFIG"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Queue          dispatch.Queue
	Redis          *redis.Client // nil with the in-memory queue
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the pool and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database ready")
	return pool, nil
}

// SetupContentPolicy loads the prohibited-word ruleset, falling back to the embedded list
func SetupContentPolicy(cfg *config.Config, lgr zerolog.Logger) (*contentpolicy.WordListPolicy, error) {
	rs, fromFile, err := contentpolicy.LoadRuleset(cfg.ContentPolicy.Path)
	if err != nil {
		return nil, err
	}

	policy, err := contentpolicy.NewWordListPolicy(rs)
	if err != nil {
		return nil, err
	}

	lgr.Info().
		Bool("fromFile", fromFile).
		Strs("languages", rs.Locales()).
		Int("words", policy.Size()).
		Msg("Content policy loaded")
	return policy, nil
}

// SetupQueue builds the notification queue selected by notifications.queue
func SetupQueue(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (dispatch.Queue, *redis.Client, error) {
	opts := dispatch.Options{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		JobTimeout: config.Duration(cfg.Notifications.JobTimeout, 5*time.Second),
	}
	queueLogger := logger.Component("dispatch")

	if strings.ToLower(cfg.Notifications.Queue) != config.QueueRedis {
		lgr.Info().Int("workers", opts.Workers).Msg("Using in-memory notification queue")
		return dispatch.NewMemoryQueue(opts, queueLogger), nil, nil
	}

	client, err := dispatch.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	lgr.Info().Str("key", cfg.Notifications.QueueKey).Int("workers", opts.Workers).Msg("Using Redis notification queue")
	return dispatch.NewRedisQueue(client, cfg.Notifications.QueueKey, opts, queueLogger), client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	policy, err := SetupContentPolicy(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to load content policy: %w", err)
	}

	deps.Queue, deps.Redis, err = SetupQueue(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup notification queue: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(pool)

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:  deps.Repos,
		Policy: policy,
		Queue:  deps.Queue,
		Moderation: appServices.ModerationConfig{
			AutoBan: models.AutoBanPolicy{
				Threshold: cfg.Moderation.AutoBanThreshold,
				Duration:  config.Duration(cfg.Moderation.AutoBanDuration, 72*time.Hour),
				Reason:    appServices.DefaultModerationConfig().AutoBan.Reason,
			},
			ReasonSampleSize: cfg.Moderation.ReasonSampleSize,
		},
		Logger: lgr,
	})
	deps.Queue.Start(deps.Services.NotificationService.Handle)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.TokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	resolver := appAuth.NewActorResolver(deps.Repos.UserRepository, deps.Repos.AdminRepository)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, resolver)

	s := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Post:         appControllers.NewPostController(s.PostService),
		Comment:      appControllers.NewCommentController(s.CommentService),
		Moderation:   appControllers.NewModerationController(s.ModerationService),
		Notification: appControllers.NewNotificationController(s.NotificationService),
		Connection:   appControllers.NewConnectionController(s.ConnectionService),
		Message:      appControllers.NewMessageController(s.MessageService),
		Health:       appControllers.NewHealthController(pool),
	}

	if err := seed.CreateDefaultAdmin(ctx, deps.Repos.AdminRepository, seed.DefaultAdmin{
		Email:    cfg.Seed.AdminEmail,
		Name:     cfg.Seed.AdminName,
		Password: cfg.Seed.AdminPassword,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(lgr),
		metrics.GinMiddleware(),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
