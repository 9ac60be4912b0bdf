package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/config"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/handlers"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/locks"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/repositories"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/repositories/postgres"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/rtc"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
)

const submissionLockPrefix = "edutrackr:submission:"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config         *config.Config
	DB             *postgres.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Assignments repositories.AssignmentRepository
	Submissions repositories.SubmissionRepository
	TxManager   repositories.TransactionManager
	Locker      locks.Locker

	// Services
	AssignmentService handlers.AssignmentService
	SubmissionService handlers.SubmissionService
	RTCIssuer         handlers.TokenIssuer

	// Auth
	Verifier       *auth.Verifier
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies opens the database and Redis connections described by cfg
// and wires every component on top of them.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps, err := NewDependenciesWithInfra(ctx, cfg, factory, redisClient, logger)
	if err != nil {
		_ = factory.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithInfra wires the application on top of already opened
// connections. redisClient may be nil.
func NewDependenciesWithInfra(
	ctx context.Context,
	cfg *config.Config,
	factory *postgres.RepositoryFactory,
	redisClient *redis.Client,
	logger *zap.Logger,
) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Redis:       redisClient,
	}

	if err := factory.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps.initRepositories()
	deps.initLocker(cfg.Redis)
	deps.initAuth(cfg.Auth)
	deps.initServices(cfg.RTC)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// newRedisClient connects to REDIS_URL. An empty URL yields a nil client.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Assignments = repos.Assignments
	d.Submissions = repos.Submissions
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initLocker selects the Redis lock when a client is available
func (d *Dependencies) initLocker(cfg config.RedisConfig) {
	if d.Redis != nil {
		d.Locker = locks.NewRedisLocker(d.Redis, submissionLockPrefix, cfg.LockTTL)
		d.Logger.Info("using redis submission locks")
		return
	}
	d.Locker = locks.NewMemoryLocker(cfg.LockTTL)
	d.Logger.Warn("REDIS_URL not set, submission locks are process local")
}

func (d *Dependencies) initAuth(cfg config.AuthConfig) {
	d.Verifier = auth.NewVerifier(auth.VerifierConfig{
		Secret: cfg.JWTSecret,
		Leeway: cfg.Leeway,
		Issuer: cfg.Issuer,
	})
	if !d.Verifier.Configured() {
		d.Logger.Error("server misconfigured", zap.String("missing", "JWT_SECRET"))
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)
}

func (d *Dependencies) initServices(cfg config.RTCConfig) {
	d.AssignmentService = services.NewAssignmentService(d.Assignments, d.Logger)
	d.SubmissionService = services.NewSubmissionService(d.Assignments, d.Submissions, d.TxManager, d.Locker, d.Logger)

	issuer := rtc.NewIssuer(rtc.IssuerConfig{
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		DefaultTTL: cfg.TokenTTL,
	})
	if !issuer.Configured() {
		d.Logger.Warn("RTC_API_KEY or RTC_API_SECRET not set, rtc tokens disabled")
	}
	d.RTCIssuer = issuer
}

// DatabaseChecker returns the database for readiness checks, nil when no database is wired
func (d *Dependencies) DatabaseChecker() handlers.DatabaseChecker {
	if d.DB == nil {
		return nil
	}
	return d.DB
}

// RedisClient returns the Redis client as an interface, nil when Redis is not configured
func (d *Dependencies) RedisClient() redis.UniversalClient {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			d.Logger.Info("redis connection closed")
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
