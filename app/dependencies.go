package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/upb/auth-service/auth"
	"github.com/upb/auth-service/config"
	"github.com/upb/auth-service/handlers"
	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/repositories/postgres"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/services/ratelimit"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Redis  *redis.Client
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users repositories.UserRepository

	// Auth
	Tokens      *auth.TokenIssuer
	Cookies     *auth.Cookies
	AuthService *services.AuthService
	RateLimiter *ratelimit.Service

	// HTTP
	AuthMiddleware     *middleware.AuthMiddleware
	SecurityMiddleware *middleware.SecurityMiddleware
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	HealthHandler      *handlers.HealthHandler
}

// NewDependencies opens PostgreSQL and Redis, then wires everything on top.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	if err := deps.initRedis(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps.initRepositories()
	deps.wire(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Assemble wires the application over infrastructure that is already open.
func Assemble(cfg *config.Config, db *postgres.DB, rdb *redis.Client, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Logger: logger,
		Users:  postgres.NewUserRepository(db, logger),
	}
	deps.wire(cfg)
	return deps
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	return nil
}

// initRedis connects the rate-limit store. The guard fails closed, so Redis is required.
func (d *Dependencies) initRedis(ctx context.Context, cfg *config.Config) error {
	opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Redis = client
	d.Logger.Info("redis connection established", zap.String("addr", opts.Addr))
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Users = repos.Users
	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) wire(cfg *config.Config) {
	d.Tokens = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	d.Cookies = auth.NewCookies(cfg.IsProduction(), cfg.Auth.CookieMaxAge)
	d.AuthService = services.NewAuthService(d.Users, auth.NewBcryptHasher(auth.PasswordCost), d.Tokens, d.Logger)
	d.RateLimiter = ratelimit.NewService(d.Redis, ratelimit.Options{
		Timeout:    cfg.RateLimit.Timeout,
		MaxRetries: cfg.RateLimit.MaxRetries,
	}, d.Logger)

	// Adapter converts auth.Claims to middleware.Claims for AuthMiddleware
	d.AuthMiddleware = middleware.NewAuthMiddleware(&tokenValidatorAdapter{issuer: d.Tokens}, d.Cookies, cfg.Auth.CookieName, handlers.HandleServiceError, d.Logger)
	d.SecurityMiddleware = middleware.NewSecurityMiddleware(d.RateLimiter, cfg.RateLimit.BlockBots, handlers.HandleServiceError, d.Logger)

	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Cookies, cfg.Auth.CookieName, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.AuthService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": d.DB,
		"redis":    redisHealth{client: d.Redis},
	}, d.Logger)
}

// tokenValidatorAdapter adapts auth.TokenIssuer to middleware.TokenValidator
type tokenValidatorAdapter struct {
	issuer *auth.TokenIssuer
}

func (a *tokenValidatorAdapter) ValidateToken(_ context.Context, token string) (*middleware.Claims, error) {
	claims, err := a.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	identity, err := claims.Identity()
	if err != nil {
		return nil, err
	}
	out := &middleware.Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   models.UserRole(identity.Role),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// redisHealth exposes a Redis ping as a readiness check
type redisHealth struct {
	client redis.UniversalClient
}

func (h redisHealth) HealthCheck(ctx context.Context) error {
	if h.client == nil {
		return fmt.Errorf("redis not configured")
	}
	return h.client.Ping(ctx).Err()
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
	switch {
	case d.RepoFactory != nil:
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	case d.DB != nil:
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
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
