package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/plans/internal/dependencies/clock"
	"github.com/mcoot/plans/internal/dependencies/random"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/storage"
	"github.com/mcoot/plans/internal/storage/memory"
	pgstorage "github.com/mcoot/plans/internal/storage/postgres"
	redisstorage "github.com/mcoot/plans/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	Bridge         *auth.Bridge
	StateSigner    *auth.StateSigner
	SessionManager *session.Manager
	PlansService   *plans.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// ProviderConfig configures Google sign-in; disabled without a ClientID
	ProviderConfig auth.ProviderConfig
	// SessionConfig holds session lifetime and sweep schedule (optional)
	SessionConfig session.Config
	// PlansConfig holds plan ownership rules
	PlansConfig plans.Config
	// Secret signs OAuth state; required when ProviderConfig.ClientID is set
	Secret string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if cfg.ProviderConfig.ClientID != "" && cfg.Secret == "" {
		return nil, errors.New("Secret required when Google sign-in is configured")
	}

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(ctx, *cfg.PostgresConfig, logger)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		authCfg = auth.DefaultConfig()
	}

	sessionCfg := cfg.SessionConfig
	defaults := session.DefaultConfig()
	if sessionCfg.TTL == 0 {
		sessionCfg.TTL = defaults.TTL
	}
	if sessionCfg.SweepSpec == "" {
		sessionCfg.SweepSpec = defaults.SweepSpec
	}

	authService := auth.New(store, clk, authCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		Bridge:         auth.NewBridge(cfg.ProviderConfig, authService, logger),
		StateSigner:    auth.NewStateSigner(cfg.Secret, 0, clk),
		SessionManager: session.NewManager(store, clk, rnd, sessionCfg, logger),
		PlansService:   plans.New(store, cfg.PlansConfig, logger),
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
