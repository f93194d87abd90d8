package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/plans/internal/dependencies/random"
)

const generatedSecretBytes = 36

// Config holds server configuration read from the environment
type Config struct {
	Addr     string
	LogLevel slog.Level

	// Secret signs OAuth state tokens
	Secret          string
	SecretGenerated bool

	ClientID         string
	ClientSecret     string
	OAuthCallbackURL string

	StorageType string
	RedisURL    string
	DatabaseURL string

	SessionTTL   time.Duration
	SessionSweep string

	StaticDir               string
	CORSOrigins             []string
	AllowCrossAccountDelete bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return load(os.Getenv, random.New())
}

func load(getenv func(string) string, rnd random.Random) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Addr:             get("PLANS_ADDR", ":3000"),
		Secret:           getenv("SECRET"),
		ClientID:         get("CLIENT_ID", ""),
		ClientSecret:     get("CLIENT_SECRET", ""),
		OAuthCallbackURL: get("OAUTH_CALLBACK_URL", "http://localhost:3000/auth/google/plans"),
		StorageType:      strings.ToLower(get("STORAGE_TYPE", "memory")),
		RedisURL:         get("REDIS_URL", ""),
		DatabaseURL:      get("DATABASE_URL", ""),
		SessionSweep:     get("SESSION_SWEEP", "@every 10m"),
		StaticDir:        get("STATIC_DIR", ""),
		CORSOrigins:      splitList(get("CORS_ORIGINS", "")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	ttl, err := time.ParseDuration(get("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL: must be positive, got %s", ttl)
	}
	cfg.SessionTTL = ttl

	allow, err := strconv.ParseBool(get("ALLOW_CROSS_ACCOUNT_DELETE", "false"))
	if err != nil {
		return nil, fmt.Errorf("ALLOW_CROSS_ACCOUNT_DELETE: %w", err)
	}
	cfg.AllowCrossAccountDelete = allow

	switch cfg.StorageType {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return nil, fmt.Errorf("STORAGE_TYPE: unknown storage type %q", cfg.StorageType)
	}

	if cfg.Secret == "" {
		cfg.Secret = rnd.Token(generatedSecretBytes)
		cfg.SecretGenerated = true
	}

	return cfg, nil
}

// OAuthEnabled reports whether Google sign-in is configured
func (c *Config) OAuthEnabled() bool {
	return c.ClientID != ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
