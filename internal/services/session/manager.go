package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/plans/internal/dependencies/clock"
	"github.com/mcoot/plans/internal/dependencies/random"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

// Errors
var (
	ErrNoSession      = errors.New("no valid session")
	ErrTokenCollision = errors.New("could not allocate a unique session token")
)

const (
	tokenPrefix = "sess_"
	tokenBytes  = 32

	maxIssueAttempts = 5
)

// Config holds configuration for the session manager
type Config struct {
	TTL time.Duration
	// SweepSpec is the cron spec for deleting expired sessions
	SweepSpec string
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:       24 * time.Hour,
		SweepSpec: "@every 10m",
	}
}

// Manager issues, resolves and invalidates server-side sessions.
// Tokens are random and carry no account or credential data.
type Manager struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	ttl time.Duration
}

// NewManager creates a new session Manager
func NewManager(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		ttl:     cfg.TTL,
	}
}

// TTL returns how long issued sessions live
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session bound to accountID
func (m *Manager) Issue(ctx context.Context, accountID model.AccountID) (*model.Session, error) {
	now := m.clock.Now()

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		session := &model.Session{
			Token:     tokenPrefix + m.random.Token(tokenBytes),
			AccountID: accountID,
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
		}

		created, err := m.storage.CreateSession(ctx, session)
		if err != nil {
			return nil, err
		}
		if created {
			return session, nil
		}

		m.logger.Warn("session token collision", slog.Int("attempt", attempt+1))
	}

	return nil, ErrTokenCollision
}

// Resolve maps a token back to its account.
// Unknown, empty and expired tokens all yield ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (model.AccountID, error) {
	if token == "" {
		return "", ErrNoSession
	}

	session, err := m.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return "", ErrNoSession
		}
		return "", err
	}

	if session.Expired(m.clock.Now()) {
		if err := m.storage.DeleteSession(ctx, token); err != nil {
			m.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return "", ErrNoSession
	}

	return session.AccountID, nil
}

// Invalidate removes a session; unknown tokens are ignored
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.storage.DeleteSession(ctx, token)
}

// Sweep removes expired sessions (scheduled by Sweeper)
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	return m.storage.DeleteExpiredSessions(ctx, m.clock.Now())
}
