package factory

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/plans/internal/dependencies/mocks"
	"github.com/mcoot/plans/internal/dependencies/random"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/storage"
	"github.com/mcoot/plans/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App on in-memory storage with a mocked clock
func NewTestApp(cfg Config) *TestApp {
	return NewTestAppWithStorage(memory.New(), cfg)
}

// NewTestAppWithStorage creates a test App over the given store.
// Session tokens use real randomness so repeated logins never collide.
func NewTestAppWithStorage(store storage.Storage, cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	if cfg.AuthConfig.BcryptCost == 0 {
		cfg.AuthConfig = auth.Config{BcryptCost: bcrypt.MinCost}
	}
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return &TestApp{
		App:       newWithDependencies(store, mockClock, random.New(), cfg, logger),
		MockClock: mockClock,
	}
}
