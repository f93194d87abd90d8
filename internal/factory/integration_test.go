package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/storage"
	redisstorage "github.com/mcoot/plans/internal/storage/redis"
)

// IntegrationSuite runs the account/session/plans flow against each backend
type IntegrationSuite struct {
	suite.Suite
	newStore func(t *testing.T) storage.Storage
	app      *TestApp
	ctx      context.Context
}

func TestIntegrationMemory(t *testing.T) {
	suite.Run(t, &IntegrationSuite{})
}

func TestIntegrationRedis(t *testing.T) {
	suite.Run(t, &IntegrationSuite{
		newStore: func(t *testing.T) storage.Storage {
			mini := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
			return redisstorage.NewWithClient(client, redisstorage.DefaultConfig())
		},
	})
}

func (s *IntegrationSuite) SetupTest() {
	s.ctx = context.Background()
	if s.newStore == nil {
		s.app = NewTestApp(Config{})
		return
	}
	s.app = NewTestAppWithStorage(s.newStore(s.T()), Config{})
}

func (s *IntegrationSuite) TearDownTest() {
	_ = s.app.Close()
}

// Test: register, log in, manage plans, log out
func (s *IntegrationSuite) TestCompleteAccountFlow() {
	// Step 1: Register
	registered, err := s.app.AuthService.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	// Step 2: Log in and issue a session
	account, err := s.app.AuthService.Login(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(registered.ID, account.ID)

	sess, err := s.app.SessionManager.Issue(s.ctx, account.ID)
	s.Require().NoError(err)

	// Step 3: Resolve the session like the middleware does
	resolved, err := s.app.SessionManager.Resolve(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(account.ID, resolved)

	// Step 4: Manage plans
	for _, p := range []string{"Walk dog", "Walk dog", "Buy milk"} {
		s.Require().NoError(s.app.PlansService.Append(s.ctx, resolved, p))
	}
	listed, err := s.app.PlansService.List(s.ctx, resolved)
	s.Require().NoError(err)
	s.Equal([]string{"Walk dog", "Walk dog", "Buy milk"}, listed.Entries)
	s.Equal("Buy milk", listed.Entries[len(listed.Entries)-1])

	removed, err := s.app.PlansService.Remove(s.ctx, resolved, "", "Walk dog")
	s.Require().NoError(err)
	s.Equal(2, removed)

	listed, _ = s.app.PlansService.List(s.ctx, resolved)
	s.Equal([]string{"Buy milk"}, listed.Entries)

	// Step 5: Log out
	s.Require().NoError(s.app.SessionManager.Invalidate(s.ctx, sess.Token))
	_, err = s.app.SessionManager.Resolve(s.ctx, sess.Token)
	s.ErrorIs(err, session.ErrNoSession)
}

func (s *IntegrationSuite) TestDuplicateRegistrationPreservesEntries() {
	first, err := s.app.AuthService.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Require().NoError(s.app.PlansService.Append(s.ctx, first.ID, "keep"))

	_, err = s.app.AuthService.Register(s.ctx, "alice", "pw2")
	s.ErrorIs(err, auth.ErrDuplicateUsername)

	listed, err := s.app.PlansService.List(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal([]string{"keep"}, listed.Entries)
}

func (s *IntegrationSuite) TestCrossAccountDeleteRejected() {
	alice, _ := s.app.AuthService.Register(s.ctx, "alice", "pw")
	bob, _ := s.app.AuthService.Register(s.ctx, "bob", "pw")
	s.Require().NoError(s.app.PlansService.Append(s.ctx, bob.ID, "bob's"))

	_, err := s.app.PlansService.Remove(s.ctx, alice.ID, bob.ID, "bob's")
	s.ErrorIs(err, plans.ErrForbidden)
}

func (s *IntegrationSuite) TestSessionExpiry() {
	account, _ := s.app.AuthService.Register(s.ctx, "alice", "pw")
	sess, err := s.app.SessionManager.Issue(s.ctx, account.ID)
	s.Require().NoError(err)

	s.app.MockClock.Advance(25 * time.Hour)

	_, err = s.app.SessionManager.Resolve(s.ctx, sess.Token)
	s.ErrorIs(err, session.ErrNoSession)
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.NotNil(t, app.SessionManager)
	assert.False(t, app.Bridge.Enabled())
	assert.Equal(t, 24*time.Hour, app.SessionManager.TTL())
}

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{StorageType: "etcd"})
	assert.Error(t, err)

	_, err = New(ctx, Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)

	_, err = New(ctx, Config{StorageType: StorageTypePostgres})
	assert.Error(t, err)

	_, err = New(ctx, Config{ProviderConfig: auth.ProviderConfig{ClientID: "id"}})
	assert.Error(t, err)
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(context.Background(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.NoError(t, app.Storage.Ping(context.Background()))
}
