package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plans/internal/dependencies/mocks"
	"github.com/mcoot/plans/internal/dependencies/random"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage/memory"
	"github.com/mcoot/plans/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	manager *Manager
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = NewManager(s.storage, s.clock, random.New(), DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

// Issue tests

func (s *ManagerSuite) TestIssueCreatesSession() {
	session, err := s.manager.Issue(s.ctx, "acc-1")
	s.Require().NoError(err)

	s.True(strings.HasPrefix(session.Token, "sess_"))
	s.Len(session.Token, len("sess_")+43)
	s.Equal(model.AccountID("acc-1"), session.AccountID)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ManagerSuite) TestIssuedTokenDoesNotLeakAccountID() {
	session, _ := s.manager.Issue(s.ctx, "acc-secret-id")
	s.NotContains(session.Token, "acc-secret-id")
}

func (s *ManagerSuite) TestIssueTokensAreUnique() {
	first, _ := s.manager.Issue(s.ctx, "acc-1")
	second, _ := s.manager.Issue(s.ctx, "acc-1")
	s.NotEqual(first.Token, second.Token)
}

func (s *ManagerSuite) TestIssueRetriesOnCollision() {
	rnd := mocks.NewMockRandom()
	rnd.QueueToken("same", "same", "fresh")
	manager := NewManager(s.storage, s.clock, rnd, DefaultConfig(), testutil.NopLogger())

	first, err := manager.Issue(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("sess_same", first.Token)

	second, err := manager.Issue(s.ctx, "acc-2")
	s.Require().NoError(err)
	s.Equal("sess_fresh", second.Token)
}

func (s *ManagerSuite) TestIssueGivesUpAfterRepeatedCollisions() {
	rnd := mocks.NewMockRandom()
	manager := NewManager(s.storage, s.clock, rnd, DefaultConfig(), testutil.NopLogger())

	_, err := manager.Issue(s.ctx, "acc-1")
	s.Require().NoError(err)

	_, err = manager.Issue(s.ctx, "acc-2")
	s.ErrorIs(err, ErrTokenCollision)
}

// Resolve tests

func (s *ManagerSuite) TestResolveReturnsAccount() {
	session, _ := s.manager.Issue(s.ctx, "acc-1")

	accountID, err := s.manager.Resolve(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), accountID)
}

func (s *ManagerSuite) TestResolveEmptyToken() {
	_, err := s.manager.Resolve(s.ctx, "")
	s.ErrorIs(err, ErrNoSession)
}

func (s *ManagerSuite) TestResolveUnknownToken() {
	_, err := s.manager.Resolve(s.ctx, "sess_unknown")
	s.ErrorIs(err, ErrNoSession)
}

func (s *ManagerSuite) TestResolveExpiredTokenDeletesSession() {
	session, _ := s.manager.Issue(s.ctx, "acc-1")

	s.clock.Advance(25 * time.Hour)

	_, err := s.manager.Resolve(s.ctx, session.Token)
	s.ErrorIs(err, ErrNoSession)

	_, err = s.storage.GetSession(s.ctx, session.Token)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ManagerSuite) TestCustomTTL() {
	manager := NewManager(s.storage, s.clock, random.New(), Config{TTL: time.Minute}, testutil.NopLogger())
	session, _ := manager.Issue(s.ctx, "acc-1")

	s.clock.Advance(2 * time.Minute)

	_, err := manager.Resolve(s.ctx, session.Token)
	s.ErrorIs(err, ErrNoSession)
}

// Invalidate tests

func (s *ManagerSuite) TestInvalidateRemovesSession() {
	session, _ := s.manager.Issue(s.ctx, "acc-1")

	s.Require().NoError(s.manager.Invalidate(s.ctx, session.Token))

	_, err := s.manager.Resolve(s.ctx, session.Token)
	s.ErrorIs(err, ErrNoSession)
}

func (s *ManagerSuite) TestInvalidateUnknownTokenIsNoop() {
	s.NoError(s.manager.Invalidate(s.ctx, "unknown_token"))
	s.NoError(s.manager.Invalidate(s.ctx, ""))
}

func (s *ManagerSuite) TestSessionsAreRecreatable() {
	first, _ := s.manager.Issue(s.ctx, "acc-1")
	_ = s.manager.Invalidate(s.ctx, first.Token)

	second, err := s.manager.Issue(s.ctx, "acc-1")
	s.Require().NoError(err)

	accountID, err := s.manager.Resolve(s.ctx, second.Token)
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), accountID)
}

// Sweep tests

func (s *ManagerSuite) TestSweepRemovesOnlyExpired() {
	old, _ := s.manager.Issue(s.ctx, "acc-1")
	s.clock.Advance(25 * time.Hour)
	fresh, _ := s.manager.Issue(s.ctx, "acc-2")

	removed, err := s.manager.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.storage.GetSession(s.ctx, old.Token)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.manager.Resolve(s.ctx, fresh.Token)
	s.NoError(err)
}
