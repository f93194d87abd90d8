package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/testutil"
)

// Runs against a real database; set PLANS_TEST_DATABASE_URL to enable.
type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv("PLANS_TEST_DATABASE_URL") == "" {
		t.Skip("PLANS_TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	s.ctx = context.Background()
	cfg := DefaultConfig()
	cfg.URL = os.Getenv("PLANS_TEST_DATABASE_URL")

	store, err := New(s.ctx, cfg, testutil.NopLogger())
	s.Require().NoError(err)
	s.storage = store
}

func (s *StorageSuite) TearDownSuite() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) SetupTest() {
	_, err := s.storage.pool.Exec(s.ctx, `TRUNCATE sessions, accounts`)
	s.Require().NoError(err)
}

func (s *StorageSuite) createLocal(id model.AccountID, username string) {
	err := s.storage.CreateLocalAccount(s.ctx, &model.Account{
		ID:           id,
		Username:     username,
		PasswordHash: "hash123",
		CreatedAt:    time.Now(),
	})
	s.Require().NoError(err)
}

func (s *StorageSuite) TestCreateAndGetLocalAccount() {
	s.createLocal("acc-1", "alice")

	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), account.ID)
	s.Equal("hash123", account.PasswordHash)
	s.Empty(account.FederatedID)
	s.Empty(account.Entries)
}

func (s *StorageSuite) TestCreateLocalAccountDuplicateUsername() {
	s.createLocal("acc-1", "alice")

	err := s.storage.CreateLocalAccount(s.ctx, &model.Account{ID: "acc-2", Username: "alice", CreatedAt: time.Now()})
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestFindOrCreateFederatedAccountConcurrent() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, isNew, err := s.storage.FindOrCreateFederatedAccount(s.ctx, &model.Account{
				ID:          model.AccountID(fmt.Sprintf("acc-%d", i)),
				FederatedID: "google-1",
				CreatedAt:   time.Now(),
			})
			s.NoError(err)
			if isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, created)
	var count int
	s.Require().NoError(s.storage.pool.QueryRow(s.ctx, `SELECT count(*) FROM accounts`).Scan(&count))
	s.Equal(1, count)
}

func (s *StorageSuite) TestAppendAndRemoveEntries() {
	s.createLocal("acc-1", "alice")
	for _, e := range []string{"a", "b", "a"} {
		s.Require().NoError(s.storage.AppendEntry(s.ctx, "acc-1", e))
	}

	removed, err := s.storage.RemoveEntry(s.ctx, "acc-1", "a")
	s.Require().NoError(err)
	s.Equal(2, removed)

	account, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal([]string{"b"}, account.Entries)
}

func (s *StorageSuite) TestEntryOperationsUnknownAccount() {
	s.ErrorIs(s.storage.AppendEntry(s.ctx, "nonexistent", "a"), model.ErrAccountNotFound)

	_, err := s.storage.RemoveEntry(s.ctx, "nonexistent", "a")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestSessions() {
	s.createLocal("acc-1", "alice")
	now := time.Now().UTC().Truncate(time.Second)

	ok, err := s.storage.CreateSession(s.ctx, &model.Session{Token: "old", AccountID: "acc-1", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)})
	s.Require().NoError(err)
	s.True(ok)
	ok, _ = s.storage.CreateSession(s.ctx, &model.Session{Token: "new", AccountID: "acc-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	s.True(ok)
	ok, _ = s.storage.CreateSession(s.ctx, &model.Session{Token: "new", AccountID: "acc-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	s.False(ok)

	removed, err := s.storage.DeleteExpiredSessions(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(1, removed)

	session, err := s.storage.GetSession(s.ctx, "new")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), session.AccountID)

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "new"))
	_, err = s.storage.GetSession(s.ctx, "new")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
