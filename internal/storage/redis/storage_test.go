package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plans/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
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

// Account tests

func (s *StorageSuite) TestCreateAndGetLocalAccount() {
	s.createLocal("acc-1", "alice")

	account, err := s.storage.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
	s.Equal("hash123", account.PasswordHash)
	s.Empty(account.Entries)
}

func (s *StorageSuite) TestGetAccountByUsername() {
	s.createLocal("acc-1", "alice")

	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), account.ID)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccountByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateLocalAccountDuplicateUsername() {
	s.createLocal("acc-1", "alice")
	_ = s.storage.AppendEntry(s.ctx, "acc-1", "keep me")

	err := s.storage.CreateLocalAccount(s.ctx, &model.Account{ID: "acc-2", Username: "alice", PasswordHash: "other"})
	s.ErrorIs(err, model.ErrDuplicateUsername)

	s.False(s.mini.Exists(accountKey("acc-2")))
	account, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal([]string{"keep me"}, account.Entries)
}

func (s *StorageSuite) TestFindOrCreateFederatedAccount() {
	created, isNew, err := s.storage.FindOrCreateFederatedAccount(s.ctx, &model.Account{ID: "acc-1", FederatedID: "google-1"})
	s.Require().NoError(err)
	s.True(isNew)
	s.Equal("google-1", created.FederatedID)

	found, isNew, err := s.storage.FindOrCreateFederatedAccount(s.ctx, &model.Account{ID: "acc-2", FederatedID: "google-1"})
	s.Require().NoError(err)
	s.False(isNew)
	s.Equal(model.AccountID("acc-1"), found.ID)
	s.False(s.mini.Exists(accountKey("acc-2")))
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
	accounts := 0
	for _, k := range s.mini.Keys() {
		if strings.HasPrefix(k, "plans:account:") {
			accounts++
		}
	}
	s.Equal(1, accounts)
}

// Entry tests

func (s *StorageSuite) TestAppendEntry() {
	s.createLocal("acc-1", "alice")

	s.Require().NoError(s.storage.AppendEntry(s.ctx, "acc-1", "Buy milk"))
	s.Require().NoError(s.storage.AppendEntry(s.ctx, "acc-1", ""))

	account, err := s.storage.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal([]string{"Buy milk", ""}, account.Entries)
}

func (s *StorageSuite) TestAppendEntryUnknownAccount() {
	err := s.storage.AppendEntry(s.ctx, "nonexistent", "a")
	s.ErrorIs(err, model.ErrAccountNotFound)
	s.False(s.mini.Exists(entriesKey("nonexistent")))
}

func (s *StorageSuite) TestRemoveEntryRemovesAllOccurrences() {
	s.createLocal("acc-1", "alice")
	for _, e := range []string{"a", "b", "a"} {
		_ = s.storage.AppendEntry(s.ctx, "acc-1", e)
	}

	removed, err := s.storage.RemoveEntry(s.ctx, "acc-1", "a")
	s.Require().NoError(err)
	s.Equal(2, removed)

	account, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal([]string{"b"}, account.Entries)
}

func (s *StorageSuite) TestRemoveEntryUnknownAccount() {
	_, err := s.storage.RemoveEntry(s.ctx, "nonexistent", "a")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Session tests

func (s *StorageSuite) TestCreateAndGetSession() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	session := &model.Session{Token: "tok", AccountID: "acc-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	ok, err := s.storage.CreateSession(s.ctx, session)
	s.Require().NoError(err)
	s.True(ok)

	retrieved, err := s.storage.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), retrieved.AccountID)
	s.True(retrieved.ExpiresAt.Equal(session.ExpiresAt))
}

func (s *StorageSuite) TestSessionTTL() {
	now := time.Now()
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{Token: "tok", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})

	ttl := s.mini.TTL(sessionKey("tok"))
	s.Equal(time.Hour, ttl)

	s.mini.FastForward(2 * time.Hour)
	_, err := s.storage.GetSession(s.ctx, "tok")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestCreateSessionRejectsExistingToken() {
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{Token: "tok", AccountID: "acc-1"})

	ok, err := s.storage.CreateSession(s.ctx, &model.Session{Token: "tok", AccountID: "acc-2"})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestDeleteSession() {
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{Token: "tok", AccountID: "acc-1"})

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))

	_, err := s.storage.GetSession(s.ctx, "tok")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestStoreUnavailable() {
	s.mini.Close()

	_, err := s.storage.GetAccount(s.ctx, "acc-1")
	s.ErrorIs(err, model.ErrStoreUnavailable)

	err = s.storage.AppendEntry(s.ctx, "acc-1", "a")
	s.ErrorIs(err, model.ErrStoreUnavailable)
}
