package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts       map[model.AccountID]*model.Account
	usernameIndex  map[string]model.AccountID
	federatedIndex map[string]model.AccountID
	sessions       map[string]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:       make(map[model.AccountID]*model.Account),
		usernameIndex:  make(map[string]model.AccountID),
		federatedIndex: make(map[string]model.AccountID),
		sessions:       make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateLocalAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernameIndex[account.Username]; ok {
		return model.ErrDuplicateUsername
	}
	s.accounts[account.ID] = cloneAccount(account)
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) FindOrCreateFederatedAccount(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.federatedIndex[account.FederatedID]; ok {
		return cloneAccount(s.accounts[id]), false, nil
	}
	s.accounts[account.ID] = cloneAccount(account)
	s.federatedIndex[account.FederatedID] = account.ID
	return cloneAccount(account), true, nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// Entry operations

func (s *Storage) AppendEntry(ctx context.Context, id model.AccountID, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Entries = append(account.Entries, entry)
	return nil
}

func (s *Storage) RemoveEntry(ctx context.Context, id model.AccountID, entry string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return 0, model.ErrAccountNotFound
	}
	before := len(account.Entries)
	account.Entries = slices.DeleteFunc(account.Entries, func(e string) bool {
		return e == entry
	})
	return before - len(account.Entries), nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return false, nil
	}
	copied := *session
	s.sessions[session.Token] = &copied
	return true, nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// cloneAccount copies an account so callers never share the entries slice
func cloneAccount(a *model.Account) *model.Account {
	copied := *a
	copied.Entries = slices.Clone(a.Entries)
	if copied.Entries == nil {
		copied.Entries = []string{}
	}
	return &copied
}
