package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Account documents are JSON strings; entries live in a separate LIST so that
// append and remove are single atomic commands.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// accountRecord is the persisted JSON shape of an account (entries excluded)
type accountRecord struct {
	ID           model.AccountID `json:"id"`
	Username     string          `json:"username,omitempty"`
	PasswordHash string          `json:"password_hash,omitempty"`
	FederatedID  string          `json:"federated_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateLocalAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return err
	}

	keys := []string{usernameIndexKey(account.Username), accountKey(account.ID)}
	created, err := createLocalScript.Run(ctx, s.client, keys, string(account.ID), data).Int()
	if err != nil {
		return unavailable(err)
	}
	if created == 0 {
		return model.ErrDuplicateUsername
	}
	return nil
}

func (s *Storage) FindOrCreateFederatedAccount(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return nil, false, err
	}

	keys := []string{federatedIndexKey(account.FederatedID), accountKey(account.ID)}
	boundID, err := findOrCreateFederatedScript.Run(ctx, s.client, keys, string(account.ID), data).Text()
	if err != nil {
		return nil, false, unavailable(err)
	}

	found, err := s.GetAccount(ctx, model.AccountID(boundID))
	if err != nil {
		return nil, false, err
	}
	return found, boundID == string(account.ID), nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	// Fetch document and entries in one round trip
	pipe := s.client.Pipeline()
	docCmd := pipe.Get(ctx, accountKey(id))
	entriesCmd := pipe.LRange(ctx, entriesKey(id), 0, -1)
	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable(err)
	}

	data, err := docCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, unavailable(err)
	}

	var record accountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	entries, err := entriesCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable(err)
	}
	if entries == nil {
		entries = []string{}
	}

	return record.toAccount(entries), nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	// Look up account ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, unavailable(err)
	}

	return s.GetAccount(ctx, model.AccountID(id))
}

// Entry operations

func (s *Storage) AppendEntry(ctx context.Context, id model.AccountID, entry string) error {
	keys := []string{accountKey(id), entriesKey(id)}
	n, err := appendEntryScript.Run(ctx, s.client, keys, entry).Int()
	if err != nil {
		return unavailable(err)
	}
	if n < 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) RemoveEntry(ctx context.Context, id model.AccountID, entry string) (int, error) {
	keys := []string{accountKey(id), entriesKey(id)}
	n, err := removeEntryScript.Run(ctx, s.client, keys, entry).Int()
	if err != nil {
		return 0, unavailable(err)
	}
	if n < 0 {
		return 0, model.ErrAccountNotFound
	}
	return n, nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (bool, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return false, err
	}

	// Redis expires the key on its own; the manager still checks ExpiresAt
	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl < 0 {
		ttl = 0
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.Token), data, ttl).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, unavailable(err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op: session keys carry their own TTL
func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func toRecord(a *model.Account) accountRecord {
	return accountRecord{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		FederatedID:  a.FederatedID,
		CreatedAt:    a.CreatedAt,
	}
}

func (r accountRecord) toAccount(entries []string) *model.Account {
	return &model.Account{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		FederatedID:  r.FederatedID,
		Entries:      entries,
		CreatedAt:    r.CreatedAt,
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
