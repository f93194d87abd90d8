package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

const uniqueViolation = "23505"

// Storage is a Postgres-backed implementation of the storage interface.
// Entries are a TEXT[] column mutated with array_append/array_remove so every
// change is a single-statement update.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and optionally applies migrations
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, unavailable(err)
	}

	if cfg.Migrate {
		if err := Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const accountColumns = `id, COALESCE(username, ''), COALESCE(password_hash, ''), COALESCE(federated_id, ''), entries, created_at`

// Account operations

func (s *Storage) CreateLocalAccount(ctx context.Context, account *model.Account) error {
	const query = `INSERT INTO accounts (id, username, password_hash, entries, created_at)
		VALUES ($1, $2, $3, '{}', $4)`
	_, err := s.pool.Exec(ctx, query, account.ID, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateUsername
		}
		return unavailable(err)
	}
	return nil
}

func (s *Storage) FindOrCreateFederatedAccount(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	const insert = `INSERT INTO accounts (id, federated_id, entries, created_at)
		VALUES ($1, $2, '{}', $3)
		ON CONFLICT (federated_id) DO NOTHING`
	tag, err := s.pool.Exec(ctx, insert, account.ID, account.FederatedID, account.CreatedAt)
	if err != nil {
		return nil, false, unavailable(err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE federated_id = $1`
	found, err := scanAccount(s.pool.QueryRow(ctx, query, account.FederatedID))
	if err != nil {
		return nil, false, err
	}
	return found, tag.RowsAffected() == 1, nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, id))
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, username))
}

// Entry operations

func (s *Storage) AppendEntry(ctx context.Context, id model.AccountID, entry string) error {
	const query = `UPDATE accounts SET entries = array_append(entries, $2) WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, entry)
	if err != nil {
		return unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) RemoveEntry(ctx context.Context, id model.AccountID, entry string) (int, error) {
	const query = `WITH target AS (
			SELECT id, cardinality(entries) AS before FROM accounts WHERE id = $1 FOR UPDATE
		)
		UPDATE accounts a SET entries = array_remove(a.entries, $2)
		FROM target WHERE a.id = target.id
		RETURNING target.before - cardinality(a.entries)`
	var removed int
	if err := s.pool.QueryRow(ctx, query, id, entry).Scan(&removed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrAccountNotFound
		}
		return 0, unavailable(err)
	}
	return removed, nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (bool, error) {
	const query = `INSERT INTO sessions (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING`
	tag, err := s.pool.Exec(ctx, query, session.Token, session.AccountID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return false, unavailable(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	const query = `SELECT token, account_id, created_at, expires_at FROM sessions WHERE token = $1`
	var session model.Session
	err := s.pool.QueryRow(ctx, query, token).Scan(&session.Token, &session.AccountID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, unavailable(err)
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, unavailable(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FederatedID, &a.Entries, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, unavailable(err)
	}
	if a.Entries == nil {
		a.Entries = []string{}
	}
	return &a, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
