package storage

import (
	"context"
	"time"

	"github.com/mcoot/plans/internal/model"
)

// Storage defines the interface for data persistence.
// Every entry mutation and every create-if-absent is atomic within the backend;
// callers never read-modify-write an account.
type Storage interface {
	// Account operations
	CreateLocalAccount(ctx context.Context, account *model.Account) error
	FindOrCreateFederatedAccount(ctx context.Context, account *model.Account) (*model.Account, bool, error)
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// Entry operations
	AppendEntry(ctx context.Context, id model.AccountID, entry string) error
	RemoveEntry(ctx context.Context, id model.AccountID, entry string) (int, error)

	// Session operations
	CreateSession(ctx context.Context, session *model.Session) (bool, error)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
