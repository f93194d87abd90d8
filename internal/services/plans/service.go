package plans

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

// ErrForbidden is returned when a caller mutates an account other than their own
var ErrForbidden = errors.New("cannot modify another account's plans")

// Config holds configuration for the plans service
type Config struct {
	// AllowCrossAccountDelete lets Remove target any account id
	AllowCrossAccountDelete bool
}

// Service manages the ordered plan entries owned by each account
type Service struct {
	storage storage.Storage
	config  Config
	logger  *slog.Logger
}

// New creates a new plans Service
func New(storage storage.Storage, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		config:  cfg,
		logger:  logger,
	}
}

// List returns the account with its entries in append order
func (s *Service) List(ctx context.Context, accountID model.AccountID) (*model.Account, error) {
	return s.storage.GetAccount(ctx, accountID)
}

// Append adds entry to the end of the account's entries. Content is stored as-is.
func (s *Service) Append(ctx context.Context, accountID model.AccountID, entry string) error {
	if err := s.storage.AppendEntry(ctx, accountID, entry); err != nil {
		return err
	}
	s.logger.Debug("plan appended", slog.String("account_id", string(accountID)))
	return nil
}

// Remove deletes every occurrence of entry from target's entries and returns
// how many were removed. An empty target means the caller's own account.
func (s *Service) Remove(ctx context.Context, caller, target model.AccountID, entry string) (int, error) {
	if target == "" {
		target = caller
	}

	if target != caller {
		if !s.config.AllowCrossAccountDelete {
			s.logger.Warn("cross-account delete rejected",
				slog.String("caller", string(caller)),
				slog.String("target", string(target)),
			)
			return 0, ErrForbidden
		}
		s.logger.Warn("cross-account delete permitted",
			slog.String("caller", string(caller)),
			slog.String("target", string(target)),
		)
	}

	removed, err := s.storage.RemoveEntry(ctx, target, entry)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("plans removed",
		slog.String("account_id", string(target)),
		slog.Int("removed", removed),
	)
	return removed, nil
}
