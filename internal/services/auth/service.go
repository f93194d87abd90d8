package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/plans/internal/dependencies/clock"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage"
)

// Errors
var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrDuplicateUsername    = model.ErrDuplicateUsername
	ErrInvalidInput         = errors.New("username and password are required")
	ErrIdentityProvider     = errors.New("identity provider error")
)

// Service verifies local credentials and maps federated identities to accounts
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	bcryptCost int
	newID      func() string
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		newID:      uuid.NewString,
	}
}

// Register creates a local account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           model.AccountID(s.newID()),
		Username:     username,
		PasswordHash: string(hash),
		Entries:      []string{},
		CreatedAt:    s.clock.Now(),
	}

	// Username uniqueness is enforced atomically by the store
	if err := s.storage.CreateLocalAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("account_id", string(account.ID)))
	return account, nil
}

// Login verifies a username/password pair and returns the matching account
func (s *Service) Login(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.storage.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	if account.PasswordHash == "" {
		return nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	return account, nil
}

// FindOrCreateFederated returns the account bound to a provider subject,
// creating it on first sight. Concurrent calls for the same subject yield one account.
func (s *Service) FindOrCreateFederated(ctx context.Context, subject string) (*model.Account, error) {
	if subject == "" {
		return nil, ErrIdentityProvider
	}

	candidate := &model.Account{
		ID:          model.AccountID(s.newID()),
		FederatedID: subject,
		Entries:     []string{},
		CreatedAt:   s.clock.Now(),
	}

	account, created, err := s.storage.FindOrCreateFederatedAccount(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("federated account created", slog.String("account_id", string(account.ID)))
	}
	return account, nil
}

// GetAccount returns an account by id
func (s *Service) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.storage.GetAccount(ctx, id)
}
