package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
)

// AccountLoader loads the account a session resolves to
type AccountLoader interface {
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
}

// GetAccount retrieves the authenticated account from the request context
// Returns nil if the request is anonymous
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// WithAccount returns a context carrying account
func WithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// Auth returns middleware that requires authentication.
// Anonymous requests are redirected to /login before any handler runs.
func Auth(sessions *session.Manager, accounts AccountLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := resolveAccount(r, sessions, accounts)
			if err != nil {
				logger.Error("session lookup failed", slog.String("error", err.Error()))
				RenderError(w, r, http.StatusInternalServerError, "We could not load your session. Please try again.")
				return
			}
			if account == nil {
				ClearSessionCookie(w, r)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it.
// Lookup failures degrade to anonymous.
func OptionalAuth(sessions *session.Manager, accounts AccountLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := resolveAccount(r, sessions, accounts)
			if err != nil {
				logger.Warn("optional session lookup failed", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// resolveAccount returns (nil, nil) for anonymous requests and an error only
// when the store could not answer
func resolveAccount(r *http.Request, sessions *session.Manager, accounts AccountLoader) (*model.Account, error) {
	token := SessionToken(r)
	if token == "" {
		return nil, nil
	}

	accountID, err := sessions.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}

	account, err := accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}
