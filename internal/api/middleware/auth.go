package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/plans/internal/api/apierr"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	tokenContextKey   contextKey = "token"
)

// AccountLoader loads the account a session resolves to
type AccountLoader interface {
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
}

// Auth creates authentication middleware accepting a Bearer token or the session cookie
func Auth(sessions *session.Manager, accounts AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			accountID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			account, err := accounts.GetAccount(r.Context(), accountID)
			if errors.Is(err, model.ErrAccountNotFound) {
				// session outlived its account
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			// Add token and account to context
			ctx := r.Context()
			ctx = context.WithValue(ctx, tokenContextKey, token)
			ctx = context.WithValue(ctx, accountContextKey, account)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetAccount returns the authenticated account from the request context
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// GetToken returns the session token from the request context
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// MustGetAccount returns the authenticated account or panics
func MustGetAccount(ctx context.Context) *model.Account {
	account := GetAccount(ctx)
	if account == nil {
		panic("no account in context - auth middleware not applied?")
	}
	return account
}
