package response

import (
	"time"

	"github.com/mcoot/plans/internal/model"
)

// Account represents an account in API responses
type Account struct {
	ID         string    `json:"id"`
	Username   string    `json:"username,omitempty"`
	AuthMethod string    `json:"auth_method"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:         string(a.ID),
		Username:   a.Username,
		AuthMethod: string(a.AuthMethod()),
		CreatedAt:  a.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Account      Account   `json:"account"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session and its account
func AuthResponseFromSession(s *model.Session, a *model.Account) AuthResponse {
	return AuthResponse{
		Account:      AccountFromModel(a),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Plans is the response for listing and appending plans
type Plans struct {
	AccountID string   `json:"account_id"`
	Plans     []string `json:"plans"`
}

// PlansFromModel converts an account's entries
func PlansFromModel(a *model.Account) Plans {
	entries := a.Entries
	if entries == nil {
		entries = []string{}
	}
	return Plans{
		AccountID: string(a.ID),
		Plans:     entries,
	}
}

// RemovePlans is the response for removing a plan
type RemovePlans struct {
	Plans
	Removed int `json:"removed"`
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
