package model

import "time"

// AccountID uniquely identifies an account across the system
type AccountID string

// AuthMethod describes how an account signs in
type AuthMethod string

const (
	AuthMethodLocal     AuthMethod = "local"
	AuthMethodFederated AuthMethod = "federated"
)

// Account is the sole persisted entity: credentials plus the owned plan entries
type Account struct {
	ID           AccountID
	Username     string // local accounts only, unique
	PasswordHash string // bcrypt hash, local accounts only
	FederatedID  string // identity provider subject, federated accounts only
	Entries      []string
	CreatedAt    time.Time
}

// AuthMethod reports which credential is populated.
// Local credentials win if both are present.
func (a *Account) AuthMethod() AuthMethod {
	if a.Username != "" {
		return AuthMethodLocal
	}
	return AuthMethodFederated
}

// DisplayName is what the UI shows for the account
func (a *Account) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return "Google user"
}
