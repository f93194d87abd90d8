package redis

import (
	"fmt"

	"github.com/mcoot/plans/internal/model"
)

// Key prefix for all plan-related data
const keyPrefix = "plans"

// accountKey returns the Redis key for an Account document (without entries)
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// entriesKey returns the Redis key for the LIST of an account's entries
func entriesKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s:entries", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> account_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// federatedIndexKey returns the Redis key for the federated subject -> account_id index
func federatedIndexKey(subject string) string {
	return fmt.Sprintf("%s:idx:federated:%s", keyPrefix, subject)
}

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}
