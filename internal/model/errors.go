package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
