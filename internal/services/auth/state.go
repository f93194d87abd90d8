package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/plans/internal/dependencies/clock"
)

// ErrInvalidState is returned when an OAuth state parameter fails verification
var ErrInvalidState = errors.New("invalid oauth state")

const stateIssuer = "plans"

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// StateSigner issues and verifies the OAuth state parameter as a short-lived
// HS256 token bound to a per-browser nonce
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewStateSigner creates a StateSigner
func NewStateSigner(secret string, ttl time.Duration, clock clock.Clock) *StateSigner {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}
}

// TTL returns how long a state stays valid
func (s *StateSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a state value bound to nonce
func (s *StateSigner) Sign(nonce string) (string, error) {
	now := s.clock.Now()
	claims := stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and that the state was issued for nonce
func (s *StateSigner) Verify(state, nonce string) error {
	if state == "" || nonce == "" {
		return ErrInvalidState
	}

	parsed, err := jwt.ParseWithClaims(state, &stateClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return ErrInvalidState
	}

	claims, ok := parsed.Claims.(*stateClaims)
	if !ok || !parsed.Valid || claims.Nonce != nonce {
		return ErrInvalidState
	}
	return nil
}
