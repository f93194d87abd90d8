package mocks

import (
	"sync"

	"github.com/mcoot/plans/internal/dependencies/random"
)

// MockRandom returns queued tokens in order
type MockRandom struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or "" once the queue is drained
func (r *MockRandom) Token(int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.next >= len(r.tokens) {
		return ""
	}
	token := r.tokens[r.next]
	r.next++
	return token
}

// QueueToken adds values to the token queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, values...)
}
