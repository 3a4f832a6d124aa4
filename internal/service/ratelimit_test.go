package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestChatLimiterBurst expects the burst to be consumed immediately and the
// next request to be rejected.
func TestChatLimiterBurst(t *testing.T) {
	limiter := newChatLimiter(60, 2)

	assert.True(t, limiter.allow("auth0|123"))
	assert.True(t, limiter.allow("auth0|123"))
	assert.False(t, limiter.allow("auth0|123"))
}

// TestChatLimiterPerSubject expects one caller's exhausted budget to leave
// other callers unaffected.
func TestChatLimiterPerSubject(t *testing.T) {
	limiter := newChatLimiter(60, 1)

	assert.True(t, limiter.allow("auth0|123"))
	assert.False(t, limiter.allow("auth0|123"))
	assert.True(t, limiter.allow("auth0|456"))
}

// TestChatLimiterMinimumBurst expects a zero burst to be lifted to one so the
// limiter never deadlocks a caller completely.
func TestChatLimiterMinimumBurst(t *testing.T) {
	limiter := newChatLimiter(60, 0)

	assert.True(t, limiter.allow("auth0|123"))
}
