package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int) (*RateLimiter, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(&Config{MaxRequests: max, WindowSize: time.Second})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Window(t *testing.T) {
	rl, now := newTestLimiter(2)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")

	*now = now.Add(1500 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
	assert.Equal(t, 1, rl.Count("a"))
}

func TestRateLimiter_DisabledAndReset(t *testing.T) {
	off, _ := newTestLimiter(0)
	defer off.Stop()
	for i := 0; i < 100; i++ {
		assert.True(t, off.Allow("x"))
	}

	rl, _ := newTestLimiter(1)
	defer rl.Stop()
	assert.True(t, rl.Allow("x"))
	assert.False(t, rl.Allow("x"))
	rl.Reset("x")
	assert.True(t, rl.Allow("x"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(5)
	defer rl.Stop()

	rl.Allow("idle")
	*now = now.Add(2 * time.Second)
	rl.cleanup()

	rl.mu.Lock()
	_, ok := rl.requests["idle"]
	rl.mu.Unlock()
	assert.False(t, ok)
}
