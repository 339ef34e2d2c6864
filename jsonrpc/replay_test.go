package jsonrpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplayGuard_Remember(t *testing.T) {
	g := newReplayGuard(time.Hour)
	now := time.Unix(1_700_000_000, 0)
	expires := now.Add(time.Minute)

	assert.True(t, g.remember("a", expires, now))
	assert.False(t, g.remember("a", expires, now.Add(30*time.Second)))
	assert.True(t, g.remember("b", expires, now))

	// once expired the key may be recorded again
	assert.True(t, g.remember("a", now.Add(3*time.Minute), now.Add(2*time.Minute)))
	assert.False(t, g.remember("a", now.Add(3*time.Minute), now.Add(2*time.Minute)))
}

func TestReplayGuard_DropsEntriesAfterRetention(t *testing.T) {
	g := newReplayGuard(50 * time.Millisecond)
	now := time.Now()
	for _, k := range []string{"a", "b", "c"} {
		g.remember(k, now, now)
	}
	assert.Equal(t, 3, g.size())

	assert.Eventually(t, func() bool { return g.size() == 0 }, 2*time.Second, 10*time.Millisecond)
}
