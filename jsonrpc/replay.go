package jsonrpc

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// replayGuard remembers accepted request payloads until their timestamp
// falls out of the clock skew window, after which the skew check rejects them
type replayGuard struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, time.Time]
}

// newReplayGuard keeps entries for at least retention, which must cover the
// whole window a timestamp is accepted in
func newReplayGuard(retention time.Duration) *replayGuard {
	return &replayGuard{seen: expirable.NewLRU[string, time.Time](0, nil, retention)}
}

// remember records key until expires. It returns false if key is already
// recorded and has not expired.
func (g *replayGuard) remember(key string, expires, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.seen.Peek(key); ok && !now.After(exp) {
		return false
	}
	g.seen.Add(key, expires)
	return true
}

func (g *replayGuard) size() int {
	return g.seen.Len()
}
