// Package sysvar exposes the platform clock: a monotonically increasing slot
// counter and the wall-clock unix timestamp observed at that slot.
package sysvar

import (
	"errors"
	"sync"
	"time"
)

// DefaultSlotDuration matches a 400ms slot time
const DefaultSlotDuration = 400 * time.Millisecond

type Clock struct {
	Slot          uint64 `json:"slot"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ClockSource interface {
	Now() Clock
}

// SlotClock derives the current slot from the time elapsed since genesis
type SlotClock struct {
	genesis      time.Time
	slotDuration time.Duration
	now          func() time.Time
}

func NewSlotClock(genesis time.Time, slotDuration time.Duration) (*SlotClock, error) {
	if slotDuration <= 0 {
		return nil, errors.New("slot duration must be positive")
	}
	return &SlotClock{
		genesis:      genesis,
		slotDuration: slotDuration,
		now:          time.Now,
	}, nil
}

func (c *SlotClock) Now() Clock {
	now := c.now()
	elapsed := now.Sub(c.genesis)
	if elapsed < 0 {
		elapsed = 0
	}
	return Clock{
		Slot:          uint64(elapsed / c.slotDuration),
		UnixTimestamp: now.Unix(),
	}
}

// ManualClock only moves when told to
type ManualClock struct {
	mu    sync.Mutex
	clock Clock
}

func NewManualClock(slot uint64, unix int64) *ManualClock {
	return &ManualClock{clock: Clock{Slot: slot, UnixTimestamp: unix}}
}

func (c *ManualClock) Now() Clock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock
}

func (c *ManualClock) Set(slot uint64, unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = Clock{Slot: slot, UnixTimestamp: unix}
}

// Advance moves the slot and the timestamp forward
func (c *ManualClock) Advance(slots uint64, seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock.Slot += slots
	c.clock.UnixTimestamp += seconds
}
