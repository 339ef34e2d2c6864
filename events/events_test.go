package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	eventBus := NewEventBus()

	id, eventChan := eventBus.Subscribe()
	assert.Equal(t, 1, eventBus.GetTotalSubscriptions())
	assert.True(t, eventBus.HasSubscriber(id))

	go eventBus.Publish(NewStaked("alice", "10000000", 1000, 315361000))

	select {
	case received := <-eventChan:
		require.Equal(t, EventStaked, received.Type())
		assert.Equal(t, "alice", received.Participant())
		staked, ok := received.(*Staked)
		require.True(t, ok)
		assert.Equal(t, uint64(1000), staked.Slot)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	assert.True(t, eventBus.Unsubscribe(id))
	assert.False(t, eventBus.Unsubscribe(id))
	assert.Equal(t, 0, eventBus.GetTotalSubscriptions())

	_, open := <-eventChan
	assert.False(t, open, "channel is closed on unsubscribe")
}

func TestEventBus_FullSubscriberDoesNotBlock(t *testing.T) {
	eventBus := NewEventBus()
	_, ch := eventBus.Subscribe()

	for i := 0; i < cap(ch)+10; i++ {
		eventBus.Publish(NewOperationFailed("stake", "bob", "already staked"))
	}
	assert.Len(t, ch, cap(ch))
}

func TestStakingEvents(t *testing.T) {
	assert.Equal(t, EventVaultInitialized, NewVaultInitialized("payer", "vault").Type())
	assert.Equal(t, EventDestaked, NewDestaked("alice", "500", "10", 1500).Type())

	failed := NewOperationFailed("destake", "bob", "not staked")
	assert.Equal(t, EventOperationFailed, failed.Type())
	assert.Equal(t, "destake", failed.Operation)
	assert.WithinDuration(t, time.Now(), failed.Timestamp(), time.Second)
}
