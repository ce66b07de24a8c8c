package event

import (
	"sync"

	"github.com/google/uuid"
)

// InMemoryBus fans activity messages out to every subscriber. It stands in
// for the browser BroadcastChannel shared by tabs of the same origin.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Activity
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{subscribers: make(map[string]chan Activity)}
}

func (b *InMemoryBus) Publish(a Activity) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		// Non-blocking send so a stalled subscriber never blocks activity
		// marking; a dropped message only delays one tab's reschedule.
		select {
		case ch <- a:
		default:
		}
	}
}

func (b *InMemoryBus) Subscribe() (<-chan Activity, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Activity, 16)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, exists := b.subscribers[id]; exists {
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return ch, unsubscribe
}
