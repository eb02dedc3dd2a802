package bus

import (
	"context"
	"sync"
)

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		mu:   sync.Mutex{},
		subs: make(map[*chan T]struct{}),
	}
}

// Hub fans events out to subscribers. Each subscriber only holds the latest
// event it has not read yet.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
}

// Broadcast never blocks. A subscriber that has not read the previous event
// gets it replaced by this one.
func (h *Hub[T]) Broadcast(event T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case *sub <- event:
			continue
		default:
		}
		select {
		case <-*sub:
		default:
		}
		select {
		case *sub <- event:
		default:
		}
	}
}

// Subscribe registers a subscriber until ctx is done or the returned function
// is called.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, 1)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			h.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	return c, unsubscribe
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
