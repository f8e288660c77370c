// Package events provides the in-process observer hub that tells
// aggregation consumers the expense collection has changed.
package events

import (
	"context"
	"sort"
	"sync"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
)

// Handler reacts to one change event. Handlers run synchronously on the
// publishing goroutine and must not call Subscribe or Publish themselves.
type Handler func(ctx context.Context, ev domain.ExpenseChanged)

// Hub fans ExpenseChanged events out to its subscribers in subscription order.
type Hub struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (h *Hub) Subscribe(handler Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber and returns once all of
// them have run.
func (h *Hub) Publish(ctx context.Context, ev domain.ExpenseChanged) {
	for _, handler := range h.snapshot() {
		handler(ctx, ev)
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

func (h *Hub) snapshot() []Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, h.handlers[id])
	}
	return handlers
}
