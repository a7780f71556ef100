// Package events provides a pub/sub bus for window manager events.
// Components publish pane lifecycle, focus, and mode changes; the UI and
// debug surfaces subscribe without holding references to each other.
package events

import (
	"container/ring"
	"sync"
	"sync/atomic"
	"time"
)

// BusEvent is the interface that all bus events must implement
type BusEvent interface {
	EventKind() string
	EventTime() time.Time
}

// Handler is a callback function for event subscriptions
type Handler func(BusEvent)

// UnsubscribeFunc is returned from Subscribe and can be called to unsubscribe
type UnsubscribeFunc func()

// handlerEntry wraps a handler with a unique ID for safe unsubscription
type handlerEntry struct {
	id      uint64
	handler Handler
}

// Bus is a pub/sub hub with a bounded event history.
type Bus struct {
	subscribers map[string][]handlerEntry
	nextID      atomic.Uint64
	mu          sync.RWMutex
	history     *ring.Ring
	historySize int
	historyMu   sync.RWMutex
}

// NewBus creates a bus retaining the last historySize events.
func NewBus(historySize int) *Bus {
	if historySize < 1 {
		historySize = 100
	}
	return &Bus{
		subscribers: make(map[string][]handlerEntry),
		history:     ring.New(historySize),
		historySize: historySize,
	}
}

// Subscribe registers a handler for a specific event kind.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(kind string, handler Handler) UnsubscribeFunc {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID.Add(1)
	entry := handlerEntry{id: id, handler: handler}
	b.subscribers[kind] = append(b.subscribers[kind], entry)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		handlers := b.subscribers[kind]
		for i, h := range handlers {
			if h.id == id {
				handlers[i] = handlers[len(handlers)-1]
				b.subscribers[kind] = handlers[:len(handlers)-1]
				return
			}
		}
	}
}

// SubscribeAll registers a handler for all events (wildcard)
func (b *Bus) SubscribeAll(handler Handler) UnsubscribeFunc {
	return b.Subscribe("*", handler)
}

// Publish sends an event to all matching subscribers. Handlers run
// synchronously in publish order; the window manager loop is single
// threaded and relies on handlers completing before the next frame.
func (b *Bus) Publish(event BusEvent) {
	b.historyMu.Lock()
	b.history.Value = event
	b.history = b.history.Next()
	b.historyMu.Unlock()

	b.mu.RLock()
	kind := event.EventKind()
	entries := make([]handlerEntry, 0, len(b.subscribers[kind])+len(b.subscribers["*"]))
	entries = append(entries, b.subscribers[kind]...)
	entries = append(entries, b.subscribers["*"]...)
	b.mu.RUnlock()

	for _, entry := range entries {
		entry.handler(event)
	}
}

// History returns recent events, newest first.
func (b *Bus) History(limit int) []BusEvent {
	if limit <= 0 || limit > b.historySize {
		limit = b.historySize
	}

	b.historyMu.RLock()
	defer b.historyMu.RUnlock()

	events := make([]BusEvent, 0, limit)
	r := b.history.Prev()
	for i := 0; i < limit; i++ {
		if r.Value != nil {
			if event, ok := r.Value.(BusEvent); ok {
				events = append(events, event)
			}
		}
		r = r.Prev()
	}
	return events
}

// SubscriberCount returns the number of subscribers for an event kind
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[kind])
}
