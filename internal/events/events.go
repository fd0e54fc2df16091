// Package events provides in-process pub/sub for slot lifecycle events.
// The registry publishes; the journal and metrics layers subscribe.
package events

import (
	"sync"
	"time"

	"parklot/internal/model"
)

// Event types published by the registry.
const (
	TypeSlotAllocated  = "slot.allocated"
	TypeSlotReleased   = "slot.released"
	TypeSlotDeleted    = "slot.deleted"
	TypeResidentBilled = "slot.resident_billed"
)

// Event is a lightweight domain event describing a slot transition.
type Event struct {
	Type         string
	SlotID       int
	Category     model.Category
	LicensePlate string
	Fee          float64
	CreatedAt    time.Time
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}
