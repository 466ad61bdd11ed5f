package broadcast

import "sync"

// Handler reacts to a highlight announcement for a course.
type Handler func(courseID string, active bool)

// Broadcaster lets one presentation announce interest in a course and every
// other presentation react, without any of them referencing another's
// concrete type. Announce with no handlers registered is a no-op. Handlers
// are expected to be idempotent under repeated active=true for the same id
// and to fully reverse their effect on a matching active=false.
type Broadcaster struct {
	mu       sync.Mutex
	handlers []registration
	nextID   int
}

type registration struct {
	id int
	h  Handler
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// Announce synchronously invokes every registered handler with the same
// (courseID, active) pair, in registration order.
func (b *Broadcaster) Announce(courseID string, active bool) {
	b.mu.Lock()
	handlers := make([]registration, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, reg := range handlers {
		reg.h(courseID, active)
	}
}

// OnAnnounce registers a handler and returns an unsubscribe func.
// Unsubscribing twice is harmless.
func (b *Broadcaster) OnAnnounce(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers = append(b.handlers, registration{id: id, h: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, reg := range b.handlers {
			if reg.id == id {
				b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}
