package auth

import (
	"sync"
	"time"

	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/google/uuid"
)

// EventType names an authentication state change.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event is delivered to OnAuthChange listeners.
type Event struct {
	Type   EventType
	UserID uuid.UUID
	Role   enums.Role
	At     time.Time
}

// listeners fans auth events out synchronously, in registration order.
type listeners struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(Event)
	order  []int
}

func newListeners() *listeners {
	return &listeners{fns: make(map[int]func(Event))}
}

func (l *listeners) add(fn func(Event)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
			for i, candidate := range l.order {
				if candidate == id {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (l *listeners) emit(event Event) {
	l.mu.RLock()
	fns := make([]func(Event), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.fns[id])
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}
