package changefeed

import (
	"context"
	"sync"
	"time"
)

const defaultBuffer = 16

// MemoryFeed fans events out to in-process subscribers. A slow subscriber
// drops events instead of blocking the publisher; since every event means
// "reload", the next delivered one covers the dropped ones.
type MemoryFeed struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
	now    func() time.Time
}

// NewMemoryFeed constructs an empty in-process feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		subs: make(map[string]map[*memorySubscription]struct{}),
		now:  time.Now,
	}
}

// Publish delivers event to every subscriber of its collection.
func (f *MemoryFeed) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.At.IsZero() {
		event.At = f.now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	for sub := range f.subs[event.Collection] {
		select {
		case sub.events <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscription on collection.
func (f *MemoryFeed) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	sub := &memorySubscription{
		feed:       f,
		collection: collection,
		events:     make(chan Event, defaultBuffer),
	}
	if f.subs[collection] == nil {
		f.subs[collection] = make(map[*memorySubscription]struct{})
	}
	f.subs[collection][sub] = struct{}{}
	return sub, nil
}

// Close ends every subscription. Their Err reports ErrClosed.
func (f *MemoryFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for _, subs := range f.subs {
		for sub := range subs {
			sub.err = ErrClosed
			close(sub.events)
		}
	}
	f.subs = nil
	return nil
}

// Subscribers returns the number of open subscriptions on collection.
func (f *MemoryFeed) Subscribers(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[collection])
}

type memorySubscription struct {
	feed       *MemoryFeed
	collection string
	events     chan Event
	err        error
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Err() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	return s.err
}

func (s *memorySubscription) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	subs, ok := s.feed.subs[s.collection]
	if !ok {
		return nil
	}
	if _, ok := subs[s]; !ok {
		return nil
	}
	delete(subs, s)
	close(s.events)
	return nil
}
