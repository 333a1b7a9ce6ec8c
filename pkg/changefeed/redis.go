package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var errSubscriptionLost = errors.New("changefeed: redis subscription channel closed")

type redisTransport interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
	ChangeFeedChannel(collection string) string
}

// RedisFeed publishes events on a Redis pub/sub channel per collection so
// every API instance observes writes made by any other instance.
type RedisFeed struct {
	client redisTransport
	now    func() time.Time
}

// NewRedisFeed wraps the shared redis client.
func NewRedisFeed(client redisTransport) (*RedisFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisFeed{client: client, now: time.Now}, nil
}

// Publish encodes event as JSON and publishes it.
func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = f.now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if _, err := f.client.Publish(ctx, f.client.ChangeFeedChannel(event.Collection), payload); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe opens a confirmed pub/sub subscription for collection.
func (f *RedisFeed) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	ps, err := f.client.Subscribe(ctx, f.client.ChangeFeedChannel(collection))
	if err != nil {
		return nil, err
	}
	return newRedisSubscription(ps, collection, f.now), nil
}

// pubsub is the part of *redis.PubSub a subscription reads from.
type pubsub interface {
	ChannelWithSubscriptions(opts ...redis.ChannelOption) <-chan any
	Close() error
}

func newRedisSubscription(ps pubsub, collection string, now func() time.Time) *redisSubscription {
	sub := &redisSubscription{
		ps:     ps,
		now:    now,
		events: make(chan Event, defaultBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump(collection)
	return sub
}

type redisSubscription struct {
	ps     pubsub
	now    func() time.Time
	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// pump forwards messages as events. go-redis reconnects and resubscribes on
// its own, so a subscribe confirmation seen here means the connection dropped
// and anything published meanwhile is gone; it is turned into a resync.
func (s *redisSubscription) pump(collection string) {
	defer close(s.events)
	messages := s.ps.ChannelWithSubscriptions()
	for {
		var event Event
		select {
		case <-s.done:
			return
		case raw, ok := <-messages:
			if !ok {
				s.setErr(errSubscriptionLost)
				return
			}
			switch msg := raw.(type) {
			case *redis.Message:
				decoded, err := decodeEvent(msg.Payload, collection)
				if err != nil {
					continue
				}
				event = decoded
			case *redis.Subscription:
				if msg.Kind != "subscribe" {
					continue
				}
				event = Event{Collection: collection, Op: OpResync, At: s.now().UTC()}
			default:
				continue
			}
			select {
			case s.events <- event:
			case <-s.done:
				return
			default:
				// a reload is already queued
			}
		}
	}
}

func decodeEvent(payload, collection string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, err
	}
	if event.Collection == "" {
		event.Collection = collection
	}
	return event, nil
}

func (s *redisSubscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

func (s *redisSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
