// Package changefeed carries "collection changed" notifications between the
// writers of a collection and the live views that project it.
package changefeed

import (
	"context"
	"errors"
	"time"
)

// CollectionProducts is the product catalog collection.
const CollectionProducts = "products"

// Op names the kind of write that produced an event.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	// OpResync is emitted by a transport that may have missed events, for
	// example after reconnecting. Subscribers reload as for any other event.
	OpResync Op = "resync"
)

// ErrClosed is returned when publishing to or subscribing on a closed feed.
var ErrClosed = errors.New("changefeed closed")

// Event signals that a collection changed. Subscribers reload the collection
// rather than patching from the event.
type Event struct {
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	DocumentID string    `json:"document_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber opens subscriptions on a collection.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string) (Subscription, error)
}

// Subscription delivers events until closed. Events is closed when the
// subscription ends, either through Close or because the transport failed;
// Err reports the failure in the latter case.
type Subscription interface {
	Events() <-chan Event
	Err() error
	Close() error
}

// Feed is both ends of the change feed.
type Feed interface {
	Publisher
	Subscriber
}
