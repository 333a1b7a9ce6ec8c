package changefeed

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryFeedFansOutPerCollection(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	first, err := feed.Subscribe(ctx, CollectionProducts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := feed.Subscribe(ctx, CollectionProducts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	other, err := feed.Subscribe(ctx, "stores")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := feed.Publish(ctx, Event{Collection: CollectionProducts, Op: OpCreate, DocumentID: "p-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, sub := range []Subscription{first, second} {
		select {
		case ev := <-sub.Events():
			if ev.DocumentID != "p-1" || ev.Op != OpCreate {
				t.Fatalf("unexpected event %+v", ev)
			}
			if ev.At.IsZero() {
				t.Fatal("expected publish to stamp the event time")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	select {
	case ev := <-other.Events():
		t.Fatalf("stores subscriber should not see product events, got %+v", ev)
	default:
	}
}

func TestMemoryFeedSubscriptionClose(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, CollectionProducts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if feed.Subscribers(CollectionProducts) != 1 {
		t.Fatalf("expected one subscriber")
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if feed.Subscribers(CollectionProducts) != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected events channel to be closed")
	}
	if sub.Err() != nil {
		t.Fatalf("explicit close should not report an error, got %v", sub.Err())
	}
}

func TestMemoryFeedCloseEndsSubscriptions(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, CollectionProducts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := feed.Close(); err != nil {
		t.Fatalf("close feed: %v", err)
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected events channel to be closed")
	}
	if !errors.Is(sub.Err(), ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", sub.Err())
	}
	if err := feed.Publish(ctx, Event{Collection: CollectionProducts}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected publish on closed feed to fail, got %v", err)
	}
	if _, err := feed.Subscribe(ctx, CollectionProducts); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected subscribe on closed feed to fail, got %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("closing an ended subscription should be a no-op: %v", err)
	}
}

func TestMemoryFeedDropsWhenSubscriberIsFull(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, CollectionProducts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	for i := 0; i < defaultBuffer*2; i++ {
		if err := feed.Publish(ctx, Event{Collection: CollectionProducts, Op: OpUpdate}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if got := len(sub.Events()); got != defaultBuffer {
		t.Fatalf("expected buffer to hold %d events, got %d", defaultBuffer, got)
	}
}

func TestDecodeEventDefaultsCollection(t *testing.T) {
	ev, err := decodeEvent(`{"op":"delete","document_id":"p-9"}`, CollectionProducts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Collection != CollectionProducts || ev.Op != OpDelete || ev.DocumentID != "p-9" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if _, err := decodeEvent("not json", CollectionProducts); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewRedisFeedRequiresClient(t *testing.T) {
	if _, err := NewRedisFeed(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}
