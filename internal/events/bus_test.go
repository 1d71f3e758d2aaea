package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return New(zerolog.Nop())
}

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe(ActivitiesChanged)
	defer sub.Close()

	b.Publish(Event{Type: ActivitiesChanged, Emitter: "activity", Timestamp: time.Now(), Data: &ActivitiesChangedData{AccountID: "acc-1"}})

	select {
	case evt := <-sub.Events:
		assert.Equal(t, ActivitiesChanged, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event not delivered")
	}
}

func TestPublishSkipsNonMatchingSubscriber(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe(AccountChanged)
	defer sub.Close()

	b.Publish(Event{Type: ActivitiesChanged, Emitter: "activity", Timestamp: time.Now()})

	select {
	case <-sub.Events:
		t.Fatal("did not expect delivery for unsubscribed type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllTypes(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: QuotesImported, Emitter: "sync"})

	select {
	case evt := <-sub.Events:
		assert.Equal(t, QuotesImported, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected wildcard subscriber to receive event")
	}
}

func TestPublishNeverBlocksOnFullQueue(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe(AccountChanged)
	defer sub.Close()

	// Fill the subscriber's queue past capacity; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueSize+10; i++ {
			b.Publish(Event{Type: AccountChanged, Emitter: "test"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber queue")
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe(AccountChanged)
	sub.Close()

	require.NotPanics(t, func() {
		b.Publish(Event{Type: AccountChanged, Emitter: "test"})
	})
}
