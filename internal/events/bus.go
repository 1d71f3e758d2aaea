package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// subscriberQueueSize bounds how many undelivered events a slow subscriber
// can accumulate before new events are dropped for it. The bus is
// best-effort: a slow consumer loses events rather than blocking producers.
const subscriberQueueSize = 256

// Bus is an in-process domain-event bus. Publish never blocks regardless of
// how many subscribers exist or how slow they are; a full subscriber queue
// simply drops the event with a logged warning. Delivery order is preserved
// per-emitter-per-subscriber but there is no ordering guarantee across
// distinct emitters, matching a process-wide MPMC channel.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	outbox      *Outbox
	log         zerolog.Logger
}

type subscription struct {
	types map[Type]bool // nil means subscribe to everything
	ch    chan Event
}

// New constructs an empty Bus.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]*subscription),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// WithOutbox attaches a durable replay buffer: every subsequent Publish is
// also persisted there before fan-out. nil disables it again.
func (b *Bus) WithOutbox(outbox *Outbox) *Bus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outbox = outbox
	return b
}

// PruneOutbox deletes delivered outbox rows older than olderThan. A no-op if
// no outbox is attached.
func (b *Bus) PruneOutbox(olderThan time.Duration) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.outbox == nil {
		return 0, nil
	}
	return b.outbox.Prune(olderThan)
}

// Subscription is a handle returned by Subscribe; call Close to unsubscribe
// and range over Events to receive delivered events.
type Subscription struct {
	id     int
	bus    *Bus
	Events <-chan Event
}

// Close unsubscribes and releases the subscription's channel.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		close(sub.ch)
		delete(s.bus.subscribers, s.id)
	}
}

// Subscribe registers a new subscriber. If types is empty, the subscriber
// receives every event published on the bus; otherwise it receives only
// events whose Type is in the list.
func (b *Bus) Subscribe(types ...Type) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	var filter map[Type]bool
	if len(types) > 0 {
		filter = make(map[Type]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberQueueSize)
	b.subscribers[id] = &subscription{types: filter, ch: ch}

	return &Subscription{id: id, bus: b, Events: ch}
}

// Publish delivers evt to every matching subscriber without blocking.
// Callers emit only after the mutation that produced evt has committed.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.outbox != nil {
		if err := b.outbox.Append(evt); err != nil {
			b.log.Error().Err(err).Str("event_type", string(evt.Type)).Msg("failed to persist event to outbox")
		}
	}

	for _, sub := range b.subscribers {
		if sub.types != nil && !sub.types[evt.Type] {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			b.log.Warn().
				Str("event_type", string(evt.Type)).
				Str("emitter", evt.Emitter).
				Msg("subscriber queue full, dropping event")
		}
	}
}
