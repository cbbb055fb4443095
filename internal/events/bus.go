// Package events implements the in-process publish/subscribe bus that fans
// domain events out to connected live-feed viewers. Delivery is best-effort:
// the bus exists to drive transient notifications, so a subscriber that falls
// behind loses its oldest buffered events instead of slowing anyone down.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
)

// DefaultBufferSize is the per-subscriber ring capacity when the config does
// not override it.
const DefaultBufferSize = 100

// Subscription is the handle one connection holds on the bus. It is owned by
// exactly one consumer and must be closed when the connection ends.
type Subscription struct {
	bus *Bus
	ch  chan domain.Event

	// mu serializes producers touching ch so eviction stays well-defined
	// under concurrent Publish calls.
	mu sync.Mutex

	dropped   atomic.Uint64
	closeOnce sync.Once
}

// Events returns the channel the subscriber receives on. The channel is
// closed when the subscription is closed or the bus shuts down.
func (s *Subscription) Events() <-chan domain.Event {
	return s.ch
}

// Dropped returns how many events were evicted because this subscriber fell
// behind. Loss is informational, never an error.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unregisters the subscription and closes its channel. Safe to call
// more than once and safe to call concurrently with Publish.
func (s *Subscription) Close() {
	s.bus.remove(s)
}

// enqueue delivers one event into the subscriber's ring. When the buffer is
// full the OLDEST entry is evicted to make room: the publisher must never
// block, and recent events are worth more than stale ones to a live feed.
func (s *Subscription) enqueue(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case s.ch <- event:
			return
		default:
		}
		// Buffer full: drop the head. The consumer may race us for it;
		// either way a slot frees up.
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// Bus is the process-wide broadcast channel for domain events. One instance
// is created at startup and injected into every producer and consumer; there
// is no package-level global.
type Bus struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	bufSize int
	closed  bool
	logger  *slog.Logger
}

// NewBus creates a bus whose subscribers each buffer up to bufSize events.
func NewBus(bufSize int, logger *slog.Logger) *Bus {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Bus{
		subs:    make(map[*Subscription]struct{}),
		bufSize: bufSize,
		logger:  logger.With("component", "event_bus"),
	}
}

// Publish broadcasts an event to every current subscriber. It never blocks,
// never fails, and is a no-op with zero subscribers or after shutdown.
// Events from a single caller's sequential publishes arrive in order at each
// subscriber (minus any evicted by lag).
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for sub := range b.subs {
		sub.enqueue(event)
	}
}

// Subscribe registers a new consumer. The returned subscription receives
// every event published after this call until it is closed. Subscribing to a
// shut-down bus yields an already-closed subscription.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan domain.Event, b.bufSize),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.closeOnce.Do(func() { close(sub.ch) })
		return sub
	}
	b.subs[sub] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("subscriber registered", "subscribers", count)
	return sub
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Shutdown closes every subscription. Publishes after shutdown are dropped.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		sub.closeOnce.Do(func() {
			sub.mu.Lock()
			close(sub.ch)
			sub.mu.Unlock()
		})
	}
	b.logger.Info("event bus shut down", "closed_subscribers", len(subs))
}

// remove unregisters one subscription and closes its channel.
func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	_, registered := b.subs[sub]
	if registered {
		delete(b.subs, sub)
	}
	b.mu.Unlock()

	if registered {
		// Holding sub.mu here excludes enqueue; publishers holding the
		// bus read-lock have already finished because we held the write
		// lock above.
		sub.closeOnce.Do(func() {
			sub.mu.Lock()
			close(sub.ch)
			sub.mu.Unlock()
		})
	}
}
