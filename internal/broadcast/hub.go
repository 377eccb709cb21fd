package broadcast

import (
	"sync"

	"github.com/flightschool/weatherops/internal/metrics"

	"go.uber.org/zap"
)

const subscriberBufferSize = 64

// Subscription is one dashboard session's event channel. Callers read
// from Events until they call Close, which removes the subscriber from
// the hub and closes its channel at once. A subscriber that stops
// reading without calling Close stays registered; once its buffer is
// full, every publish drops its oldest queued event.
type Subscription struct {
	id     uint64
	events chan Event
	hub    *Hub
}

// Events returns the channel to range over for this subscription.
func (s *Subscription) Events() <-chan Event { return s.events }

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// Hub is the single process-wide multi-producer, multi-subscriber
// broadcast point. Publish never blocks on a slow subscriber: a full
// buffer drops its oldest event and increments a counter instead.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Event
	nextID      uint64
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{subscribers: make(map[uint64]chan Event), logger: logger}
}

// Subscribe registers a new dashboard session and returns its handle.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Event, subscriberBufferSize)
	h.subscribers[id] = ch
	metrics.SetBroadcastSubscribers(len(h.subscribers))

	return &Subscription{id: id, events: ch, hub: h}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
		metrics.SetBroadcastSubscribers(len(h.subscribers))
	}
}

// Publish delivers event to every current subscriber. Each subscriber
// sees events in publish order; there is no cross-subscriber ordering
// guarantee. A subscriber whose buffer is full has its oldest queued
// event dropped to make room — the publisher is never blocked.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Buffer full: drop the oldest queued event for this
			// subscriber, then enqueue the new one.
			select {
			case <-ch:
				metrics.RecordBroadcastDropped()
				h.logger.Warn("broadcast buffer full, dropped oldest event", zap.Uint64("subscriber_id", id))
			default:
			}
			select {
			case ch <- event:
			default:
				// The buffer is still full; this event is lost for
				// this subscriber.
				metrics.RecordBroadcastDropped()
			}
		}
	}
}

// SubscriberCount reports the current number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
