// Package hub fans out forum events to all currently connected
// subscribers. Delivery is best-effort and at-least-once per subscriber:
// there is no backlog or replay, and a subscriber that falls behind
// loses events rather than blocking the writer or its peers. Clients
// are expected to re-fetch a snapshot over HTTP after (re)connecting.
package hub

import (
	"log/slog"
	"sync"

	"github.com/ridglejessica55-prog/seren/internal/events"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity.
const DefaultSubscriberBuffer = 32

// Subscriber receives events on C until Unsubscribe closes it.
type Subscriber struct {
	C chan events.Event
}

// Hub is the fan-out broadcaster. The zero value is not usable; call New.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
	buf  int
	log  *slog.Logger
}

// New creates a hub. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs: make(map[*Subscriber]struct{}),
		buf:  DefaultSubscriberBuffer,
		log:  logger.WithGroup("hub"),
	}
}

// Subscribe registers a new subscriber. New subscribers get no backlog.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan events.Event, h.buf)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("subscriber added", "total", h.Count())
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.C)
}

// Publish delivers e to every registered subscriber. Sends are
// non-blocking: a full subscriber buffer drops the event for that
// subscriber only.
func (h *Hub) Publish(e events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.C <- e:
		default:
			h.log.Warn("subscriber buffer full, dropping event", "event", e.Name())
		}
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone. Used at shutdown so subscriber loops end.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.C)
	}
}
