// Package broadcast fans pipeline events out to connected subscribers.
package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by the service.
const (
	TypeScanComplete   = "scan_complete"
	TypeSearchComplete = "search_complete"
	TypePong           = "pong"
)

// Event is one notification delivered to every subscriber.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Subscriber receives published events. A Send error marks the subscriber
// as gone and it is dropped from the hub.
type Subscriber interface {
	Send(Event) error
}

// Hub is a mutex-guarded subscriber registry. Publish snapshots the set and
// delivers outside the lock, so subscribers may come and go mid-broadcast.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]Subscriber
	log  *slog.Logger
	now  func() time.Time
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		subs: make(map[uuid.UUID]Subscriber),
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Register adds a subscriber and returns its id.
func (h *Hub) Register(sub Subscriber) uuid.UUID {
	id := uuid.New()
	h.mu.Lock()
	h.subs[id] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.log.Info("subscriber connected", "subscriber", id, "subscribers", n)
	return id
}

// Unregister removes a subscriber. Unknown ids are ignored.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	_, ok := h.subs[id]
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()

	if ok {
		h.log.Info("subscriber disconnected", "subscriber", id, "subscribers", n)
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish stamps evt and delivers it to every subscriber registered at the
// time of the call. Subscribers whose send fails are unregistered. It returns
// the number of successful deliveries.
func (h *Hub) Publish(evt Event) int {
	if h == nil {
		return 0
	}
	evt.Timestamp = h.now()

	h.mu.Lock()
	snapshot := make(map[uuid.UUID]Subscriber, len(h.subs))
	for id, sub := range h.subs {
		snapshot[id] = sub
	}
	h.mu.Unlock()

	delivered := 0
	var failed []uuid.UUID
	for id, sub := range snapshot {
		if err := sub.Send(evt); err != nil {
			h.log.Warn("dropping subscriber after failed send", "subscriber", id, "type", evt.Type, "error", err)
			failed = append(failed, id)
			continue
		}
		delivered++
	}

	for _, id := range failed {
		h.Unregister(id)
	}
	return delivered
}
