package eventbus

import (
	"log"
	"sync"
)

const subscriberBuffer = 16

// Publisher mirrors broadcast events to a secondary channel (e.g. NATS).
type Publisher interface {
	Publish(evt UIEvent) error
}

// Hub fans UI events out to SSE subscribers and any attached mirrors.
// Broadcast never blocks: a slow subscriber drops events rather than
// stalling the conversation pipeline.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]chan UIEvent
	nextID  int
	mirrors []Publisher
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan UIEvent)}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber disconnects; it closes the channel.
func (h *Hub) Subscribe() (<-chan UIEvent, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan UIEvent, subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// AttachMirror adds a secondary publisher that receives every broadcast.
func (h *Hub) AttachMirror(p Publisher) {
	h.mu.Lock()
	h.mirrors = append(h.mirrors, p)
	h.mu.Unlock()
}

// Broadcast delivers an event to every subscriber and mirror.
func (h *Hub) Broadcast(evt UIEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("⚠️ [EVENTBUS] subscriber %d full, dropping %s event", id, evt.EventType())
		}
	}
	for _, m := range h.mirrors {
		if err := m.Publish(evt); err != nil {
			log.Printf("⚠️ [EVENTBUS] mirror publish failed: %v", err)
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
