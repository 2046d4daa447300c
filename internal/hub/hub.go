package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Event is the envelope streamed to SSE subscribers.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

type subscriber struct {
	id     string
	events chan []byte
}

// Hub fans discovery events out to SSE subscribers. It implements
// discovery.EventPublisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	broadcast   chan Event
}

// New creates a Hub. Call Run in its own goroutine before publishing.
func New() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		broadcast:   make(chan Event, 256),
	}
}

// Run drains the broadcast channel until it is closed.
func (h *Hub) Run() {
	for ev := range h.broadcast {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("Failed to marshal %s event: %v", ev.Type, err)
			continue
		}
		msg := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, data))

		h.mu.RLock()
		for sub := range h.subscribers {
			select {
			case sub.events <- msg:
			default:
				log.Printf("SSE subscriber %s is slow, skipping %s event", sub.id, ev.Type)
			}
		}
		h.mu.RUnlock()
	}
}

// PublishDiscoveryEvent queues an event for all subscribers. Drops the event
// when the broadcast channel is full.
func (h *Hub) PublishDiscoveryEvent(eventType string, payload interface{}) {
	ev := Event{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload}
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("Broadcast channel full, dropping %s event", eventType)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	total := len(h.subscribers)
	h.mu.Unlock()
	log.Printf("SSE subscriber connected: %s (total: %d)", sub.id, total)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	total := len(h.subscribers)
	h.mu.Unlock()
	log.Printf("SSE subscriber disconnected: %s (total: %d)", sub.id, total)
}

// ServeHTTP streams events to one SSE subscriber until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := &subscriber{
		id:     fmt.Sprintf("%d", time.Now().UnixNano()),
		events: make(chan []byte, 64),
	}
	h.add(sub)
	defer h.remove(sub)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sub.events:
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
