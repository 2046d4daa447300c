package hub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	h := New()
	go h.Run()

	sub := &subscriber{id: "t1", events: make(chan []byte, 4)}
	h.add(sub)
	defer h.remove(sub)

	h.PublishDiscoveryEvent("cycle-complete", map[string]int{"switches": 3})

	select {
	case msg := <-sub.events:
		s := string(msg)
		if !strings.HasPrefix(s, "event: cycle-complete\n") {
			t.Errorf("message missing event line: %q", s)
		}
		if !strings.Contains(s, `"switches":3`) {
			t.Errorf("message missing payload: %q", s)
		}
		if !strings.HasSuffix(s, "\n\n") {
			t.Errorf("message missing SSE terminator: %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := New()
	go h.Run()

	// Zero-capacity channel: every delivery attempt is "slow".
	sub := &subscriber{id: "slow", events: make(chan []byte)}
	h.add(sub)
	defer h.remove(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.PublishDiscoveryEvent("cycle-started", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a slow subscriber")
	}
}

func TestSubscriberCount(t *testing.T) {
	h := New()
	if h.SubscriberCount() != 0 {
		t.Fatal("fresh hub reports subscribers")
	}
	sub := &subscriber{id: "c", events: make(chan []byte, 1)}
	h.add(sub)
	if h.SubscriberCount() != 1 {
		t.Error("add not reflected in count")
	}
	h.remove(sub)
	if h.SubscriberCount() != 0 {
		t.Error("remove not reflected in count")
	}
}

func TestServeHTTPStreamsUntilDisconnect(t *testing.T) {
	h := New()
	go h.Run()

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rec, req)
	}()

	// Wait for the subscriber to register, then push an event through.
	deadline := time.Now().Add(time.Second)
	for h.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(time.Millisecond)
	}
	h.PublishDiscoveryEvent("cycle-started", nil)

	// Give the broadcast and write loop a moment before disconnecting. The
	// recorder body is only read after the handler returns.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	if !strings.Contains(rec.Body.String(), "event: cycle-started") {
		t.Errorf("event never written to the stream: %q", rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), ": connected\n\n") {
		t.Errorf("stream missing the connected comment: %q", rec.Body.String())
	}
}
