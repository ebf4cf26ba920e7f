package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/webcraft/internal/identity"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("alice")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("alice")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Owner: "alice", Type: ProjectCreated, Data: map[string]string{"id": "p1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: project.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"p1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestOwnerScoping(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	alice := b.Subscribe("alice")
	defer b.Unsubscribe(alice)
	bob := b.Subscribe("bob")
	defer b.Unsubscribe(bob)

	b.Publish(Event{Owner: "alice", Type: ProjectUpdated, Data: map[string]string{"id": "p1"}})
	b.Publish(Event{Type: TemplatesUpdated, Data: map[string]string{}})
	time.Sleep(50 * time.Millisecond)

	if got := len(alice); got != 2 {
		t.Errorf("alice received %d events, want 2", got)
	}
	if got := len(bob); got != 1 {
		t.Errorf("bob received %d events, want 1 (broadcast only)", got)
	}
}

func TestPublishProjectEvent_DashboardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("alice")
	defer b.Unsubscribe(ch)

	// First event should trigger dashboard.updated.
	b.PublishProjectEvent("alice", ProjectCreated, "p1")
	// Second event immediately should NOT trigger another one.
	b.PublishProjectEvent("alice", ProjectUpdated, "p2")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	dashboardCount := 0
	projectCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, DashboardUpdated) {
				dashboardCount++
			} else {
				projectCount++
			}
		default:
			break loop
		}
	}

	if projectCount != 2 {
		t.Errorf("project events = %d, want 2", projectCount)
	}
	if dashboardCount != 1 {
		t.Errorf("dashboard events = %d, want 1 (throttled)", dashboardCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(identity.WithPrincipal(ctx, "alice"))
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Owner: "alice", Type: BlocksUpdated, Data: map[string]string{"id": "p1"}})
	b.Publish(Event{Owner: "bob", Type: ProjectDeleted, Data: map[string]string{"id": "p9"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: blocks.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, "project.deleted") {
		t.Errorf("handler leaked another owner's event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("alice")
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("alice")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TemplatesUpdated, Data: map[string]string{}})
	b.PublishProjectEvent("alice", ProjectUpdated, "p1")
}
