// Package sse implements a Server-Sent Events broker. Events carry an owner
// and reach only that owner's streams; events without an owner reach all.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/webcraft/internal/identity"
)

// Event types.
const (
	ProjectCreated   = "project.created"
	ProjectUpdated   = "project.updated"
	ProjectDeleted   = "project.deleted"
	DashboardUpdated = "dashboard.updated"
	ChatMessage      = "chat.message"
	BlocksUpdated    = "blocks.updated"
	TemplatesUpdated = "templates.updated"
	SettingsUpdated  = "settings.updated"
	ProfileUpdated   = "profile.updated"
)

// Event represents an SSE event to deliver.
type Event struct {
	Owner string `json:"-"`
	Type  string `json:"type"`
	Data  any    `json:"data"`
}

type projectEventReq struct {
	owner     string
	kind      string
	projectID string
}

type subscription struct {
	ch    chan []byte
	owner string
}

// Broker manages SSE client connections and delivers events.
//
// A single internal loop owns the client set and the per-owner dashboard
// throttle; public methods talk to it over channels.
type Broker struct {
	dashboardMin time.Duration

	subscribeCh    chan subscription
	unsubscribeCh  chan chan []byte
	publishCh      chan Event
	projectEventCh chan projectEventReq
	countReqCh     chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits dashboard.updated at most once
// per throttle interval and owner.
func NewBroker(dashboardThrottle time.Duration) *Broker {
	if dashboardThrottle <= 0 {
		dashboardThrottle = 2 * time.Second
	}

	b := &Broker{
		dashboardMin:   dashboardThrottle,
		subscribeCh:    make(chan subscription),
		unsubscribeCh:  make(chan chan []byte),
		publishCh:      make(chan Event, 256),
		projectEventCh: make(chan projectEventReq, 256),
		countReqCh:     make(chan chan int),
		stopCh:         make(chan struct{}),
		stopped:        make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)
	lastDashboard := make(map[string]time.Time)

	deliver := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch, owner := range clients {
			if event.Owner != "" && event.Owner != owner {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.owner

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			deliver(event)

		case req := <-b.projectEventCh:
			deliver(Event{Owner: req.owner, Type: req.kind, Data: map[string]string{"id": req.projectID}})

			now := time.Now()
			if now.Sub(lastDashboard[req.owner]) >= b.dashboardMin {
				lastDashboard[req.owner] = now
				deliver(Event{Owner: req.owner, Type: DashboardUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client for owner and returns its channel. An empty
// owner receives only unowned events.
func (b *Broker) Subscribe(owner string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, owner: owner}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish delivers an event.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishProjectEvent delivers a project change to owner followed by a
// throttled dashboard.updated.
func (b *Broker) PublishProjectEvent(owner, kind, projectID string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.projectEventCh <- projectEventReq{owner: owner, kind: kind, projectID: projectID}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). The stream is
// scoped to the caller in the request context.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	owner, _ := identity.Principal(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(owner)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
