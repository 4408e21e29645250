// Package sse implements a Server-Sent Events broker for live notebook views.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Note event kinds accepted by PublishNoteEvent.
var noteEventTypes = map[string]string{
	"created": "note.created",
	"updated": "note.updated",
	"deleted": "note.deleted",
}

// Notebook event kinds accepted by PublishNotebookEvent.
var notebookEventTypes = map[string]string{
	"loaded":   "notebook.loaded",
	"saved":    "notebook.saved",
	"conflict": "notebook.conflict",
	"removed":  "notebook.removed",
}

type changeReq struct {
	typ  string
	data map[string]string
}

// Broker manages SSE client connections and broadcasts events.
//
// The run loop goroutine owns the client set and the refresh throttle;
// public methods reach it only through channels. Slow clients lose frames
// rather than block the loop.
type Broker struct {
	refreshMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. Change events are followed by a
// "notes.refresh" event at most once per refreshThrottle.
func NewBroker(refreshThrottle time.Duration) *Broker {
	if refreshThrottle <= 0 {
		refreshThrottle = 2 * time.Second
	}

	b := &Broker{
		refreshMin:    refreshThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// refreshEvent tells clients to re-fetch the note list.
var refreshEvent = Event{Type: "notes.refresh", Data: map[string]string{}}

// encodeFrame renders event in the text/event-stream wire format.
func encodeFrame(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

// throttle admits at most one event per interval.
type throttle struct {
	interval time.Duration
	last     time.Time
}

func (t *throttle) allow(now time.Time) bool {
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// clientSet is owned by the run loop.
type clientSet map[chan []byte]struct{}

// send delivers event to every client whose buffer has room.
func (c clientSet) send(event Event) {
	frame, err := encodeFrame(event)
	if err != nil {
		return
	}
	for ch := range c {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (c clientSet) closeAll() {
	for ch := range c {
		close(ch)
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := clientSet{}
	refresh := &throttle{interval: b.refreshMin}

	for {
		select {
		case <-b.stopCh:
			clients.closeAll()
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			clients.send(event)

		case req := <-b.changeCh:
			clients.send(Event{Type: req.typ, Data: req.data})
			if refresh.allow(time.Now()) {
				clients.send(refreshEvent)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishNoteEvent publishes a note change ("created", "updated" or
// "deleted") and a throttled notes.refresh event. Unknown kinds are dropped.
func (b *Broker) PublishNoteEvent(kind, id string) {
	typ, ok := noteEventTypes[kind]
	if !ok {
		return
	}
	b.change(changeReq{typ: typ, data: map[string]string{"id": id}})
}

// PublishNotebookEvent publishes a notebook file event ("loaded", "saved",
// "conflict" or "removed") and a throttled notes.refresh event.
func (b *Broker) PublishNotebookEvent(kind, path string) {
	typ, ok := notebookEventTypes[kind]
	if !ok {
		return
	}
	b.change(changeReq{typ: typ, data: map[string]string{"path": path}})
}

func (b *Broker) change(req changeReq) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- req:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
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
