package webhook

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/leasing-agent/core/events"
)

const debugWriteTimeout = 2 * time.Second

// DebugStream fans diagnostic orchestration events out to connected
// websocket clients. It is advisory only: a slow or gone client is dropped
// rather than allowed to block event handling.
type DebugStream struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewDebugStream() *DebugStream {
	return &DebugStream{
		clients: map[*websocket.Conn]struct{}{},
	}
}

// debugEnvelope is the wire shape of one diagnostic event.
type debugEnvelope struct {
	Kind      string       `json:"kind"`
	Timestamp time.Time    `json:"timestamp"`
	Event     events.Event `json:"event"`
}

// Observe implements the orchestrator's event observer contract.
func (d *DebugStream) Observe(event events.Event) {
	envelope := debugEnvelope{
		Kind:      string(event.Kind()),
		Timestamp: event.Timestamp(),
		Event:     event,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for conn := range d.clients {
		conn.SetWriteDeadline(time.Now().Add(debugWriteTimeout))
		if err := conn.WriteJSON(envelope); err != nil {
			conn.Close()
			delete(d.clients, conn)
		}
	}
}

func (d *DebugStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to upgrade debug stream", "error", err)
		return
	}

	d.mu.Lock()
	d.clients[conn] = struct{}{}
	d.mu.Unlock()

	// Drain the read side to notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				d.mu.Lock()
				if _, ok := d.clients[conn]; ok {
					conn.Close()
					delete(d.clients, conn)
				}
				d.mu.Unlock()
				return
			}
		}
	}()
}

// Close disconnects all clients.
func (d *DebugStream) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for conn := range d.clients {
		conn.Close()
		delete(d.clients, conn)
	}
}
