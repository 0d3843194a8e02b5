package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/neurovale/internal/engine"
	"github.com/talgya/neurovale/internal/world"
)

const (
	clientBuffer = 8
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingPeriod   = 25 * time.Second
	maxCommand   = 4 << 10
)

// Frame is a message pushed to websocket clients.
type Frame struct {
	Type     string          `json:"type"`
	Paused   bool            `json:"paused,omitempty"`
	Selected string          `json:"selected,omitempty"`
	Snapshot *world.Snapshot `json:"snapshot,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Command is a message sent by a websocket client.
type Command struct {
	Type    string `json:"type"` // "toggle_pause" or "select"
	AgentID string `json:"agent_id,omitempty"`
}

var errUnknownCommand = errors.New("unknown command")

type client struct {
	id  string
	out chan []byte
}

// Hub fans published snapshots out to websocket clients and applies the
// commands they send back.
type Hub struct {
	sim *engine.Simulation
	eng *engine.Engine

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub and subscribes it to sim's published snapshots.
func NewHub(sim *engine.Simulation, eng *engine.Engine) *Hub {
	h := &Hub{
		sim: sim,
		eng: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 << 10,
			WriteBufferSize: 64 << 10,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	sim.OnPublish(h.Publish)
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends snap to every client. A client whose buffer is full misses
// this frame rather than stalling the tick.
func (h *Hub) Publish(snap *world.Snapshot) {
	if h.Clients() == 0 {
		return
	}
	b, err := json.Marshal(h.frame(snap))
	if err != nil {
		slog.Warn("snapshot frame encode failed", "error", err)
		return
	}
	h.broadcast(b)
}

func (h *Hub) frame(snap *world.Snapshot) Frame {
	return Frame{
		Type:     "snapshot",
		Paused:   h.eng.Paused(),
		Selected: h.sim.Selected(),
		Snapshot: snap,
	}
}

func (h *Hub) broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.out <- b:
		default:
		}
	}
}

func (h *Hub) join() *client {
	c := &client{
		id:  fmt.Sprintf("ws%d", h.nextID.Add(1)),
		out: make(chan []byte, clientBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// apply executes a client command.
func (h *Hub) apply(cmd Command) error {
	switch cmd.Type {
	case "toggle_pause":
		h.eng.TogglePause()
		return nil
	case "select":
		return h.sim.Select(cmd.AgentID)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
}

// ServeHTTP upgrades the connection and streams snapshots until either side
// closes it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := h.join()
	defer h.leave(c)
	slog.Debug("websocket client joined", "client", c.id, "remote", r.RemoteAddr)

	// The current snapshot goes out first so the client never waits a tick.
	h.reply(c, h.frame(h.sim.Snapshot()))

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go h.writeLoop(conn, c, done, writerDone)

	conn.SetReadLimit(maxCommand)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			h.reply(c, Frame{Type: "error", Message: "invalid json"})
			continue
		}
		if err := h.apply(cmd); err != nil {
			h.reply(c, Frame{Type: "error", Message: err.Error()})
			continue
		}
		h.reply(c, Frame{Type: "ack", Paused: h.eng.Paused(), Selected: h.sim.Selected()})
	}

	close(done)
	select {
	case <-writerDone:
	case <-time.After(500 * time.Millisecond):
	}
	slog.Debug("websocket client left", "client", c.id)
}

func (h *Hub) reply(c *client, f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default:
	}
}

// writeLoop owns all writes to conn.
func (h *Hub) writeLoop(conn *websocket.Conn, c *client, done <-chan struct{}, writerDone chan<- struct{}) {
	defer close(writerDone)
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(time.Second))
			return
		case b := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				conn.Close()
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
