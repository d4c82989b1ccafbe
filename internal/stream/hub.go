// Package stream broadcasts completed verification summaries to connected
// websocket clients, so a dashboard can watch results live.
package stream

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 5 * time.Second
	sendBufferSize = 16
)

// Event is the summary pushed to subscribers for each verification
type Event struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Verdict          string `json:"verdict"`
	IsFake           bool   `json:"is_fake"`
	Score            int    `json:"score"`
	Confidence       int    `json:"confidence"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

// client pairs a connection with its send buffer. All writes to the
// connection happen on the client's single writer goroutine; websocket
// connections do not support concurrent writers.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub tracks connected clients and fans events out to them. A client whose
// send buffer is full is dropped rather than blocking the broadcast.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from anywhere during the hackathon
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades the request to a websocket and registers the client.
// A writer goroutine owns all writes to the connection, and a read-drain
// goroutine processes close frames and pings; subscribers are write-only
// otherwise.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn: conn,
		send: make(chan Event, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.write(c)
	go h.drain(c)
	return nil
}

// write is the client's only connection writer. It exits when the send
// channel is closed by remove or Shutdown, and is the one place the
// connection gets closed.
func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(event); err != nil {
			log.Printf("dropping stream client: %v", err)
			h.remove(c)
			return
		}
	}
}

func (h *Hub) drain(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// remove unregisters the client and closes its send channel exactly once;
// the writer goroutine closes the connection when the channel drains
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast queues the event for every connected client. Queuing happens
// under the read lock so a send can never race the channel close in
// remove; clients whose buffer is full are dropped afterwards.
func (h *Hub) Broadcast(event Event) {
	var slow []*client

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Println("dropping slow stream client: send buffer full")
		h.remove(c)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects all clients
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
