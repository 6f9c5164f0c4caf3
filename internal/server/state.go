package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ronkaldes/lumina/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Renderer connects from file:// or localhost
	},
}

// clientBufferSize is the per-client send queue depth. A renderer that
// falls further behind than this starts dropping frames rather than
// stalling the pipeline.
const clientBufferSize = 8

// stateClient is one connected renderer.
type stateClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// StateHandler broadcasts installation state snapshots to renderers
// over WebSocket. Snapshots are pushed from the pipeline via Publish;
// slow clients drop frames instead of applying backpressure.
type StateHandler struct {
	mu      sync.RWMutex
	clients map[string]*stateClient
}

// NewStateHandler creates an empty StateHandler.
func NewStateHandler() *StateHandler {
	return &StateHandler{
		clients: make(map[string]*stateClient),
	}
}

// ClientCount returns the number of connected renderers.
func (h *StateHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish fans one snapshot out to every connected renderer. It never
// blocks: a client with a full send queue skips this frame.
func (h *StateHandler) Publish(snap app.Snapshot) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Error encoding snapshot: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client behind; newer frames supersede this one anyway.
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &stateClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBufferSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("Renderer %s connected", c.id)

	go h.writePump(c)
	h.readPump(c)
}

// readPump drains inbound messages until the connection drops, then
// removes the client. Renderers do not send application messages;
// reading is required to process control frames.
func (h *StateHandler) readPump(c *stateClient) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		h.mu.Unlock()
		close(c.send)
		c.conn.Close()
		log.Printf("Renderer %s disconnected", c.id)
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards queued snapshots to the connection. It exits when
// readPump closes the send channel.
func (h *StateHandler) writePump(c *stateClient) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
