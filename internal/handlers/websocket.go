package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler streams assessment pipeline events to connected clients
type WebSocketHandler struct {
	logger      arbor.ILogger
	events      interfaces.EventService
	mu          sync.RWMutex
	clients     map[*websocket.Conn]*sync.Mutex
	unsubscribe func()
}

// NewWebSocketHandler creates the handler and subscribes it to pipeline
// events
func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:  logger,
		events:  eventService,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
	h.unsubscribe = eventService.Subscribe(h.broadcast)
	return h
}

// HandleWebSocket handles GET /ws upgrade requests
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	// Read loop exists only to detect disconnects; clients send nothing.
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Close unsubscribes from events and disconnects all clients
func (h *WebSocketHandler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
}

func (h *WebSocketHandler) broadcast(event interfaces.Event) {
	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, lock := range h.clients {
		conns[conn] = lock
	}
	h.mu.RUnlock()

	for conn, lock := range conns {
		lock.Lock()
		err := conn.WriteJSON(event)
		lock.Unlock()
		if err != nil {
			h.removeClient(conn)
		}
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}
