package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiard/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is one websocket viewer of a table
type Client struct {
	conn    *websocket.Conn
	id      string
	tableID string
	room    *game.Room
	send    chan []byte
}

// Hub maintains the set of active clients, grouped by table
type Hub struct {
	clients    map[string]*Client            // clientID -> Client
	tables     map[string]map[string]*Client // tableID -> clientID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		tables:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// run processes registrations until the process exits.
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.tables[client.tableID]; !exists {
				h.tables[client.tableID] = make(map[string]*Client)
			}
			h.tables[client.tableID][client.id] = client
			size := len(h.tables[client.tableID])
			h.mu.Unlock()

			client.room.Join()
			log.Printf("[WS] Client %s joined table %s (viewers=%d)", client.id, client.tableID, size)

			h.SendToClient(client.id, game.Message{Type: game.MsgState, Data: client.room.Snapshot()})

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				h.removeLocked(client)
				close(client.send)
			}
			h.mu.Unlock()

			client.room.Leave()
			log.Printf("[WS] Client %s left table %s", client.id, client.tableID)
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client.id)
	if room, exists := h.tables[client.tableID]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.tables, client.tableID)
		}
	}
}

// BroadcastToTable sends a message to every viewer of a table
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message for table %s: %v", tableID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.tables[tableID] {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full
			log.Printf("[WS] Send buffer full for client %s on table %s, dropping message", client.id, tableID)
		}
	}
}

// SendToClient sends a message to a single connection
func (h *Hub) SendToClient(clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[clientID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] SendToClient dropped message for client %s (buffer full)", clientID)
		}
	}
}

// CloseTable disconnects every viewer of a table.
func (h *Hub) CloseTable(tableID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.tables[tableID] {
		h.removeLocked(client)
		close(client.send)
	}
}

// TableClientCount returns the number of connections watching a table.
func (h *Hub) TableClientCount(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: table closed or client unregistered.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "table closed"))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	TableHub.SendToClient(c.id, game.Message{Type: game.MsgError, Data: map[string]string{"message": message}})
}
