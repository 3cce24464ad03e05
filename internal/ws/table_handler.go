package ws

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiard/internal/game"
)

// PointerData is the pointer state a client samples each frame, in table coordinates.
type PointerData struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Down     bool    `json:"down"`
	Pressed  bool    `json:"pressed"`
	Released bool    `json:"released"`
}

// TableHub is the single hub for all tables.
var TableHub *Hub

func init() {
	TableHub = NewHub()
	go TableHub.run()
}

// HandleTableWebSocket upgrades a table viewer. The table token from
// POST /tables is required in the token query parameter.
func HandleTableWebSocket(c *gin.Context) {
	tableID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	room, err := game.Manager.GetTable(tableID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	if err := game.Manager.VerifyToken(tableID, token); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid table token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:    conn,
		id:      uuid.NewString(),
		tableID: tableID,
		room:    room,
		send:    make(chan []byte, sendBufferSize),
	}

	TableHub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump reads pointer updates and state requests from a viewer.
func (c *Client) readPump() {
	defer func() {
		TableHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one client message.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "pointer":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pointer data")
			return
		}
		if !finite(data.X) || !finite(data.Y) {
			c.sendError("Pointer coordinates must be finite")
			return
		}
		c.room.SubmitInput(game.PointerInput{
			Position:     game.NewVec2(data.X, data.Y),
			Down:         data.Down,
			JustPressed:  data.Pressed,
			JustReleased: data.Released,
		})

	case "get_state":
		c.room.Touch()
		TableHub.SendToClient(c.id, game.Message{Type: game.MsgState, Data: c.room.Snapshot()})

	default:
		c.sendError("Unknown message type")
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
