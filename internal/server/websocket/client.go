package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one browser connection bound to a cart session.
type Client struct {
	id      string
	session string
	hub     *Hub
	conn    *websocket.Conn
	send    chan Message
}

// NewClient wraps conn for session.
func NewClient(id, session string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{id: id, session: session, hub: hub, conn: conn, send: make(chan Message, sendBuffer)}
}

// Greet queues msg for this client only. Call it before Register.
func (c *Client) Greet(msg Message) {
	c.enqueue(msg)
}

func (c *Client) enqueue(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump consumes pongs and close frames until the peer goes away, then
// unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.hub.logger.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
		}
		return
	}
}

// WritePump writes queued messages as JSON text frames and pings the peer.
// It exits when the hub closes the queue or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, open := <-c.send:
			if !open {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			b, err := json.Marshal(msg)
			if err != nil {
				c.hub.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode WebSocket message")
				continue
			}
			kind, data = websocket.TextMessage, b
		case <-ping.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}
