package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; chat requests are small
	maxMessageSize = 64 * 1024
)

// InboundHandler processes a frame a client sent to the server.
type InboundHandler func(c *Client, data []byte)

// Client represents a single websocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	inbound InboundHandler
}

// NewClient creates a client and registers it with the hub.
// The handler receives frames the client sends; nil ignores them.
func NewClient(hub *Hub, conn *websocket.Conn, handler InboundHandler) *Client {
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		inbound: handler,
	}
	hub.register <- client
	return client
}

// Send queues a message to this client only.
func (c *Client) Send(data []byte) {
	defer func() {
		// The hub may close the send channel concurrently.
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
	}
}

// Run starts the read and write pumps. Blocks until the connection
// closes, which is what a fiber websocket handler needs.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump reads frames from the connection, dispatching them to the
// inbound handler, until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.inbound != nil {
			c.inbound(c, data)
		}
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
