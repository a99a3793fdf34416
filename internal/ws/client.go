package ws

import (
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/session"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client owns one transport connection. Inbound commands are handled one
// at a time on the read loop, so a single client's commands are never
// reordered. login is written only from that loop.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	router   *Router
	registry *session.Registry

	login string
}

func NewClient(conn *websocket.Conn, router *Router, registry *session.Registry) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		router:   router,
		registry: registry,
	}
}

func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// Push enqueues msg for delivery. Non-blocking: a full buffer or a dying
// connection drops the message instead of stalling the sender.
func (c *Client) Push(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read error", "error", err)
			}
			return
		}
		c.router.Handle(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// disconnect tears the session down when the connection goes away. A
// reply for a command still in flight is simply dropped by Push.
func (c *Client) disconnect() {
	if c.login != "" {
		c.registry.Unregister(c.login, c)
		c.login = ""
	}
	_ = c.conn.Close()
}
