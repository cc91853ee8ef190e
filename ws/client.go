package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/tcriess/lightspeed-rooms/globals"
)

// Client is a middleman between the websocket connection and the hub. The feed is read-only: anything the peer
// sends is discarded.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	roomID uint

	// Buffered channel of outbound messages.
	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, roomID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		roomID: roomID,
		Send:   make(chan []byte, sendChannelSize),
	}
}

// Attach registers c with the hub. It returns false if the hub is no longer running.
func (c *Client) Attach() bool {
	select {
	case c.hub.Register <- c:
		return true
	case <-c.hub.done:
		return false
	}
}

// ReadLoop reads from the websocket connection until it fails, then unregisters the client.
//
// The application runs ReadLoop in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadLoop() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				globals.AppLogger.Info("ws closed unexpected", "room", c.roomID, "error", err)
			}
			return
		}
	}
}

// WriteLoop pumps messages from the hub to the websocket connection.
//
// A goroutine running WriteLoop is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				globals.AppLogger.Debug("could not write to ws connection, exiting write loop", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				globals.AppLogger.Debug("could not send ping message, exiting write loop")
				return
			}
		}
	}
}

// Serve attaches conn to the feed of room roomID and blocks until the connection is done.
func Serve(hub *Hub, conn *websocket.Conn, roomID uint) {
	c := NewClient(hub, conn, roomID)
	if !c.Attach() {
		_ = conn.Close()
		return
	}
	go c.WriteLoop()
	c.ReadLoop()
}
