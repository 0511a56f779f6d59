package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one WebSocket subscriber.
type client struct {
	hub       *Hub
	conn      *websocket.Conn
	sendMsg   chan interface{}
	id        string
	closeOnce sync.Once
}

// readPump drains incoming frames so pongs and close frames are processed.
// Subscribers are write-only; any payload they send is discarded.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				if c.hub.logger != nil {
					c.hub.logger.Warnw("WebSocket read error",
						"error", err.Error(),
						"client_id", c.id,
					)
				}
			}
			return
		}
	}
}

// writePump pushes queued notifications and keepalive pings to the peer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.hub.done:
			return
		case msg, ok := <-c.sendMsg:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				if c.hub.logger != nil {
					c.hub.logger.Debugw("Message write error",
						"error", err.Error(),
						"client_id", c.id,
					)
				}
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

// close safely closes the send channel; sync.Once prevents double-close
// panics when unregister races with hub shutdown.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.sendMsg)
	})
}
