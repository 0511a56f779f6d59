// Package notify fans mutation lifecycle notifications out to subscribers.
//
// The Hub pushes to WebSocket clients; ChannelNotifier feeds an in-process
// channel. Both satisfy optimistic.Notifier. Delivery is best-effort: a
// subscriber that cannot keep up loses messages rather than stalling the
// mutation path.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/talentbase/talentbase/optimistic"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Subscribers drop messages past this backlog
	sendBuffer = 64
)

// Hub tracks connected WebSocket clients and broadcasts notifications to all
// of them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
	done     chan struct{}
	once     sync.Once
}

// NewHub builds an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Notify implements optimistic.Notifier.
func (h *Hub) Notify(n optimistic.Notification) {
	h.Broadcast(n)
}

// Broadcast sends a message to all connected clients. Returns the number of
// clients that accepted the message (channel not full).
func (h *Hub) Broadcast(msg interface{}) int {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		select {
		case c.sendMsg <- msg:
			sent++
		default:
			// Channel full - skip
		}
	}
	return sent
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warnw("WebSocket upgrade failed", "error", err.Error())
		}
		return
	}

	c := &client{
		hub:     h,
		conn:    conn,
		sendMsg: make(chan interface{}, sendBuffer),
		id:      uuid.NewString(),
	}
	h.register(c)

	if h.logger != nil {
		h.logger.Debugw("Client connected", "client_id", c.id)
	}

	go c.writePump()
	go c.readPump()
}

// Close disconnects all clients and stops accepting broadcasts.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)

		h.mu.Lock()
		clients := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.clients = make(map[*client]struct{})
		h.mu.Unlock()

		for _, c := range clients {
			c.close()
		}
	})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		c.close()
		if h.logger != nil {
			h.logger.Debugw("Client disconnected", "client_id", c.id)
		}
	}
}

// ChannelNotifier delivers notifications to an in-process channel, dropping
// when the receiver lags.
type ChannelNotifier struct {
	ch chan optimistic.Notification
}

// NewChannelNotifier builds a notifier with the given backlog.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = sendBuffer
	}
	return &ChannelNotifier{ch: make(chan optimistic.Notification, buffer)}
}

// Notify implements optimistic.Notifier.
func (n *ChannelNotifier) Notify(notification optimistic.Notification) {
	select {
	case n.ch <- notification:
	default:
		// Receiver lagging - drop
	}
}

// C returns the receive side.
func (n *ChannelNotifier) C() <-chan optimistic.Notification {
	return n.ch
}
