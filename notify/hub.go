package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// DefaultWriteWait bounds one websocket write
	DefaultWriteWait = 10 * time.Second
	sendBuffer       = 16
)

type client struct {
	conn *websocket.Conn
	send chan interface{}
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan interface{}, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks. It reports false when the connection is closed or
// its queue is full because the peer stopped reading.
func (c *client) enqueue(v interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump is the only writer on the connection
func (c *client) writePump(userID string, writeWait time.Duration) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case v := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(v); err != nil {
				zap.S().Warnw("failed to push notification", "userId", userID, "error", err)
				return
			}
		}
	}
}

// Hub keeps the live websocket connections of signed in users
type Hub struct {
	// WriteWait bounds each write to a peer
	WriteWait time.Duration

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[string]map[*client]struct{}
}

// NewHub returns an empty Hub accepting any origin
func NewHub() *Hub {
	return &Hub{
		WriteWait: DefaultWriteWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the request and holds the connection for userID until the
// peer goes away. Incoming messages are discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "userId", userID, "error", err)
		return
	}
	c := newClient(conn)
	h.add(userID, c)
	go c.writePump(userID, h.writeWait())
	zap.S().Infow("user connected to notifications", "userId", userID)

	defer func() {
		h.remove(userID, c)
		c.close()
		zap.S().Infow("user disconnected from notifications", "userId", userID)
	}()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Send queues an event on every connection of userID without waiting for
// delivery. A connection whose queue is full is dropped.
func (h *Hub) Send(userID, event string, data interface{}) {
	h.mu.Lock()
	conns := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}
	for _, c := range conns {
		if !c.enqueue(msg) {
			zap.S().Warnw("dropping slow notification connection", "userId", userID, "event", event)
			h.remove(userID, c)
			c.close()
		}
	}
}

func (h *Hub) writeWait() time.Duration {
	if h.WriteWait <= 0 {
		return DefaultWriteWait
	}
	return h.WriteWait
}

// CaseChanged pushes the event to both parties of the case
func (h *Hub) CaseChanged(_ context.Context, e Event) {
	if e.Case == nil {
		return
	}
	for _, id := range []string{e.Case.CitizenID, e.Case.LawyerID} {
		h.Send(id, string(e.Type), e)
	}
}

// Connected returns how many live connections userID has
func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

func (h *Hub) add(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
