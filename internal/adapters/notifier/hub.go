package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Amund211/timba/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Messages buffered per connection before it is considered too slow and dropped.
	sendBufferSize = 64
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out player events to the websocket connections watching that player
type Hub[E any] struct {
	encode   func(E) ([]byte, error)
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

func NewHub[E any](encode func(E) ([]byte, error), checkOrigin func(r *http.Request) bool) *Hub[E] {
	return &Hub[E]{
		encode: encode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish sends the events, in order, to every connection watching playerID.
// Connections that can't keep up are closed.
func (h *Hub[E]) Publish(ctx context.Context, playerID string, events ...E) {
	if len(events) == 0 {
		return
	}

	payloads := make([][]byte, 0, len(events))
	for _, event := range events {
		payload, err := h.encode(event)
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Failed to encode event", "error", err.Error())
			continue
		}
		payloads = append(payloads, payload)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[playerID] {
		for _, payload := range payloads {
			select {
			case c.send <- payload:
			default:
				logging.FromContext(ctx).WarnContext(ctx, "Dropping slow websocket client")
				h.removeLocked(playerID, c)
			}
			if _, ok := h.clients[playerID][c]; !ok {
				break
			}
		}
	}
}

// Subscribers returns the number of open connections for playerID
func (h *Hub[E]) Subscribers(playerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[playerID])
}

func (h *Hub[E]) add(playerID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[playerID] == nil {
		h.clients[playerID] = make(map[*client]struct{})
	}
	h.clients[playerID][c] = struct{}{}
}

func (h *Hub[E]) remove(playerID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(playerID, c)
}

func (h *Hub[E]) removeLocked(playerID string, c *client) {
	clients, ok := h.clients[playerID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, playerID)
	}
}

// Serve upgrades the request to a websocket and streams playerID's events until the peer goes away.
// initial is written before any published event.
func (h *Hub[E]) Serve(w http.ResponseWriter, r *http.Request, playerID string, initial ...E) error {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	for _, event := range initial {
		payload, err := h.encode(event)
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to encode initial event: %w", err)
		}
		c.send <- payload
	}

	h.add(playerID, c)
	logger.InfoContext(ctx, "Websocket client connected", slog.Int("subscribers", h.Subscribers(playerID)))

	go h.writePump(c)
	h.readPump(playerID, c)

	logger.InfoContext(ctx, "Websocket client disconnected")
	return nil
}

// readPump discards client messages and detects closed connections
func (h *Hub[E]) readPump(playerID string, c *client) {
	defer func() {
		h.remove(playerID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub[E]) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
