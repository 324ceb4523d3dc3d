// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"lumen-service/internal/domain/notification"
	"lumen-service/internal/pkg/jwt"
	"lumen-service/internal/pkg/session"

	"go.uber.org/zap"
)

// Hub tracks connected clients per user and pushes notification events to
// them. One user can hold several connections (multiple devices/tabs).
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	tokens   *jwt.Manager
	sessions *session.Manager
	logger   *zap.Logger
}

// Event is the wire format for pushed messages.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`

	userID int64
}

func NewHub(tokens *jwt.Manager, sessions *session.Manager, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
		tokens:     tokens,
		sessions:   sessions,
		logger:     logger,
	}
}

// Authenticate validates the bearer token presented on the upgrade request
// and confirms its session is still live.
func (h *Hub) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := h.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if _, err := h.sessions.Get(ctx, claims.UserID, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

// PushNotification sends a persisted notification to every connection the
// user holds. Non-blocking: if the hub's queue is full the event is dropped,
// the notification is still in the database.
func (h *Hub) PushNotification(userID int64, n *notification.Notification) {
	select {
	case h.broadcast <- &Event{Type: "notification", Data: n, userID: userID}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.Int64("user_id", userID))
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	h.logger.Debug("websocket client connected", zap.Int64("user_id", c.userID))
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			c.close()
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

func (h *Hub) deliver(ev *Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal websocket event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.userID] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the event for this connection.
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for c := range conns {
			c.close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
