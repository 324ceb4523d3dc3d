// internal/handlers/websocket/websocket_handler.go
package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"lumen-service/internal/pkg/response"
	ws "lumen-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler builds the upgrade handler. allowedOrigins lists the
// origins permitted to open a connection; an empty list restricts upgrades
// to same-host requests.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(allowedOrigins, r)
			},
		},
		logger: logger,
	}
}

// originAllowed reports whether the request's Origin header is acceptable.
// Requests without an Origin header come from non-browser clients and are
// allowed; the token check still gates them.
func originAllowed(allowed []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// HandleConnection authenticates and upgrades the connection, then hands it
// to the hub. Browsers cannot set headers on upgrade requests, so the token
// arrives as a query parameter.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "missing authentication token")
		return
	}

	claims, err := h.hub.Authenticate(c.Request.Context(), token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.Int64("user_id", claims.UserID), zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, h.logger)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
