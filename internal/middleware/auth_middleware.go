// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"lumen-service/internal/pkg/jwt"
	"lumen-service/internal/pkg/response"
	"lumen-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokens   *jwt.Manager
	sessions *session.Manager
}

func NewAuthMiddleware(tokens *jwt.Manager, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
	}
}

// Auth validates the bearer token and confirms its session is still live.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		if _, err := m.sessions.Get(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.Unauthorized(c, "session expired or revoked")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireRole restricts the route to the given role. MUST run after Auth().
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get("role")
		if !exists {
			response.Forbidden(c, "authentication required")
			return
		}

		if current != role {
			response.Forbidden(c, "insufficient permissions")
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	// Websocket upgrades cannot set headers from the browser.
	return c.Query("token")
}
