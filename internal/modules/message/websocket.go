package message

import (
	"net/http"
	"net/url"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/jwt"
	"reservehub/internal/pkg/logger"
	"reservehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades GET /ws/messages?token=JWT. Browsers cannot set headers
// on a websocket handshake, hence the query parameter.
type WSHandler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

// NewWSHandler accepts any origin when allowedOrigins is empty.
func NewWSHandler(hub *Hub, jwtService *jwt.Service, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowed) == 0 || origin == "" {
					return true
				}
				if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
					return true
				}
				return allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/ws/messages", h.Serve)
}

func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	staff := claims.Role == string(domain.RoleAdmin)
	logger.InfoContext(c.Request.Context(), "websocket connected", "user_id", claims.UserID, "staff", staff)
	h.hub.ServeWS(conn, claims.UserID, staff)
	logger.InfoContext(c.Request.Context(), "websocket disconnected", "user_id", claims.UserID)
}
