package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/middleware"
	"tripbuddy/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the middleware layer.
	},
}

// WSHandler upgrades clients onto the live notification channel.
type WSHandler struct {
	hub       *ws.Hub
	jwtSecret string
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: jwtSecret}
}

// Connect handles GET /v1/ws?token=...
// Browsers cannot set an Authorization header on websocket upgrades, so the
// JWT arrives as a query parameter.
func (h *WSHandler) Connect(c *gin.Context) {
	userID, err := middleware.ParseToken(h.jwtSecret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.hub.Register(userID, conn)

	// Drain client frames so pings are answered; the feed is one-way.
	go func() {
		defer func() {
			h.hub.Unregister(userID, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
