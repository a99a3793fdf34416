package handlers

import (
	"net/http"
	"os"

	"taskboard/internal/logger"
	"taskboard/internal/session"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and hands it to the command loop. The
// connection starts unauthenticated; identity is established in-band by
// the login command.
func (h *Handler) WS(router *ws.Router, registry *session.Registry) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(conn, router, registry)
		go client.Run()
	}
}
