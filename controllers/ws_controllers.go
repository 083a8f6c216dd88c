package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/kopiaku-backend/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// WSHandler -> endpoint WebSocket untuk dashboard inventori real-time
func WSHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "admin" && role != "staff" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	realtime.RegisterClient(ws, role)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	realtime.UnregisterClient(ws)
}
