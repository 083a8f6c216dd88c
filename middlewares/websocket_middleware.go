package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

// WebSocketAuthMiddleware: browser tidak bisa set header Authorization di
// handshake WebSocket, jadi token dibaca dari query string.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
