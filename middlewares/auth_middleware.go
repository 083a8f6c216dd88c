package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

// AuthMiddleware memvalidasi Bearer token dan menaruh user_id + role
// di context request.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token tidak ditemukan"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(token, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(token, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user ID in token"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminOnly membatasi endpoint mutasi inventori untuk admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			utils.RespondError(c, http.StatusForbidden, errors.New("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
