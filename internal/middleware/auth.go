package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiard/internal/auth"
	"github.com/playmatatu/billiard/internal/config"
)

// RequireTableToken accepts the table token from "Authorization: Bearer" or
// the token query parameter and checks it was issued for the :id table.
func RequireTableToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "table token required"})
			return
		}

		tableID := c.Param("id")
		if err := auth.VerifyTableToken(cfg.JWTSecret, token, tableID); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid table token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("table_id", tableID)
		c.Next()
	}
}
