package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiard/internal/ws"
)

// HandleTableWebSocket streams a table and accepts pointer input
func HandleTableWebSocket() gin.HandlerFunc {
	return ws.HandleTableWebSocket
}
