package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/game"
)

// GetConfig returns the table geometry and physics constants a client needs to render
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	table := game.NewTable(cfg.Physics)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"physics":      cfg.Physics,
			"table":        table,
			"tick_rate_hz": cfg.TickRateHz,
			"max_tables":   cfg.MaxRooms,
		})
	}
}
