package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiard/internal/api/handlers"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(db, rdb))
		v1.GET("/config", handlers.GetConfig(cfg))

		// Table endpoints
		tables := v1.Group("/tables")
		{
			tables.GET("", handlers.ListTables)
			tables.POST("", handlers.CreateTable)
			tables.GET("/:id", handlers.GetTable)
			tables.DELETE("/:id", middleware.RequireTableToken(cfg), handlers.CloseTable)
			tables.GET("/:id/shots", handlers.ListShots)
			tables.GET("/:id/shots.csv", handlers.ExportShotsCSV)
			tables.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleTableWebSocket())
		}
	}
}
