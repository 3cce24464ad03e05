package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
	"github.com/playmatatu/billiard/internal/game"
	"github.com/playmatatu/billiard/internal/models"
)

// CreateTable racks a new table and returns its ID, token and first snapshot
func CreateTable(c *gin.Context) {
	created, err := game.Manager.CreateTable()
	switch {
	case errors.Is(err, game.ErrTooManyRooms):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "table limit reached, try again later"})
		return
	case err != nil:
		log.Printf("[ROOM] CreateTable failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create table"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         created.Room.ID,
		"token":      created.Token,
		"expires_at": created.ExpiresAt,
		"ws_url":     "/api/v1/tables/" + created.Room.ID + "/ws?token=" + created.Token,
		"snapshot":   created.Room.Snapshot(),
	})
}

// ListTables lists live tables on this instance
func ListTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": game.Manager.ListTables()})
}

// GetTable returns a table's latest snapshot. Tables hosted by another
// instance are served from the Redis cache.
func GetTable(c *gin.Context) {
	id := c.Param("id")

	if room, err := game.Manager.GetTable(id); err == nil {
		c.JSON(http.StatusOK, gin.H{
			"id":       room.ID,
			"live":     true,
			"viewers":  room.Viewers(),
			"snapshot": room.Snapshot(),
		})
		return
	}

	snap, err := game.Manager.LoadCachedSnapshot(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "live": false, "snapshot": snap})
}

// CloseTable stops a table. Requires the table's token.
func CloseTable(c *gin.Context) {
	id := c.Param("id")
	if err := game.Manager.CloseTable(id, "closed by owner"); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListShots returns a table's shot history as JSON
func ListShots(c *gin.Context) {
	shots, ok := loadShots(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": c.Param("id"), "shots": shots})
}

// ExportShotsCSV returns a table's shot history as CSV
func ExportShotsCSV(c *gin.Context) {
	shots, ok := loadShots(c)
	if !ok {
		return
	}

	data, err := gocsv.MarshalBytes(&shots)
	if err != nil {
		log.Printf("[ROOM] CSV export failed for table %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shots-`+c.Param("id")+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func loadShots(c *gin.Context) ([]models.Shot, bool) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return nil, false
		}
		limit = n
	}

	shots, err := game.Manager.ListShots(c.Request.Context(), c.Param("id"), limit)
	if errors.Is(err, game.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return nil, false
	}
	if err != nil {
		log.Printf("[DB] ListShots failed for table %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load shots"})
		return nil, false
	}
	return shots, true
}
