package game

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/billiard/internal/models"
	tableredis "github.com/playmatatu/billiard/internal/redis"
	"github.com/redis/go-redis/v9"
)

const storeTimeout = 3 * time.Second

// insertTableRecord stores a newly created table.
func (tm *TableManager) insertTableRecord(id string, seed int64) {
	if tm.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if _, err := tm.db.ExecContext(ctx, `INSERT INTO billiard_tables (id, seed, created_at) VALUES ($1, $2, NOW())`, id, seed); err != nil {
		log.Printf("[DB] Failed to insert table %s: %v", id, err)
	}
}

// markTableClosed stamps a table row with its close time and reason.
func (tm *TableManager) markTableClosed(id, reason string) {
	if tm.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if _, err := tm.db.ExecContext(ctx, `UPDATE billiard_tables SET closed_at = NOW(), close_reason = $1 WHERE id = $2`, reason, id); err != nil {
		log.Printf("[DB] Failed to mark table %s closed: %v", id, err)
	}
}

// recordShot persists one fired shot.
func (tm *TableManager) recordShot(shot models.Shot) {
	if tm.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err := tm.db.NamedExecContext(ctx,
		`INSERT INTO shots (table_id, rack_number, shot_number, cue_x, cue_y, velocity_x, velocity_y, speed, created_at)
		 VALUES (:table_id, :rack_number, :shot_number, :cue_x, :cue_y, :velocity_x, :velocity_y, :speed, :created_at)`,
		shot,
	)
	if err != nil {
		log.Printf("[DB] Failed to record shot %d for table %s: %v", shot.ShotNumber, shot.TableID, err)
	}
}

// recordRackResult persists a cleared rack.
func (tm *TableManager) recordRackResult(result models.RackResult) {
	if tm.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err := tm.db.NamedExecContext(ctx,
		`INSERT INTO rack_results (table_id, rack_number, shots, duration_ms, completed_at)
		 VALUES (:table_id, :rack_number, :shots, :duration_ms, :completed_at)`,
		result,
	)
	if err != nil {
		log.Printf("[DB] Failed to record rack %d for table %s: %v", result.RackNumber, result.TableID, err)
	}
}

// ListShots returns a table's shots, oldest first. Without a database only
// the recent shots of a live table are available.
func (tm *TableManager) ListShots(ctx context.Context, tableID string, limit int) ([]models.Shot, error) {
	if tm.db == nil {
		room, err := tm.GetTable(tableID)
		if err != nil {
			return nil, err
		}
		shots := room.RecentShots()
		if limit > 0 && len(shots) > limit {
			shots = shots[len(shots)-limit:]
		}
		return shots, nil
	}

	var exists bool
	if err := tm.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM billiard_tables WHERE id = $1)`, tableID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRoomNotFound
	}

	if limit <= 0 {
		limit = maxRecentShots
	}
	shots := []models.Shot{}
	err := tm.db.SelectContext(ctx, &shots,
		`SELECT * FROM (
			SELECT id, table_id, rack_number, shot_number, cue_x, cue_y, velocity_x, velocity_y, speed, created_at
			FROM shots WHERE table_id = $1 ORDER BY id DESC LIMIT $2
		) recent ORDER BY id ASC`,
		tableID, limit,
	)
	return shots, err
}

// saveTableToRedis caches the latest snapshot so other instances and
// dashboards can read table state without joining the room.
func (tm *TableManager) saveTableToRedis(tableID string, snap Snapshot) {
	if tm.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[ROOM] Failed to marshal snapshot for table %s: %v", tableID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := tm.rdb.SetEx(ctx, tableredis.TableStateKey(tableID), data, time.Hour).Err(); err != nil {
		log.Printf("[ROOM] Failed to save table %s to redis: %v", tableID, err)
	}
}

// LoadCachedSnapshot reads a snapshot cached by any instance.
func (tm *TableManager) LoadCachedSnapshot(ctx context.Context, tableID string) (*Snapshot, error) {
	if tm.rdb == nil {
		return nil, ErrRoomNotFound
	}
	data, err := tm.rdb.Get(ctx, tableredis.TableStateKey(tableID)).Bytes()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (tm *TableManager) forgetTableInRedis(tableID string) {
	if tm.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := tm.rdb.Del(ctx, tableredis.TableStateKey(tableID)).Err(); err != nil {
		log.Printf("[ROOM] Failed to delete cached state for table %s: %v", tableID, err)
	}
	if err := tm.rdb.ZRem(ctx, tableredis.IdleSetKey, tableID).Err(); err != nil {
		log.Printf("[IDLE] Failed to remove table %s from idle set: %v", tableID, err)
	}
}

// scheduleIdleCheck (re)arms the idle deadline for a table.
func (tm *TableManager) scheduleIdleCheck(tableID string, lastActivity time.Time) {
	if tm.rdb == nil {
		return
	}
	deadline := lastActivity.Add(tm.idleTimeout()).Unix()
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := tm.rdb.ZAdd(ctx, tableredis.IdleSetKey, redis.Z{Score: float64(deadline), Member: tableID}).Err(); err != nil {
		log.Printf("[IDLE] Failed to schedule idle check for table %s: %v", tableID, err)
	}
}

// publishEvent fans an event out to every instance through Redis pub/sub.
// Without Redis it goes straight to local viewers.
func (tm *TableManager) publishEvent(tableID, eventType string, data map[string]interface{}) {
	if tm.rdb == nil {
		tm.broadcast(tableID, Message{Type: eventType, Data: data})
		return
	}

	payload := map[string]interface{}{"type": eventType, "table_id": tableID, "data": data}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ROOM] Failed to marshal %s event for table %s: %v", eventType, tableID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if n, err := tm.rdb.Publish(ctx, tableredis.EventsChannel, b).Result(); err != nil {
		log.Printf("[ROOM] publish %s failed for table %s: %v", eventType, tableID, err)
	} else {
		log.Printf("[ROOM] published %s: table=%s subscribers=%d", eventType, tableID, n)
	}
}
