package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/billiard/internal/config"
	tableredis "github.com/playmatatu/billiard/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that closes tables nobody is
// watching or playing. Deadlines live in a Redis sorted set when Redis is
// configured; otherwise live tables are scanned directly.
func StartIdleWorker(ctx context.Context, tm *TableManager, cfg *config.Config) {
	if tm == nil || cfg == nil {
		log.Println("[IDLE] Manager or config missing; idle worker not started")
		return
	}

	poll := time.Duration(cfg.IdleWorkerPollSeconds) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}

	log.Printf("[IDLE] Idle worker started (poll=%s, timeout=%s, redis=%v)", poll, tm.idleTimeout(), tm.rdb != nil)
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				if n := tm.reapIdleTables(ctx, now); n > 0 {
					log.Printf("[IDLE] Closed %d idle tables", n)
				}
			}
		}
	}()
}

// reapIdleTables closes tables idle since before now minus the idle timeout
// and returns how many it closed.
func (tm *TableManager) reapIdleTables(ctx context.Context, now time.Time) int {
	if tm.rdb != nil {
		return tm.reapFromRedis(ctx, now)
	}

	tm.mu.RLock()
	var idle []string
	for id, room := range tm.rooms {
		if tm.isIdle(room, now) {
			idle = append(idle, id)
		}
	}
	tm.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if err := tm.CloseTable(id, "idle"); err == nil {
			closed++
		}
	}
	return closed
}

func (tm *TableManager) reapFromRedis(ctx context.Context, now time.Time) int {
	members, err := tm.rdb.ZRangeByScore(ctx, tableredis.IdleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle tables: %v", err)
		return 0
	}

	closed := 0
	for _, id := range members {
		room, err := tm.GetTable(id)
		if err != nil {
			// owned by another instance; leave it for that instance's worker
			continue
		}

		// Attempt to remove (race-safe)
		if removed, _ := tm.rdb.ZRem(ctx, tableredis.IdleSetKey, id).Result(); removed == 0 {
			continue
		}

		if !tm.isIdle(room, now) {
			tm.scheduleIdleCheck(id, room.LastActivity())
			continue
		}

		if err := tm.CloseTable(id, "idle"); err == nil {
			closed++
			tm.publishEvent(id, MsgTableClosed, map[string]interface{}{"reason": "idle"})
		}
	}
	return closed
}

func (tm *TableManager) isIdle(room *Room, now time.Time) bool {
	return room.Viewers() == 0 && now.Sub(room.LastActivity()) >= tm.idleTimeout()
}
