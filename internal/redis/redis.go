package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Keys and channels shared by the room manager, idle worker and websocket subscriber.
const (
	IdleSetKey    = "table_idle"   // sorted set: table ID scored by idle deadline (unix seconds)
	EventsChannel = "table_events" // pub/sub channel for cross-instance table events
)

// TableStateKey is where a table's latest snapshot is cached.
func TableStateKey(tableID string) string {
	return "table:" + tableID + ":state"
}

// Connect establishes a connection to Redis
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
