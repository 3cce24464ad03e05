package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/billiard/internal/game"
	tableredis "github.com/playmatatu/billiard/internal/redis"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// tableEvent is the pub/sub payload published by the table manager.
type tableEvent struct {
	Type    string                 `json:"type"`
	TableID string                 `json:"table_id"`
	Data    map[string]interface{} `json:"data"`
}

// StartTableEventSubscriber relays table_events from every instance to local viewers
func StartTableEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; table event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, tableredis.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", tableredis.EventsChannel)
		for msg := range ch {
			handleTableEvent([]byte(msg.Payload))
		}
		log.Printf("[WS] %s subscriber stopped", tableredis.EventsChannel)
	}()
}

func handleTableEvent(payload []byte) {
	var ev tableEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}
	if ev.TableID == "" {
		log.Printf("[WS] event %s without table_id ignored", ev.Type)
		return
	}

	switch ev.Type {
	case game.MsgRackWon:
		log.Printf("[WS] broadcasting rack_won to table %s (viewers=%d)", ev.TableID, TableHub.TableClientCount(ev.TableID))
		TableHub.BroadcastToTable(ev.TableID, game.Message{Type: ev.Type, Data: ev.Data})

	case game.MsgTableClosed:
		TableHub.BroadcastToTable(ev.TableID, game.Message{Type: ev.Type, Data: ev.Data})
		TableHub.CloseTable(ev.TableID)

	default:
		log.Printf("[WS] unknown event type: %s", ev.Type)
	}
}
