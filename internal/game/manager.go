package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiard/internal/auth"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrRoomNotFound = errors.New("table not found")
	ErrTooManyRooms = errors.New("too many active tables")
	ErrOpenTable    = errors.New("table borders do not enclose the playing area")
)

// Broadcaster delivers messages to the viewers of a table.
type Broadcaster interface {
	BroadcastToTable(tableID string, message interface{})
	CloseTable(tableID string)
}

// TableManager owns every hosted table
type TableManager struct {
	rooms       map[string]*Room
	db          *sqlx.DB      // optional shot/rack history
	rdb         *redis.Client // optional snapshots, idle set and pub/sub
	config      *config.Config
	broadcaster Broadcaster
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
}

// CreatedTable is what a caller needs to start playing.
type CreatedTable struct {
	Room      *Room
	Token     string
	ExpiresAt time.Time
}

// TableSummary describes a live table for listings.
type TableSummary struct {
	ID           string    `json:"id"`
	Phase        Phase     `json:"phase"`
	Rack         int       `json:"rack"`
	Remaining    int       `json:"remaining"`
	Viewers      int       `json:"viewers"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

var (
	// Global table manager instance
	Manager *TableManager
)

// InitializeManager sets up the global table manager and its idle worker.
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewTableManager(ctx, db, rdb, cfg)
	StartIdleWorker(ctx, Manager, cfg)
}

// NewTableManager creates a table manager. db and rdb may be nil.
func NewTableManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *TableManager {
	ctx, cancel := context.WithCancel(ctx)
	return &TableManager{
		rooms:  make(map[string]*Room),
		db:     db,
		rdb:    rdb,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetBroadcaster wires the websocket hub in after both sides exist.
func (tm *TableManager) SetBroadcaster(b Broadcaster) {
	tm.mu.Lock()
	tm.broadcaster = b
	tm.mu.Unlock()
}

func (tm *TableManager) broadcast(tableID string, message interface{}) {
	tm.mu.RLock()
	b := tm.broadcaster
	tm.mu.RUnlock()
	if b != nil {
		b.BroadcastToTable(tableID, message)
	}
}

// Config returns the application config the manager runs with.
func (tm *TableManager) Config() *config.Config {
	return tm.config
}

// CreateTable racks a new table, starts its room and issues a table token.
func (tm *TableManager) CreateTable() (*CreatedTable, error) {
	session := NewSession(tm.config.Physics)
	if !session.Table().Closed() {
		return nil, ErrOpenTable
	}

	id := uuid.NewString()
	token, exp, err := auth.IssueTableToken(tm.config.JWTSecret, id, tm.tokenTTL())
	if err != nil {
		return nil, fmt.Errorf("issuing table token: %w", err)
	}

	tm.mu.Lock()
	if tm.config.MaxRooms > 0 && len(tm.rooms) >= tm.config.MaxRooms {
		tm.mu.Unlock()
		return nil, ErrTooManyRooms
	}
	room := newRoom(id, session, tm)
	tm.rooms[id] = room
	count := len(tm.rooms)
	tm.mu.Unlock()

	go room.run(tm.ctx, tm.config.TickRateHz, time.Duration(tm.config.MaxDeltaMillis)*time.Millisecond, tm.config.SnapshotEveryTicks)

	tm.insertTableRecord(id, room.Seed)
	tm.scheduleIdleCheck(id, room.CreatedAt)
	tm.saveTableToRedis(id, room.Snapshot())

	log.Printf("[ROOM] Table created: %s (seed=%d, active=%d)", id, room.Seed, count)
	return &CreatedTable{Room: room, Token: token, ExpiresAt: exp}, nil
}

// GetTable retrieves a live table by ID
func (tm *TableManager) GetTable(id string) (*Room, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	room, ok := tm.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// VerifyToken checks a table token against a table ID.
func (tm *TableManager) VerifyToken(tableID, token string) error {
	return auth.VerifyTableToken(tm.config.JWTSecret, token, tableID)
}

// CloseTable stops a table, disconnects its viewers and forgets it.
func (tm *TableManager) CloseTable(id, reason string) error {
	tm.mu.Lock()
	room, ok := tm.rooms[id]
	if ok {
		delete(tm.rooms, id)
	}
	b := tm.broadcaster
	tm.mu.Unlock()

	if !ok {
		return ErrRoomNotFound
	}

	room.stop()
	if b != nil {
		b.BroadcastToTable(id, Message{Type: MsgTableClosed, Data: map[string]string{"table_id": id, "reason": reason}})
		b.CloseTable(id)
	}

	tm.markTableClosed(id, reason)
	tm.forgetTableInRedis(id)

	log.Printf("[ROOM] Table closed: %s (reason=%s)", id, reason)
	return nil
}

// ActiveTableCount returns the number of live tables
func (tm *TableManager) ActiveTableCount() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.rooms)
}

// ListTables summarises every live table, newest first.
func (tm *TableManager) ListTables() []TableSummary {
	tm.mu.RLock()
	rooms := make([]*Room, 0, len(tm.rooms))
	for _, r := range tm.rooms {
		rooms = append(rooms, r)
	}
	tm.mu.RUnlock()

	out := make([]TableSummary, 0, len(rooms))
	for _, r := range rooms {
		snap := r.Snapshot()
		out = append(out, TableSummary{
			ID:           r.ID,
			Phase:        snap.Phase,
			Rack:         snap.Rack,
			Remaining:    snap.Remaining,
			Viewers:      r.Viewers(),
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivity(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Shutdown stops every room.
func (tm *TableManager) Shutdown() {
	tm.mu.RLock()
	ids := make([]string, 0, len(tm.rooms))
	for id := range tm.rooms {
		ids = append(ids, id)
	}
	tm.mu.RUnlock()

	for _, id := range ids {
		tm.CloseTable(id, "shutdown")
	}
	tm.cancel()
}

func (tm *TableManager) tokenTTL() time.Duration {
	if tm.config.TokenTTLMinutes <= 0 {
		return 4 * time.Hour
	}
	return time.Duration(tm.config.TokenTTLMinutes) * time.Minute
}

func (tm *TableManager) idleTimeout() time.Duration {
	if tm.config.IdleRoomMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(tm.config.IdleRoomMinutes) * time.Minute
}
