package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/billiard/internal/models"
)

const (
	inputBufferSize = 64
	maxRecentShots  = 500
)

// Outbound message types sent to table viewers.
const (
	MsgTick        = "tick"
	MsgShot        = "shot"
	MsgPhase       = "phase"
	MsgState       = "table_state"
	MsgTableClosed = "table_closed"
	MsgRackWon     = "rack_won"
	MsgError       = "error"
)

// Message is the envelope for everything pushed to viewers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// PhaseChange is the payload of a phase message.
type PhaseChange struct {
	Phase    Phase `json:"phase"`
	Previous Phase `json:"previous"`
	Rack     int   `json:"rack"`
}

// Room hosts one Session on its own goroutine. Pointer input is queued and
// applied on the next tick; readers get the last committed snapshot.
type Room struct {
	ID        string
	Seed      int64
	CreatedAt time.Time

	session *Session
	manager *TableManager
	input   chan PointerInput
	done    chan struct{}
	once    sync.Once

	mu           sync.RWMutex
	snapshot     Snapshot
	shots        []models.Shot
	lastActivity time.Time
	rackStarted  time.Time
	viewers      int
}

func newRoom(id string, session *Session, tm *TableManager) *Room {
	now := time.Now()
	return &Room{
		ID:           id,
		Seed:         session.Seed(),
		CreatedAt:    now,
		session:      session,
		manager:      tm,
		input:        make(chan PointerInput, inputBufferSize),
		done:         make(chan struct{}),
		snapshot:     session.Snapshot(),
		lastActivity: now,
		rackStarted:  now,
	}
}

// SubmitInput queues pointer state for the next tick. It never blocks; input
// arriving faster than the room can drain it is dropped.
func (r *Room) SubmitInput(in PointerInput) bool {
	r.Touch()
	select {
	case r.input <- in:
		return true
	case <-r.done:
		return false
	default:
		log.Printf("[ROOM] Input buffer full for table %s, dropping pointer update", r.ID)
		return false
	}
}

// Snapshot returns the state committed by the last tick.
func (r *Room) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// RecentShots returns up to the last maxRecentShots shots, oldest first.
func (r *Room) RecentShots() []models.Shot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Shot, len(r.shots))
	copy(out, r.shots)
	return out
}

// Touch marks the table as in use.
func (r *Room) Touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

// Join and Leave track connected viewers.
func (r *Room) Join() {
	r.mu.Lock()
	r.viewers++
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Room) Leave() {
	r.mu.Lock()
	if r.viewers > 0 {
		r.viewers--
	}
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Room) Viewers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.viewers
}

// LastActivity is the last time a viewer joined, left or sent input.
func (r *Room) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActivity
}

// Done is closed once the room has been stopped.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) stop() {
	r.once.Do(func() { close(r.done) })
}

// run ticks the session at tickRate until ctx is cancelled or the room is stopped.
func (r *Room) run(ctx context.Context, tickRate int, maxDelta time.Duration, snapshotEvery int) {
	if tickRate <= 0 {
		tickRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	log.Printf("[ROOM] Table %s running at %d Hz", r.ID, tickRate)

	var pointer PointerInput
	last := time.Now()
	tick := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			log.Printf("[ROOM] Table %s stopped", r.ID)
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if maxDelta > 0 && dt > maxDelta {
				dt = maxDelta
			}

			var gotInput bool
			pointer, gotInput = r.drainInput(pointer)
			res := r.session.Tick(dt.Seconds(), pointer)
			pointer.JustPressed = false
			pointer.JustReleased = false

			tick++
			r.afterTick(res, gotInput, snapshotEvery > 0 && tick%snapshotEvery == 0)
		}
	}
}

// drainInput folds queued pointer updates into one tick's input. The latest
// position and button state win; press and release edges are kept. Draining
// stops after any edge, so a press is applied at its own position and the
// matching release lands on a later tick.
func (r *Room) drainInput(pointer PointerInput) (PointerInput, bool) {
	got := false
	for {
		select {
		case in := <-r.input:
			got = true
			in.JustPressed = in.JustPressed || pointer.JustPressed
			in.JustReleased = in.JustReleased || pointer.JustReleased
			pointer = in
			if in.JustPressed || in.JustReleased {
				return pointer, got
			}
		default:
			return pointer, got
		}
	}
}

func (r *Room) afterTick(res TickResult, gotInput, snapshotDue bool) {
	var shot *models.Shot
	r.mu.Lock()
	r.snapshot = res.Snapshot
	if res.ShotFired {
		cue := res.Balls[r.session.registry.CueIndex()]
		shot = &models.Shot{
			TableID:    r.ID,
			RackNumber: res.Rack,
			ShotNumber: res.Shots,
			CueX:       cue.Position.X,
			CueY:       cue.Position.Y,
			VelocityX:  res.ShotVelocity.X,
			VelocityY:  res.ShotVelocity.Y,
			Speed:      res.ShotVelocity.Magnitude(),
			CreatedAt:  time.Now(),
		}
		r.shots = append(r.shots, *shot)
		if len(r.shots) > maxRecentShots {
			r.shots = r.shots[len(r.shots)-maxRecentShots:]
		}
	}
	rackStarted := r.rackStarted
	if res.Restarted {
		r.rackStarted = time.Now()
	}
	r.mu.Unlock()

	tm := r.manager
	if shot != nil {
		tm.broadcast(r.ID, Message{Type: MsgShot, Data: shot})
		go tm.recordShot(*shot)
	}

	if res.PhaseChanged() {
		tm.broadcast(r.ID, Message{Type: MsgPhase, Data: PhaseChange{Phase: res.Phase, Previous: res.PreviousPhase, Rack: res.Rack}})

		if res.Phase == PhaseWin {
			result := models.RackResult{
				TableID:     r.ID,
				RackNumber:  res.Rack,
				Shots:       res.Shots,
				DurationMs:  time.Since(rackStarted).Milliseconds(),
				CompletedAt: time.Now(),
			}
			log.Printf("[ROOM] Table %s cleared rack %d in %d shots", r.ID, res.Rack, res.Shots)
			go tm.recordRackResult(result)
			go tm.publishEvent(r.ID, MsgRackWon, map[string]interface{}{"rack": res.Rack, "shots": res.Shots})
		}
	}

	// an idle playable table has nothing new to show
	if res.Phase != PhasePlayable || gotInput || res.PhaseChanged() || len(res.Events) > 0 {
		tm.broadcast(r.ID, Message{Type: MsgTick, Data: res})
	}

	if res.PhaseChanged() || (snapshotDue && res.Phase == PhaseRunning) {
		go tm.saveTableToRedis(r.ID, res.Snapshot)
	}
}
