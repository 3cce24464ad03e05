package game

import (
	"math/rand"
	"time"

	"github.com/playmatatu/billiard/internal/config"
)

// Phase is the table's game phase.
type Phase string

const (
	PhasePlayable Phase = "PLAYABLE" // balls at rest, stick active
	PhaseRunning  Phase = "RUNNING"  // balls in motion, stick inert
	PhaseWin      Phase = "WIN"      // every object ball pocketed, waiting to re-rack
)

// Snapshot is the read-only render state of a table.
type Snapshot struct {
	Phase           Phase         `json:"phase"`
	Balls           []Ball        `json:"balls"`
	Stick           StickSnapshot `json:"stick"`
	Remaining       int           `json:"remaining"`
	Shots           int           `json:"shots"`
	Rack            int           `json:"rack"`
	ElapsedSinceWin float64       `json:"elapsed_since_win,omitempty"`
}

// TickResult is what one simulation step produced.
type TickResult struct {
	Snapshot
	PreviousPhase Phase            `json:"previous_phase"`
	Events        []CollisionEvent `json:"events,omitempty"`
	ShotFired     bool             `json:"shot_fired"`
	ShotVelocity  Vec2             `json:"shot_velocity"`
	Restarted     bool             `json:"restarted"`
}

// PhaseChanged reports whether the tick moved the table to another phase.
func (r TickResult) PhaseChanged() bool {
	return r.Phase != r.PreviousPhase || r.Restarted
}

// Session is one billiard table: its balls, stick and phase machine.
// A Session is not safe for concurrent use; its owner serialises ticks.
type Session struct {
	cfg      config.Physics
	table    *Table
	registry *Registry
	engine   *PhysicsEngine
	stick    *Stick
	rng      *rand.Rand
	seed     int64

	phase      Phase
	winElapsed float64
	shots      int
	rack       int
}

// NewSession builds a table and racks it. Ball colours come from
// cfg.Seed, or from the wall clock when the seed is zero.
func NewSession(cfg config.Physics) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	table := NewTable(cfg)
	registry := NewRegistry(cfg.BallRadius)
	s := &Session{
		cfg:      cfg,
		table:    table,
		registry: registry,
		engine:   NewPhysicsEngine(registry, table, cfg),
		stick:    NewStick(cfg),
		rng:      rand.New(rand.NewSource(seed)),
		seed:     seed,
	}
	s.Setup()
	return s
}

// Setup re-racks the table and resets the stick. It can be called any number of times.
func (s *Session) Setup() {
	s.registry.CreateDefaultBoard(s.cfg, s.rng)
	s.stick.Reset()
	s.engine.Events = nil
	s.phase = PhasePlayable
	s.winElapsed = 0
	s.shots = 0
	s.rack++
}

// Tick advances the table by dt seconds with the pointer state sampled for
// this frame. dt must be finite and non-negative.
func (s *Session) Tick(dt float64, in PointerInput) TickResult {
	res := TickResult{PreviousPhase: s.phase}
	s.registry.clearHits()

	switch s.phase {
	case PhaseWin:
		s.winElapsed += dt
		if s.winElapsed >= s.cfg.WinRestartSeconds {
			s.Setup()
			res.Restarted = true
		}

	case PhaseRunning:
		moving := s.engine.Advance(dt)
		s.engine.ResolveCollisions()
		if !moving && s.engine.AllStopped() {
			s.phase = PhasePlayable
		}

	case PhasePlayable:
		cue := s.registry.Cue()
		if cue != nil && cue.Velocity.IsZero() {
			if v, fired := s.stick.Update(cue, s.registry.Radius, in); fired {
				cue.Velocity = v
				s.phase = PhaseRunning
				s.shots++
				res.ShotFired = true
				res.ShotVelocity = v
			}
		}
	}

	if s.phase != PhaseWin && s.registry.AllObjectBallsPocketed() {
		s.phase = PhaseWin
		s.winElapsed = 0
		s.stick.Reset()
	}

	s.registry.clearHits()
	res.Events = s.engine.takeEvents()
	res.Snapshot = s.Snapshot()
	return res
}

// Snapshot copies the current render state.
func (s *Session) Snapshot() Snapshot {
	balls := make([]Ball, len(s.registry.Balls))
	copy(balls, s.registry.Balls)

	snap := Snapshot{
		Phase:     s.phase,
		Balls:     balls,
		Stick:     s.stick.snapshot(s.phase == PhasePlayable),
		Remaining: s.registry.RemainingObjectBalls(),
		Shots:     s.shots,
		Rack:      s.rack,
	}
	if s.phase == PhaseWin {
		snap.ElapsedSinceWin = s.winElapsed
	}
	return snap
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) IsWin() bool { return s.phase == PhaseWin }

// ElapsedSinceWin is the simulated time spent in the Win phase so far.
func (s *Session) ElapsedSinceWin() float64 {
	if s.phase != PhaseWin {
		return 0
	}
	return s.winElapsed
}

// Seed is the colour seed actually used, including one taken from the clock.
func (s *Session) Seed() int64 { return s.seed }

// Table exposes the static geometry, e.g. for the config endpoint.
func (s *Session) Table() *Table { return s.table }

// Physics returns the settings the session was built with.
func (s *Session) Physics() config.Physics { return s.cfg }
