package game

import (
	"testing"

	"github.com/playmatatu/billiard/internal/config"
)

func newTestSession(rows int) *Session {
	p := config.DefaultPhysics()
	p.RackRows = rows
	p.Seed = 1
	return NewSession(p)
}

// shoot drags the stick from just left of the cue ball and releases it.
func shoot(s *Session, pull float64) TickResult {
	cue := s.registry.Cue().Position
	anchor := cue.Plus(NewVec2(-0.1, 0))
	s.Tick(1.0/60, PointerInput{Position: anchor, Down: true, JustPressed: true})
	return s.Tick(1.0/60, PointerInput{Position: anchor.Plus(NewVec2(-pull, 0)), JustReleased: true})
}

func TestNewSessionRacksTable(t *testing.T) {
	s := newTestSession(5)

	if s.Phase() != PhasePlayable {
		t.Errorf("phase = %s, want PLAYABLE", s.Phase())
	}
	if n := len(s.registry.Balls); n != 16 {
		t.Errorf("balls = %d, want 16", n)
	}
	if s.registry.CueIndex() != 0 || !s.registry.Balls[0].IsCue {
		t.Error("cue ball not in slot 0")
	}
	snap := s.Snapshot()
	if snap.Remaining != 15 || snap.Rack != 1 {
		t.Errorf("remaining=%d rack=%d, want 15 and 1", snap.Remaining, snap.Rack)
	}
}

func TestSetupIsIdempotent(t *testing.T) {
	s := newTestSession(3)
	s.Setup()
	s.Setup()

	if n := len(s.registry.Balls); n != 7 {
		t.Errorf("balls = %d after repeated setup, want 7", n)
	}
	for _, b := range s.registry.Balls {
		if b.Pocketed || !b.Velocity.IsZero() {
			t.Errorf("ball %d not fresh after setup: %+v", b.ID, b)
		}
	}
}

func TestSeededSessionsMatch(t *testing.T) {
	a := newTestSession(5)
	b := newTestSession(5)

	for i := range a.registry.Balls {
		if a.registry.Balls[i].Color != b.registry.Balls[i].Color {
			t.Fatalf("ball %d colour differs between equal seeds", i)
		}
		c := a.registry.Balls[i].Color
		if i > 1 && (c.R < 20 || c.G < 20 || c.B < 20 || c.R >= 250 || c.G >= 250 || c.B >= 250) {
			t.Errorf("ball %d colour %v out of range", i, c)
		}
	}
}

func TestShotStartsRunning(t *testing.T) {
	s := newTestSession(5)

	res := shoot(s, 0.2)

	if !res.ShotFired {
		t.Fatal("release did not fire")
	}
	if res.Phase != PhaseRunning || !res.PhaseChanged() {
		t.Errorf("phase = %s, want RUNNING", res.Phase)
	}
	if res.ShotVelocity.X <= 0 {
		t.Errorf("shot velocity = %v, want towards +x", res.ShotVelocity)
	}
	if res.Stick.Visible {
		t.Error("stick visible while running")
	}
	if res.Shots != 1 {
		t.Errorf("shots = %d, want 1", res.Shots)
	}
}

func TestStickInertWhileRunning(t *testing.T) {
	s := newTestSession(5)
	shoot(s, 0.2)

	res := s.Tick(1.0/60, PointerInput{Position: NewVec2(-0.9, 0), Down: true, JustPressed: true})
	res = s.Tick(1.0/60, PointerInput{Position: NewVec2(-0.9, 0.3), JustReleased: true})

	if res.ShotFired {
		t.Error("stick fired while running")
	}
	if res.Shots != 1 {
		t.Errorf("shots = %d, want 1", res.Shots)
	}
}

func TestRunningSettlesToPlayable(t *testing.T) {
	s := newTestSession(5)
	shoot(s, 0.1)

	for i := 0; i < 60*60 && s.Phase() == PhaseRunning; i++ {
		s.Tick(1.0/60, PointerInput{})
	}

	if s.Phase() == PhaseRunning {
		t.Fatal("table never settled")
	}
	for _, b := range s.registry.Balls {
		if !b.Velocity.IsZero() {
			t.Errorf("ball %d still moving: %v", b.ID, b.Velocity)
		}
	}
}

func TestWinAndRestart(t *testing.T) {
	s := newTestSession(2)
	if n := s.registry.RemainingObjectBalls(); n != 3 {
		t.Fatalf("object balls = %d, want 3", n)
	}

	for i := range s.registry.Balls {
		if !s.registry.Balls[i].IsCue {
			s.registry.Balls[i].Pocketed = true
		}
	}

	res := s.Tick(1.0/60, PointerInput{})
	if res.Phase != PhaseWin || !s.IsWin() {
		t.Fatalf("phase = %s, want WIN", res.Phase)
	}

	for i := 0; i < 49; i++ {
		s.Tick(0.1, PointerInput{})
	}
	if !s.IsWin() {
		t.Fatalf("restarted early after %v s", s.ElapsedSinceWin())
	}
	if s.ElapsedSinceWin() < 4.8 {
		t.Errorf("elapsed since win = %v, want about 4.9", s.ElapsedSinceWin())
	}

	res = s.Tick(0.2, PointerInput{})
	if !res.Restarted || res.Phase != PhasePlayable {
		t.Fatalf("phase = %s restarted=%v, want fresh PLAYABLE", res.Phase, res.Restarted)
	}
	if res.Remaining != 3 || res.Rack != 2 {
		t.Errorf("remaining=%d rack=%d, want 3 and 2", res.Remaining, res.Rack)
	}
	if s.ElapsedSinceWin() != 0 {
		t.Errorf("elapsed since win = %v after restart", s.ElapsedSinceWin())
	}
}

func TestPocketingLastBallWins(t *testing.T) {
	s := newTestSession(1)
	s.phase = PhaseRunning

	// drop the only object ball onto the top-right pocket
	obj := &s.registry.Balls[1]
	obj.Position = NewVec2(0.66, 0.46)
	obj.Velocity = NewVec2(0.1, 0.1)

	res := s.Tick(1.0/60, PointerInput{})

	if res.Phase != PhaseWin {
		t.Fatalf("phase = %s, want WIN", res.Phase)
	}
	if countEvents(res.Events, EventPocket) != 1 {
		t.Errorf("events = %v, want one pocket event", res.Events)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSession(2)
	snap := s.Snapshot()
	snap.Balls[0].Position = NewVec2(9, 9)

	if s.registry.Balls[0].Position == NewVec2(9, 9) {
		t.Error("snapshot aliases the registry")
	}
}
