package game

import (
	"math"
	"testing"

	"github.com/playmatatu/billiard/internal/config"
)

func newTestStick(maxDrawBack float64) (*Stick, *Ball) {
	p := config.DefaultPhysics()
	p.MaxDrawBack = maxDrawBack
	return NewStick(p), &Ball{Position: NewVec2(-0.5, 0), IsCue: true}
}

func TestStickAimsAtPointer(t *testing.T) {
	s, cue := newTestStick(0)

	_, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.5, 0.2)})
	if fired {
		t.Fatal("idle stick fired")
	}
	if s.Direction.Distance(NewVec2(0, 1)) > 1e-12 {
		t.Errorf("direction = %v, want (0,1)", s.Direction)
	}
	if math.Abs(s.Rotation-math.Pi/2) > 1e-12 {
		t.Errorf("rotation = %v, want pi/2", s.Rotation)
	}
	// tip rests just outside the ball on the pointer side
	if want := NewVec2(-0.5, 0.03); s.Position.Distance(want) > 1e-12 {
		t.Errorf("position = %v, want %v", s.Position, want)
	}
}

func TestStickPointerOnCueKeepsAim(t *testing.T) {
	s, cue := newTestStick(0)
	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.5, 0.2)})

	s.Update(cue, 0.03, PointerInput{Position: cue.Position})

	if s.Direction.Distance(NewVec2(0, 1)) > 1e-12 {
		t.Errorf("direction = %v, want previous (0,1)", s.Direction)
	}
	if !s.Position.IsFinite() {
		t.Errorf("position not finite: %v", s.Position)
	}
}

func TestStickDragAndRelease(t *testing.T) {
	s, cue := newTestStick(0)

	// press on the left of the ball
	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, 0), Down: true, JustPressed: true})
	if s.State != StickDragging {
		t.Fatalf("state = %s, want DRAGGING", s.State)
	}

	// pull further left
	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.7, 0), Down: true})
	if math.Abs(s.DrawBack-0.1) > 1e-12 {
		t.Errorf("draw back = %v, want 0.1", s.DrawBack)
	}
	if want := NewVec2(-0.5-0.03-0.1, 0); s.Position.Distance(want) > 1e-12 {
		t.Errorf("position = %v, want %v", s.Position, want)
	}

	v, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.7, 0), JustReleased: true})
	if !fired {
		t.Fatal("release did not fire")
	}
	// force = 0.1 * 5, pushed away from the pointer
	if v.Distance(NewVec2(0.5, 0)) > 1e-12 {
		t.Errorf("shot velocity = %v, want (0.5,0)", v)
	}
	if s.State != StickReleased {
		t.Errorf("state = %s, want RELEASED", s.State)
	}

	// released is transient
	if _, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.7, 0)}); fired {
		t.Error("stick fired twice for one release")
	}
	if s.State != StickIdle {
		t.Errorf("state = %s, want IDLE", s.State)
	}
}

func TestStickDrawBackCap(t *testing.T) {
	s, cue := newTestStick(0.3)

	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, 0), Down: true, JustPressed: true})
	v, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, -2), JustReleased: true})

	if !fired {
		t.Fatal("release did not fire")
	}
	if math.Abs(v.Magnitude()-0.3*5) > 1e-12 {
		t.Errorf("shot speed = %v, want capped 1.5", v.Magnitude())
	}
}

func TestStickDefaultsAreUncapped(t *testing.T) {
	s := NewStick(config.DefaultPhysics())
	cue := &Ball{Position: NewVec2(-0.5, 0), IsCue: true}

	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, 0), Down: true, JustPressed: true})
	v, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-2.6, 0), JustReleased: true})

	if !fired {
		t.Fatal("release did not fire")
	}
	if v.Distance(NewVec2(10, 0)) > 1e-9 {
		t.Errorf("shot velocity = %v, want (10,0)", v)
	}
}

func TestStickZeroDrawBackCancels(t *testing.T) {
	s, cue := newTestStick(0)

	s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, 0), Down: true, JustPressed: true})
	v, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.6, 0), JustReleased: true})

	if fired || !v.IsZero() {
		t.Errorf("zero draw back fired %v", v)
	}
	if s.State != StickIdle {
		t.Errorf("state = %s, want IDLE", s.State)
	}
}

func TestStickReleaseWithoutPressIsIgnored(t *testing.T) {
	s, cue := newTestStick(0)

	if _, fired := s.Update(cue, 0.03, PointerInput{Position: NewVec2(-0.9, 0), JustReleased: true}); fired {
		t.Error("release without a drag fired")
	}
}
