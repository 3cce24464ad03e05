package game

import (
	"math"

	"github.com/playmatatu/billiard/internal/config"
)

// StickState is the drag state of the cue stick.
type StickState string

const (
	StickIdle     StickState = "IDLE"
	StickDragging StickState = "DRAGGING"
	StickReleased StickState = "RELEASED" // lasts for the tick the shot fires
)

// PointerInput is the pointer state sampled for one tick, in table coordinates.
type PointerInput struct {
	Position     Vec2 `json:"position"`
	Down         bool `json:"down"`
	JustPressed  bool `json:"pressed"`
	JustReleased bool `json:"released"`
}

// Stick aims at the pointer and converts a press-drag-release gesture into a
// cue ball velocity.
type Stick struct {
	State      StickState
	Position   Vec2    // tip, drawn behind the cue ball
	Direction  Vec2    // unit vector from the cue ball towards the pointer
	Rotation   float64 // radians, angle of Direction
	DragAnchor Vec2
	DrawBack   float64

	forceScale  float64
	maxDrawBack float64
}

// NewStick creates an idle stick aimed along -x, so a release shoots towards the rack.
func NewStick(p config.Physics) *Stick {
	s := &Stick{
		forceScale:  p.ForceScale,
		maxDrawBack: p.MaxDrawBack,
	}
	s.Reset()
	return s
}

// Reset returns the stick to idle with no draw-back. The aim is kept.
func (s *Stick) Reset() {
	s.State = StickIdle
	s.DrawBack = 0
	s.DragAnchor = Vec2{}
	if s.Direction.IsZero() {
		s.Direction = NewVec2(-1, 0)
		s.Rotation = s.Direction.Angle()
	}
}

// Update aims the stick and advances the drag gesture for one tick. When the
// gesture is released with a non-zero draw-back it returns the velocity to
// give the cue ball and true. A pointer lying exactly on the cue ball centre
// keeps the previous aim.
func (s *Stick) Update(cue *Ball, radius float64, in PointerInput) (Vec2, bool) {
	if dir := in.Position.Minus(cue.Position).Normalize(); !dir.IsZero() {
		s.Direction = dir
		s.Rotation = dir.Angle()
	}

	if s.State == StickReleased {
		s.State = StickIdle
	}

	var shot Vec2
	fired := false

	if s.State == StickIdle && in.JustPressed {
		s.State = StickDragging
		s.DragAnchor = in.Position
		s.DrawBack = 0
	}

	if s.State == StickDragging {
		s.DrawBack = s.drawDistance(in.Position)

		if in.JustReleased || !in.Down {
			force := s.DrawBack * s.forceScale
			s.State = StickReleased
			s.DrawBack = 0
			if force > 0 {
				shot = s.Direction.Invert().Times(force)
				fired = true
			} else {
				s.State = StickIdle
			}
		}
	}

	s.Position = cue.Position.Plus(s.Direction.Times(radius + s.DrawBack))
	return shot, fired
}

// drawDistance is how far the pointer has travelled from the drag anchor,
// limited by the configured cap.
func (s *Stick) drawDistance(pointer Vec2) float64 {
	d := pointer.Distance(s.DragAnchor)
	if s.maxDrawBack > 0 {
		d = math.Min(d, s.maxDrawBack)
	}
	return d
}

// StickSnapshot is the render state of the stick.
type StickSnapshot struct {
	State     StickState `json:"state"`
	Position  Vec2       `json:"position"`
	Direction Vec2       `json:"direction"`
	Rotation  float64    `json:"rotation"`
	DrawBack  float64    `json:"draw_back"`
	Visible   bool       `json:"visible"`
}

func (s *Stick) snapshot(visible bool) StickSnapshot {
	return StickSnapshot{
		State:     s.State,
		Position:  s.Position,
		Direction: s.Direction,
		Rotation:  s.Rotation,
		DrawBack:  s.DrawBack,
		Visible:   visible,
	}
}
