package game

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(3, 4)
	b := NewVec2(1, -2)

	if got := a.Plus(b); got != NewVec2(4, 2) {
		t.Errorf("Plus = %v, want (4,2)", got)
	}
	if got := a.Minus(b); got != NewVec2(2, 6) {
		t.Errorf("Minus = %v, want (2,6)", got)
	}
	if got := a.Times(0.5); got != NewVec2(1.5, 2) {
		t.Errorf("Times = %v, want (1.5,2)", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Errorf("Dot = %v, want -5", got)
	}
	if got := a.Magnitude(); got != 5 {
		t.Errorf("Magnitude = %v, want 5", got)
	}
	if got := a.Distance(b); math.Abs(got-math.Sqrt(40)) > 1e-12 {
		t.Errorf("Distance = %v, want sqrt(40)", got)
	}
}

func TestVec2NormalizeZeroIsZero(t *testing.T) {
	n := Vec2{}.Normalize()
	if !n.IsZero() {
		t.Errorf("normalizing zero vector gave %v, want zero", n)
	}
	if !n.IsFinite() {
		t.Errorf("normalizing zero vector gave non-finite %v", n)
	}
}

func TestVec2NormalizeUnitLength(t *testing.T) {
	n := NewVec2(-7, 24).Normalize()
	if math.Abs(n.Magnitude()-1) > 1e-12 {
		t.Errorf("|normalize| = %v, want 1", n.Magnitude())
	}
	if math.Abs(n.Angle()-math.Atan2(24, -7)) > 1e-12 {
		t.Errorf("normalize changed direction: %v", n)
	}
}
