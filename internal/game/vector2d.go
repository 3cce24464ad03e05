package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a 2D table coordinate or velocity. Arithmetic is delegated to gonum's r2.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) r2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func fromR2(p r2.Vec) Vec2 { return Vec2{X: p.X, Y: p.Y} }

func (v Vec2) Plus(o Vec2) Vec2 {
	return fromR2(r2.Add(v.r2(), o.r2()))
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return fromR2(r2.Sub(v.r2(), o.r2()))
}

func (v Vec2) Times(s float64) Vec2 {
	return fromR2(r2.Scale(s, v.r2()))
}

func (v Vec2) Dot(o Vec2) float64 {
	return r2.Dot(v.r2(), o.r2())
}

func (v Vec2) Magnitude() float64 {
	return r2.Norm(v.r2())
}

func (v Vec2) MagnitudeSquared() float64 {
	return r2.Norm2(v.r2())
}

// Normalize returns the unit vector along v. The zero vector normalizes to
// itself rather than NaN so callers can test IsZero.
func (v Vec2) Normalize() Vec2 {
	if v.IsZero() {
		return Vec2{}
	}
	return fromR2(r2.Unit(v.r2()))
}

// Distance returns the euclidean distance between two points.
func (v Vec2) Distance(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

// Angle returns atan2(y, x) in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
