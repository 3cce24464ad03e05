package game

import (
	"math/rand"

	"github.com/playmatatu/billiard/internal/config"
)

// Color is an 8-bit RGB ball colour. Purely cosmetic.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	cueColor  = Color{R: 230, G: 230, B: 230}
	apexColor = Color{R: 240, G: 181, B: 4}
)

// Ball is a single disc on the table. Its ID is its slot in the registry.
type Ball struct {
	ID           int   `json:"id"`
	Position     Vec2  `json:"position"`
	PrevPosition Vec2  `json:"prev_position"`
	Velocity     Vec2  `json:"velocity"`
	Color        Color `json:"color"`
	IsCue        bool  `json:"is_cue"`
	Pocketed     bool  `json:"pocketed"`

	// hitThisTick limits a ball to one resolved ball-ball collision per tick.
	hitThisTick bool
}

// Registry owns every ball on the table. Other components address balls by
// index and never keep a pointer past the current tick.
type Registry struct {
	Balls    []Ball
	Radius   float64
	cueIndex int
	cueSpawn Vec2
}

// NewRegistry returns an empty registry for balls of the given radius.
func NewRegistry(radius float64) *Registry {
	return &Registry{Radius: radius, cueIndex: -1}
}

// CreateDefaultBoard drops any existing balls and racks a fresh table: the cue
// ball at its spawn point plus a triangle of p.RackRows columns of object balls.
// Object ball colours are drawn from rng; every channel lies in [20,250).
func (r *Registry) CreateDefaultBoard(p config.Physics, rng *rand.Rand) {
	r.Radius = p.BallRadius
	r.cueSpawn = NewVec2(p.CueSpawn.X, p.CueSpawn.Y)
	r.Balls = r.Balls[:0]

	r.cueIndex = r.add(r.cueSpawn, cueColor, true)

	apex := NewVec2(p.RackApex.X, p.RackApex.Y)
	rowOffset := p.RackSpacing * r.Radius
	for col := 0; col < p.RackRows; col++ {
		for k := 0; k <= col; k++ {
			pos := apex.Plus(NewVec2(float64(col)*rowOffset, float64(2*k-col)*r.Radius))
			c := apexColor
			if col > 0 {
				c = randomColor(rng)
			}
			r.add(pos, c, false)
		}
	}
}

func (r *Registry) add(pos Vec2, c Color, isCue bool) int {
	id := len(r.Balls)
	r.Balls = append(r.Balls, Ball{
		ID:           id,
		Position:     pos,
		PrevPosition: pos,
		Color:        c,
		IsCue:        isCue,
	})
	return id
}

func randomColor(rng *rand.Rand) Color {
	return Color{
		R: uint8(rng.Intn(230) + 20),
		G: uint8(rng.Intn(230) + 20),
		B: uint8(rng.Intn(230) + 20),
	}
}

// CueIndex returns the slot of the cue ball, or -1 before the first rack.
func (r *Registry) CueIndex() int {
	return r.cueIndex
}

// Cue returns the cue ball for in-tick mutation.
func (r *Registry) Cue() *Ball {
	if r.cueIndex < 0 || r.cueIndex >= len(r.Balls) {
		return nil
	}
	return &r.Balls[r.cueIndex]
}

// CueSpawn is where the cue ball is racked and recycled to.
func (r *Registry) CueSpawn() Vec2 {
	return r.cueSpawn
}

// AllObjectBallsPocketed reports whether every non-cue ball has dropped.
// A registry with no object balls is never won.
func (r *Registry) AllObjectBallsPocketed() bool {
	objects := 0
	for i := range r.Balls {
		if r.Balls[i].IsCue {
			continue
		}
		objects++
		if !r.Balls[i].Pocketed {
			return false
		}
	}
	return objects > 0
}

// RemainingObjectBalls counts non-cue balls still on the table.
func (r *Registry) RemainingObjectBalls() int {
	n := 0
	for i := range r.Balls {
		if !r.Balls[i].IsCue && !r.Balls[i].Pocketed {
			n++
		}
	}
	return n
}

func (r *Registry) clearHits() {
	for i := range r.Balls {
		r.Balls[i].hitThisTick = false
	}
}
