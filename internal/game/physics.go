package game

import (
	"math"

	"github.com/playmatatu/billiard/internal/config"
)

// Collision event types.
const (
	EventWall   = "wall"
	EventPocket = "pocket"
	EventBall   = "ball"
)

// CollisionEvent records a collision for clients (sound, replays) and tests.
type CollisionEvent struct {
	Type     string  `json:"type"`      // "wall", "pocket", "ball"
	BallID   int     `json:"ball_id"`
	TargetID int     `json:"target_id"` // ball ID, pocket ID, or -1 for walls
	Speed    float64 `json:"speed"`     // impact speed
}

// PhysicsEngine advances and resolves the balls of one registry on one table.
// It borrows the registry's balls for the duration of a call only.
type PhysicsEngine struct {
	Registry *Registry
	Table    *Table
	Events   []CollisionEvent
	cfg      config.Physics
}

// NewPhysicsEngine creates a physics engine over a registry and table geometry.
func NewPhysicsEngine(reg *Registry, table *Table, cfg config.Physics) *PhysicsEngine {
	return &PhysicsEngine{
		Registry: reg,
		Table:    table,
		cfg:      cfg,
	}
}

// Advance integrates every ball still on the table by dt seconds and applies
// rolling friction. It reports whether any ball is still moving afterwards.
func (pe *PhysicsEngine) Advance(dt float64) bool {
	moving := false
	for i := range pe.Registry.Balls {
		ball := &pe.Registry.Balls[i]
		if ball.Pocketed {
			continue
		}

		ball.PrevPosition = ball.Position
		ball.Position = ball.Position.Plus(ball.Velocity.Times(dt))
		ball.Velocity = pe.applyFriction(ball.Velocity, dt)

		if !ball.Velocity.IsZero() {
			moving = true
		}
	}
	return moving
}

// applyFriction decelerates v along its own direction. The friction ratio is
// larger at low speed and never drops below the configured floor.
func (pe *PhysicsEngine) applyFriction(v Vec2, dt float64) Vec2 {
	speed := v.Magnitude()
	if speed == 0 {
		return v
	}

	ratio := math.Pow(0.5, speed-1) / 2
	if ratio < pe.cfg.FrictionFloor {
		ratio = pe.cfg.FrictionFloor
	}

	decel := ratio * pe.cfg.FrictionCoefficient * dt
	if decel >= speed {
		return Vec2{}
	}

	v = v.Minus(v.Normalize().Times(decel))
	if v.Magnitude() < pe.cfg.RestEpsilon {
		return Vec2{}
	}
	return v
}

// AllStopped returns true if all balls on the table have zero velocity.
func (pe *PhysicsEngine) AllStopped() bool {
	for i := range pe.Registry.Balls {
		b := &pe.Registry.Balls[i]
		if !b.Pocketed && !b.Velocity.IsZero() {
			return false
		}
	}
	return true
}

// ResolveCollisions runs, for each ball in slot order, the wall check, the
// pocket check and the ball-ball pass against later slots. A ball takes part
// in at most one ball-ball collision per call; clusters of three or more are
// therefore resolved pairwise in slot order.
func (pe *PhysicsEngine) ResolveCollisions() {
	balls := pe.Registry.Balls
	diameter := 2 * pe.Registry.Radius

	for i := range balls {
		ball := &balls[i]
		if ball.Pocketed {
			continue
		}

		pe.checkWalls(ball)
		if pe.checkPockets(ball) && ball.Pocketed {
			continue
		}
		if ball.hitThisTick {
			continue
		}

		for j := i + 1; j < len(balls); j++ {
			other := &balls[j]
			if other.Pocketed || other.hitThisTick {
				continue
			}

			dist := ball.Position.Distance(other.Position)
			// coincident centres have no usable normal
			if dist > 0 && dist < diameter {
				pe.resolveBallBall(ball, other, dist)
				break
			}
		}
	}

	// separation can push a ball that was already checked back through a cushion
	for i := range balls {
		if !balls[i].Pocketed {
			pe.clampToTable(&balls[i])
		}
	}
}

// checkWalls pushes a ball that crossed an inner border face back inside and
// reflects the outward velocity component with wall restitution.
func (pe *PhysicsEngine) checkWalls(ball *Ball) {
	r := pe.Registry.Radius
	eps := pe.cfg.WallEpsilon
	rest := pe.cfg.WallRestitution
	t := pe.Table

	if ball.Position.X-r < t.MinX() {
		ball.Position.X = t.MinX() + r + eps
		if ball.Velocity.X < 0 {
			pe.recordWall(ball, ball.Velocity.X)
			ball.Velocity.X = -ball.Velocity.X * rest
		}
	}
	if ball.Position.X+r > t.MaxX() {
		ball.Position.X = t.MaxX() - r - eps
		if ball.Velocity.X > 0 {
			pe.recordWall(ball, ball.Velocity.X)
			ball.Velocity.X = -ball.Velocity.X * rest
		}
	}
	if ball.Position.Y-r < t.MinY() {
		ball.Position.Y = t.MinY() + r + eps
		if ball.Velocity.Y < 0 {
			pe.recordWall(ball, ball.Velocity.Y)
			ball.Velocity.Y = -ball.Velocity.Y * rest
		}
	}
	if ball.Position.Y+r > t.MaxY() {
		ball.Position.Y = t.MaxY() - r - eps
		if ball.Velocity.Y > 0 {
			pe.recordWall(ball, ball.Velocity.Y)
			ball.Velocity.Y = -ball.Velocity.Y * rest
		}
	}
}

func (pe *PhysicsEngine) clampToTable(ball *Ball) {
	r := pe.Registry.Radius
	eps := pe.cfg.WallEpsilon
	t := pe.Table

	ball.Position.X = math.Max(ball.Position.X, t.MinX()+r+eps)
	ball.Position.X = math.Min(ball.Position.X, t.MaxX()-r-eps)
	ball.Position.Y = math.Max(ball.Position.Y, t.MinY()+r+eps)
	ball.Position.Y = math.Min(ball.Position.Y, t.MaxY()-r-eps)
}

func (pe *PhysicsEngine) recordWall(ball *Ball, normalSpeed float64) {
	pe.Events = append(pe.Events, CollisionEvent{
		Type:     EventWall,
		BallID:   ball.ID,
		TargetID: -1,
		Speed:    math.Abs(normalSpeed),
	})
}

// checkPockets captures a ball whose centre is inside any pocket's capture
// radius. Object balls are marked pocketed; the cue ball is returned to its
// spawn point instead. Balls already hit this tick are not captured.
func (pe *PhysicsEngine) checkPockets(ball *Ball) bool {
	if ball.Pocketed || ball.hitThisTick {
		return false
	}

	for _, pocket := range pe.Table.Pockets {
		if ball.Position.Distance(pocket.Center) > pocket.CaptureRadius {
			continue
		}

		speed := ball.Velocity.Magnitude()
		ball.Velocity = Vec2{}
		if ball.IsCue {
			spawn := pe.Registry.CueSpawn()
			ball.Position = spawn
			ball.PrevPosition = spawn
		} else {
			ball.Pocketed = true
		}

		pe.Events = append(pe.Events, CollisionEvent{
			Type:     EventPocket,
			BallID:   ball.ID,
			TargetID: pocket.ID,
			Speed:    speed,
		})
		return true
	}
	return false
}

// resolveBallBall exchanges the normal velocity components of two equal-mass
// balls, applies ball restitution to both, and separates them to exactly one
// diameter apart.
func (pe *PhysicsEngine) resolveBallBall(ball, target *Ball, dist float64) {
	n := target.Position.Minus(ball.Position).Normalize()
	halfOverlap := pe.Registry.Radius - dist/2

	ballNormal := n.Times(n.Dot(ball.Velocity))
	ballTangent := ball.Velocity.Minus(ballNormal)
	targetNormal := n.Times(n.Dot(target.Velocity))
	targetTangent := target.Velocity.Minus(targetNormal)

	rest := pe.cfg.BallRestitution
	ball.Velocity = targetNormal.Plus(ballTangent).Times(rest)
	target.Velocity = ballNormal.Plus(targetTangent).Times(rest)

	ball.Position = ball.Position.Minus(n.Times(halfOverlap))
	target.Position = target.Position.Plus(n.Times(halfOverlap))

	ball.hitThisTick = true
	target.hitThisTick = true

	// Record collision events for both balls
	pe.Events = append(pe.Events, CollisionEvent{
		Type:     EventBall,
		BallID:   ball.ID,
		TargetID: target.ID,
		Speed:    ball.Velocity.Magnitude(),
	})
	pe.Events = append(pe.Events, CollisionEvent{
		Type:     EventBall,
		BallID:   target.ID,
		TargetID: ball.ID,
		Speed:    target.Velocity.Magnitude(),
	})
}

// takeEvents hands the accumulated events to the caller and starts a new list.
func (pe *PhysicsEngine) takeEvents() []CollisionEvent {
	events := pe.Events
	pe.Events = nil
	return events
}
