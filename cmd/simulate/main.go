// Command simulate runs a table headless and writes a per-tick CSV trace.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/game"
)

// BallRow is one ball at the end of one tick.
type BallRow struct {
	Tick     int     `csv:"tick"`
	Time     float64 `csv:"time"`
	Shot     int     `csv:"shot"`
	Phase    string  `csv:"phase"`
	BallID   int     `csv:"ball_id"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	Pocketed bool    `csv:"pocketed"`
}

// EventRow is one collision reported by the physics engine.
type EventRow struct {
	Tick     int     `csv:"tick"`
	Type     string  `csv:"type"`
	BallID   int     `csv:"ball_id"`
	TargetID int     `csv:"target_id"`
	Speed    float64 `csv:"speed"`
}

func main() {
	physicsPath := flag.String("physics", "", "Path to physics.yaml overlay (empty = use defaults)")
	seed := flag.Int64("seed", 1, "RNG seed for ball colours (0 = time-based)")
	shots := flag.Int("shots", 1, "Number of shots to play")
	angle := flag.Float64("angle", 0, "Aim of the first shot in degrees (0 = towards +x)")
	pull := flag.Float64("pull", 0.3, "Draw-back distance of each shot in table units")
	dt := flag.Float64("dt", 1.0/60.0, "Simulation step in seconds")
	maxTicks := flag.Int("max-ticks", 100000, "Stop after N ticks")
	outputDir := flag.String("output-dir", "sim-out", "Directory for trace.csv, events.csv and physics.yaml")
	flag.Parse()

	physics, err := config.LoadPhysics(*physicsPath)
	if err != nil {
		log.Fatalf("Failed to load physics: %v", err)
	}
	physics.Seed = *seed

	if *dt <= 0 || *pull <= 0 {
		log.Fatalf("dt and pull must be positive")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	session := game.NewSession(physics)
	physics.Seed = session.Seed()
	if err := physics.WriteYAML(filepath.Join(*outputDir, "physics.yaml")); err != nil {
		log.Fatalf("Failed to write physics.yaml: %v", err)
	}

	rows, events, played := run(session, *shots, *angle*math.Pi/180, *pull, *dt, *maxTicks)

	if err := writeCSV(filepath.Join(*outputDir, "trace.csv"), &rows); err != nil {
		log.Fatalf("Failed to write trace: %v", err)
	}
	if err := writeCSV(filepath.Join(*outputDir, "events.csv"), &events); err != nil {
		log.Fatalf("Failed to write events: %v", err)
	}

	snap := session.Snapshot()
	log.Printf("[SIM] seed=%d shots=%d remaining=%d phase=%s ticks=%d events=%d",
		session.Seed(), played, snap.Remaining, snap.Phase, len(rows)/max(len(snap.Balls), 1), len(events))
}

// run plays shots through the stick, the way a pointer would, and records
// every tick until the table settles after the last shot.
func run(s *game.Session, shots int, firstAngle, pull, dt float64, maxTicks int) ([]BallRow, []EventRow, int) {
	var rows []BallRow
	var events []EventRow
	played := 0
	var script []game.PointerInput

	for tick := 0; tick < maxTicks; tick++ {
		snap := s.Snapshot()
		if snap.Phase == game.PhasePlayable && len(script) == 0 {
			if played == shots {
				break
			}
			aim := firstAngle
			if played > 0 {
				aim = aimAtNearest(snap)
			}
			script = strokeScript(cuePosition(snap), aim, pull)
		}

		var in game.PointerInput
		if len(script) > 0 && snap.Phase == game.PhasePlayable {
			in, script = script[0], script[1:]
		}

		res := s.Tick(dt, in)
		if res.ShotFired {
			played++
			log.Printf("[SIM] shot %d fired at tick %d: v=(%.3f, %.3f)", played, tick, res.ShotVelocity.X, res.ShotVelocity.Y)
		}
		if res.Restarted {
			log.Printf("[SIM] rack cleared, re-racked at tick %d", tick)
		}

		for _, b := range res.Balls {
			rows = append(rows, BallRow{
				Tick:     tick,
				Time:     float64(tick+1) * dt,
				Shot:     played,
				Phase:    string(res.Phase),
				BallID:   b.ID,
				X:        b.Position.X,
				Y:        b.Position.Y,
				VX:       b.Velocity.X,
				VY:       b.Velocity.Y,
				Pocketed: b.Pocketed,
			})
		}
		for _, ev := range res.Events {
			events = append(events, EventRow{
				Tick:     tick,
				Type:     ev.Type,
				BallID:   ev.BallID,
				TargetID: ev.TargetID,
				Speed:    ev.Speed,
			})
		}
	}

	return rows, events, played
}

// strokeScript presses behind the cue ball, pulls straight back by pull and
// releases. The cue ball travels along aim.
func strokeScript(cue game.Vec2, aim, pull float64) []game.PointerInput {
	dir := game.NewVec2(math.Cos(aim), math.Sin(aim))
	start := cue.Minus(dir.Times(0.05))
	end := start.Minus(dir.Times(pull))

	return []game.PointerInput{
		{Position: start, Down: true, JustPressed: true},
		{Position: start.Minus(dir.Times(pull / 2)), Down: true},
		{Position: end, Down: true},
		{Position: end, JustReleased: true},
	}
}

func cuePosition(snap game.Snapshot) game.Vec2 {
	for _, b := range snap.Balls {
		if b.IsCue {
			return b.Position
		}
	}
	return game.Vec2{}
}

func aimAtNearest(snap game.Snapshot) float64 {
	cue := cuePosition(snap)
	best := math.Inf(1)
	var target game.Vec2
	for _, b := range snap.Balls {
		if b.IsCue || b.Pocketed {
			continue
		}
		if d := cue.Distance(b.Position); d < best {
			best = d
			target = b.Position
		}
	}
	return target.Minus(cue).Angle()
}

func writeCSV(path string, records interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
