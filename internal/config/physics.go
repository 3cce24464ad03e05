package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Point is a table coordinate as written in the physics file.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Physics holds every tunable constant of the table simulation.
// Units are table units (the table spans roughly [-0.75, 0.7] x [-0.45, 0.5]).
type Physics struct {
	BallRadius float64 `yaml:"ball_radius" json:"ball_radius"`

	// Motion
	FrictionCoefficient float64 `yaml:"friction_coefficient" json:"friction_coefficient"`
	FrictionFloor       float64 `yaml:"friction_floor" json:"friction_floor"` // minimum friction ratio
	RestEpsilon         float64 `yaml:"rest_epsilon" json:"rest_epsilon"`     // speeds below this snap to zero

	// Collisions
	WallRestitution   float64 `yaml:"wall_restitution" json:"wall_restitution"`
	WallEpsilon       float64 `yaml:"wall_epsilon" json:"wall_epsilon"`
	BallRestitution   float64 `yaml:"ball_restitution" json:"ball_restitution"`
	PocketRadius      float64 `yaml:"pocket_radius" json:"pocket_radius"`
	CaptureMultiplier float64 `yaml:"capture_multiplier" json:"capture_multiplier"`

	// Stick
	ForceScale  float64 `yaml:"force_scale" json:"force_scale"`
	MaxDrawBack float64 `yaml:"max_draw_back" json:"max_draw_back"` // 0 = uncapped

	// Rack
	RackRows      int     `yaml:"rack_rows" json:"rack_rows"`
	RackSpacing   float64 `yaml:"rack_spacing" json:"rack_spacing"` // row offset in radii
	RackApex      Point   `yaml:"rack_apex" json:"rack_apex"`
	CueSpawn      Point   `yaml:"cue_spawn" json:"cue_spawn"`
	Seed          int64   `yaml:"seed" json:"seed"` // 0 = seed from wall clock
	BorderWidth   float64 `yaml:"border_width" json:"border_width"`
	BorderLeft    Point   `yaml:"border_left" json:"border_left"`
	BorderRight   Point   `yaml:"border_right" json:"border_right"`
	BorderTop     Point   `yaml:"border_top" json:"border_top"`
	BorderBottom  Point   `yaml:"border_bottom" json:"border_bottom"`
	BorderLengthV float64 `yaml:"border_length_vertical" json:"border_length_vertical"`
	BorderLengthH float64 `yaml:"border_length_horizontal" json:"border_length_horizontal"`
	Pockets       []Point `yaml:"pockets" json:"pockets"`

	// Phase machine
	WinRestartSeconds float64 `yaml:"win_restart_seconds" json:"win_restart_seconds"`
}

// DefaultPhysics returns the embedded defaults. It panics only if the
// embedded file is malformed, which is a build defect.
func DefaultPhysics() Physics {
	p, err := LoadPhysics("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded physics defaults: %v", err))
	}
	return p
}

// LoadPhysics parses the embedded defaults, then overlays the YAML file at
// path when it is non-empty. Only keys present in the file are overwritten.
func LoadPhysics(path string) (Physics, error) {
	var p Physics
	if err := yaml.Unmarshal(defaultsYAML, &p); err != nil {
		return Physics{}, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Physics{}, fmt.Errorf("reading physics file: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Physics{}, fmt.Errorf("parsing physics file: %w", err)
		}
	}

	if err := p.Validate(); err != nil {
		return Physics{}, err
	}
	return p, nil
}

// Validate rejects values the simulation cannot run with.
func (p Physics) Validate() error {
	if p.BallRadius <= 0 {
		return fmt.Errorf("ball_radius must be positive, got %v", p.BallRadius)
	}
	if p.PocketRadius*p.CaptureMultiplier <= p.BallRadius {
		return fmt.Errorf("pocket capture radius %v must exceed ball radius %v", p.PocketRadius*p.CaptureMultiplier, p.BallRadius)
	}
	if p.WallRestitution <= 0 || p.WallRestitution > 1 {
		return fmt.Errorf("wall_restitution must be in (0,1], got %v", p.WallRestitution)
	}
	if p.BallRestitution <= 0 || p.BallRestitution > 1 {
		return fmt.Errorf("ball_restitution must be in (0,1], got %v", p.BallRestitution)
	}
	if p.RestEpsilon <= 0 {
		return fmt.Errorf("rest_epsilon must be positive, got %v", p.RestEpsilon)
	}
	if p.RackRows < 1 {
		return fmt.Errorf("rack_rows must be at least 1, got %d", p.RackRows)
	}
	if p.MaxDrawBack < 0 {
		return fmt.Errorf("max_draw_back must not be negative, got %v", p.MaxDrawBack)
	}
	if len(p.Pockets) == 0 {
		return fmt.Errorf("at least one pocket is required")
	}
	return nil
}

// WriteYAML dumps the physics settings, e.g. next to a simulation trace.
func (p Physics) WriteYAML(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling physics: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
