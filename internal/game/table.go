package game

import "github.com/playmatatu/billiard/internal/config"

// BorderOrientation tells which axis a border constrains.
type BorderOrientation string

const (
	Vertical   BorderOrientation = "vertical"   // left/right, constrains X
	Horizontal BorderOrientation = "horizontal" // top/bottom, constrains Y
)

// Border is one cushion of the playable rectangle, anchored at its lower-left corner.
type Border struct {
	Name        string            `json:"name"`
	Length      float64           `json:"length"`
	Anchor      Vec2              `json:"anchor"`
	Orientation BorderOrientation `json:"orientation"`
}

// Pocket represents one of the pockets on the table.
type Pocket struct {
	ID            int     `json:"id"`
	Center        Vec2    `json:"center"`
	Radius        float64 `json:"radius"`
	CaptureRadius float64 `json:"capture_radius"`
}

// Table holds the static table geometry.
type Table struct {
	Left    Border   `json:"left"`
	Right   Border   `json:"right"`
	Top     Border   `json:"top"`
	Bottom  Border   `json:"bottom"`
	Width   float64  `json:"border_width"`
	Pockets []Pocket `json:"pockets"`
}

// NewTable builds the table geometry from the physics settings.
func NewTable(p config.Physics) *Table {
	pockets := make([]Pocket, len(p.Pockets))
	for i, c := range p.Pockets {
		pockets[i] = Pocket{
			ID:            i,
			Center:        NewVec2(c.X, c.Y),
			Radius:        p.PocketRadius,
			CaptureRadius: p.PocketRadius * p.CaptureMultiplier,
		}
	}

	return &Table{
		Left:    Border{Name: "left", Length: p.BorderLengthV, Anchor: NewVec2(p.BorderLeft.X, p.BorderLeft.Y), Orientation: Vertical},
		Right:   Border{Name: "right", Length: p.BorderLengthV, Anchor: NewVec2(p.BorderRight.X, p.BorderRight.Y), Orientation: Vertical},
		Top:     Border{Name: "top", Length: p.BorderLengthH, Anchor: NewVec2(p.BorderTop.X, p.BorderTop.Y), Orientation: Horizontal},
		Bottom:  Border{Name: "bottom", Length: p.BorderLengthH, Anchor: NewVec2(p.BorderBottom.X, p.BorderBottom.Y), Orientation: Horizontal},
		Width:   p.BorderWidth,
		Pockets: pockets,
	}
}

// Inner faces of the four borders.
func (t *Table) MinX() float64 { return t.Left.Anchor.X + t.Width }
func (t *Table) MaxX() float64 { return t.Right.Anchor.X }
func (t *Table) MinY() float64 { return t.Bottom.Anchor.Y + t.Width }
func (t *Table) MaxY() float64 { return t.Top.Anchor.Y }

// Closed reports whether the four borders enclose the playable rectangle
// without gaps: each side spans the full inner extent of the other axis.
func (t *Table) Closed() bool {
	if t.MinX() >= t.MaxX() || t.MinY() >= t.MaxY() {
		return false
	}
	for _, b := range []Border{t.Left, t.Right} {
		if b.Anchor.Y > t.MinY() || b.Anchor.Y+b.Length < t.MaxY() {
			return false
		}
	}
	for _, b := range []Border{t.Top, t.Bottom} {
		if b.Anchor.X > t.MinX() || b.Anchor.X+b.Length < t.MaxX() {
			return false
		}
	}
	return true
}

// Contains reports whether a disc of the given radius lies within the inner
// faces, allowing slack for the wall correction epsilon.
func (t *Table) Contains(pos Vec2, radius, slack float64) bool {
	return pos.X-radius >= t.MinX()-slack &&
		pos.X+radius <= t.MaxX()+slack &&
		pos.Y-radius >= t.MinY()-slack &&
		pos.Y+radius <= t.MaxY()+slack
}
