package systems

import (
	"fmt"
	"image/color"

	"github.com/mazznoer/colorgrad"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// Palette maps particle speed to a display colour.
type Palette struct {
	colors   []components.Tint
	maxSpeed float64
}

// NewPalette samples a gradient through the given HTML colour stops.
// Speeds at or above maxSpeed map to the last colour.
func NewPalette(stops []string, steps int, maxSpeed float64) (*Palette, error) {
	if len(stops) == 0 {
		stops = []string{"#1d4ed8", "#ffffff"}
	}
	if steps < 2 {
		steps = 2
	}
	grad, err := colorgrad.NewGradient().HtmlColors(stops...).Build()
	if err != nil {
		return nil, fmt.Errorf("building palette: %w", err)
	}

	p := &Palette{maxSpeed: maxSpeed}
	for _, c := range grad.Colors(uint(steps)) {
		p.colors = append(p.colors, tintOf(c))
	}
	return p, nil
}

func tintOf(c color.Color) components.Tint {
	r, g, b, a := c.RGBA()
	return components.Tint{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// Len returns the number of palette entries.
func (p *Palette) Len() int { return len(p.colors) }

// Level returns the palette slot for a speed, in [0, Len).
func (p *Palette) Level(speed float64) int {
	t := 0.0
	if p.maxSpeed > 0 {
		t = speed / p.maxSpeed
	}
	return p.slot(t)
}

func (p *Palette) slot(t float64) int {
	// NaN lands on the slow end
	if !(t > 0) {
		return 0
	}
	if t >= 1 {
		return len(p.colors) - 1
	}
	return int(t * float64(len(p.colors)-1))
}

// At returns the colour a fraction t of the way along the gradient.
func (p *Palette) At(t float64) components.Tint {
	return p.colors[p.slot(t)]
}

// Tint returns the colour for a velocity.
func (p *Palette) Tint(vel r2.Vec) components.Tint {
	return p.colors[p.Level(r2.Norm(vel))]
}

// VisualFilter selects render entities.
type VisualFilter = ecs.Filter3[components.ParticleRef, components.ScreenPos, components.Tint]

// SyncVisuals copies particle state onto render entities: projected screen
// position and a speed colour. Entities whose index is out of range are skipped.
func SyncVisuals(filter *VisualFilter, positions, velocities []r2.Vec, project func(r2.Vec) (float32, float32), palette *Palette) {
	query := filter.Query()
	for query.Next() {
		ref, sp, tint := query.Get()
		if ref.Index < 0 || ref.Index >= len(positions) {
			continue
		}
		sp.X, sp.Y = project(positions[ref.Index])
		*tint = palette.Tint(velocities[ref.Index])
	}
}
