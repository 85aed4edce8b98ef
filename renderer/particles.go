// Package renderer draws the fluid with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/systems"
)

// ParticleRenderer draws render entities as filled circles.
type ParticleRenderer struct {
	radius float32
}

// NewParticleRenderer creates a renderer drawing particles of the given
// world radius.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{radius: radius}
}

// Draw renders every entity at its synced screen position and tint.
// zoom converts the world radius to pixels.
func (r *ParticleRenderer) Draw(filter *systems.VisualFilter, zoom float32) {
	size := r.radius * zoom
	if size < 1 {
		size = 1
	}

	query := filter.Query()
	for query.Next() {
		_, sp, tint := query.Get()
		rl.DrawCircleV(
			rl.Vector2{X: sp.X, Y: sp.Y},
			size,
			rl.Color{R: tint.R, G: tint.G, B: tint.B, A: tint.A},
		)
	}
}
