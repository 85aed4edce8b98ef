package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// VelocityRenderer draws a velocity segment for a subset of particles.
type VelocityRenderer struct {
	stride int     // draw every stride-th particle
	scale  float32 // world units of line per unit of speed
}

// NewVelocityRenderer creates a velocity renderer.
func NewVelocityRenderer(stride int, scale float32) *VelocityRenderer {
	if stride < 1 {
		stride = 1
	}
	return &VelocityRenderer{stride: stride, scale: scale}
}

// Draw renders velocity segments with additive blending.
func (r *VelocityRenderer) Draw(positions, velocities []r2.Vec, project func(r2.Vec) (float32, float32)) {
	rl.BeginBlendMode(rl.BlendAdditive)

	color := rl.Color{R: 60, G: 120, B: 160, A: 160}
	for i := 0; i < len(positions); i += r.stride {
		p := positions[i]
		tip := r2.Add(p, r2.Scale(float64(r.scale), velocities[i]))

		x0, y0 := project(p)
		x1, y1 := project(tip)
		rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, 1, color)
	}

	rl.EndBlendMode()
}
