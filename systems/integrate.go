package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
)

// Integrate advances particles [i0, i1) by dt with semi-implicit Euler and
// resolves boundary collisions. Velocity is updated before position.
func Integrate(i0, i1 int, p *components.Particles, params *config.FluidConfig, bounds components.Bounds, dt float64) SanitizeCounts {
	var counts SanitizeCounts
	invMass := 1 / params.ParticleMass
	retain := 1 - params.Drag

	for i := i0; i < i1; i++ {
		oldPos := p.Positions[i]

		vel := r2.Add(p.Velocities[i], r2.Scale(invMass*dt, p.Forces[i]))
		vel = r2.Scale(retain, vel)
		pos := r2.Add(oldPos, r2.Scale(dt, vel))

		if !finiteVec(vel) || !finiteVec(pos) {
			pos = oldPos
			vel = r2.Vec{}
			counts.Position++
		}

		p.Positions[i], p.Velocities[i] = ResolveBoundary(pos, vel, bounds, params.BoundaryDamping, params.FloorRestSpeed)
	}

	return counts
}

// ResolveBoundary clamps pos into bounds. A velocity component moving out
// through a wall is reflected and scaled by damping.
//
// At the floor (Min.Y) a rebound slower than restSpeed is dropped so that a
// particle pressed down by gravity comes to rest on the floor instead of
// micro-bouncing through it. Non-finite coordinates snap to the bounds centre.
func ResolveBoundary(pos, vel r2.Vec, b components.Bounds, damping, restSpeed float64) (r2.Vec, r2.Vec) {
	if math.IsNaN(pos.X) || math.IsInf(pos.X, 0) {
		pos.X = (b.Min.X + b.Max.X) / 2
		vel.X = 0
	}
	if math.IsNaN(pos.Y) || math.IsInf(pos.Y, 0) {
		pos.Y = (b.Min.Y + b.Max.Y) / 2
		vel.Y = 0
	}

	if pos.X < b.Min.X {
		pos.X = b.Min.X
		if vel.X < 0 {
			vel.X = -vel.X * damping
		}
	} else if pos.X > b.Max.X {
		pos.X = b.Max.X
		if vel.X > 0 {
			vel.X = -vel.X * damping
		}
	}

	if pos.Y < b.Min.Y {
		pos.Y = b.Min.Y
		if vel.Y < 0 {
			rebound := -vel.Y * damping
			if rebound < restSpeed {
				rebound = 0
			}
			vel.Y = rebound
		}
	} else if pos.Y > b.Max.Y {
		pos.Y = b.Max.Y
		if vel.Y > 0 {
			vel.Y = -vel.Y * damping
		}
	}

	return pos, vel
}
