package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
)

// PairPressureForce is the pressure force neighbour j exerts on particle i.
// delta is x_i - x_j. The term depends on i and j symmetrically, apart from
// delta, so PairPressureForce(i,j) == -PairPressureForce(j,i).
func PairPressureForce(k Kernels, m, pi, pj, rhoI, rhoJ float64, delta r2.Vec) r2.Vec {
	r := r2.Norm(delta)
	if r <= 0 || r >= k.H {
		return r2.Vec{}
	}
	mag := m * m * (pi + pj) / (2 * rhoI * rhoJ) * k.SpikyGrad(r)
	return r2.Scale(mag, Direction(delta, r))
}

// PairViscosityForce is the viscous force neighbour j exerts on particle i.
// It pulls v_i towards v_j and is antisymmetric in i and j.
func PairViscosityForce(k Kernels, m, mu, rhoI, rhoJ float64, vi, vj r2.Vec, r float64) r2.Vec {
	if r >= k.H {
		return r2.Vec{}
	}
	mag := mu * m * m / (rhoI * rhoJ) * k.ViscosityLaplacian(r)
	return r2.Scale(mag, r2.Sub(vj, vi))
}

// InteractionForce is the pointer force on a particle of mass m at pos.
// It falls off linearly to zero at the interaction radius. An inactive
// interaction or one without a sign contributes nothing; zero radius or
// strength take the parameters' mouse values.
func InteractionForce(pos r2.Vec, m float64, in components.Interaction, params *config.FluidConfig) r2.Vec {
	if !in.Active || in.Sign == 0 {
		return r2.Vec{}
	}
	radius := in.Radius
	if radius <= 0 {
		radius = params.MouseRadius
	}
	strength := in.Strength
	if strength == 0 {
		strength = params.MouseStrength
	}
	sign := float64(in.Sign)

	toPointer := r2.Sub(in.Position, pos)
	d := r2.Norm(toPointer)
	if d <= 0 || d >= radius {
		return r2.Vec{}
	}
	falloff := 1 - d/radius
	return r2.Scale(m*sign*strength*falloff/d, toPointer)
}

// ComputeForces fills Forces for particles [i0, i1).
// Reads positions, velocities, densities and pressures; writes only Forces[i].
func ComputeForces(i0, i1 int, p *components.Particles, grid *SpatialGrid, k Kernels, params *config.FluidConfig, in components.Interaction, s *Scratch) SanitizeCounts {
	var counts SanitizeCounts
	m := params.ParticleMass
	mu := params.ViscosityStrength
	gravity := r2.Scale(m, params.Gravity())

	for i := i0; i < i1; i++ {
		pos := p.Positions[i]
		vel := p.Velocities[i]
		rhoI := p.Densities[i]
		prI := p.Pressures[i]

		s.Neighbors = grid.QueryRadiusInto(s.Neighbors[:0], pos, k.H, p.Positions)

		var f r2.Vec
		for _, n := range s.Neighbors {
			j := n.Index
			if j == i {
				continue
			}
			r := math.Sqrt(n.DistSq)
			rhoJ := p.Densities[j]

			// Delta is x_j - x_i; pressure pushes along x_i - x_j
			f = r2.Add(f, PairPressureForce(k, m, prI, p.Pressures[j], rhoI, rhoJ, r2.Scale(-1, n.Delta)))
			if mu != 0 {
				f = r2.Add(f, PairViscosityForce(k, m, mu, rhoI, rhoJ, vel, p.Velocities[j], r))
			}
		}

		f = r2.Add(f, gravity)
		f = r2.Add(f, InteractionForce(pos, m, in, params))

		if !finiteVec(f) {
			f = r2.Vec{}
			counts.Force++
		}
		p.Forces[i] = f
	}

	return counts
}

func finiteVec(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
