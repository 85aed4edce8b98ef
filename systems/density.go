package systems

import (
	"math"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
)

// Scratch holds per-worker reusable buffers.
type Scratch struct {
	Neighbors []Neighbor
}

// SanitizeCounts records particles whose values went non-finite and were reset.
type SanitizeCounts struct {
	Density  int
	Force    int
	Position int
}

// Add accumulates o into c.
func (c *SanitizeCounts) Add(o SanitizeCounts) {
	c.Density += o.Density
	c.Force += o.Force
	c.Position += o.Position
}

// Total returns the number of sanitised values.
func (c SanitizeCounts) Total() int {
	return c.Density + c.Force + c.Position
}

// Pressure applies the equation of state p = k (rho - rho0).
// Tension (negative pressure) is scaled by NegativePressureScale.
func Pressure(density float64, params *config.FluidConfig) float64 {
	p := params.PressureMultiplier * (density - params.TargetDensity)
	if p < 0 {
		p *= params.NegativePressureScale
	}
	return p
}

// ComputeDensities fills Densities and Pressures for particles [i0, i1).
// Only positions are read, so ranges can run concurrently.
func ComputeDensities(i0, i1 int, p *components.Particles, grid *SpatialGrid, k Kernels, params *config.FluidConfig, s *Scratch) SanitizeCounts {
	var counts SanitizeCounts
	m := params.ParticleMass
	self := m * k.Poly6(0)

	for i := i0; i < i1; i++ {
		s.Neighbors = grid.QueryRadiusInto(s.Neighbors[:0], p.Positions[i], k.H, p.Positions)

		// The query includes i itself at distance zero
		rho := 0.0
		for _, n := range s.Neighbors {
			rho += m * k.Poly6(n.DistSq)
		}

		if math.IsNaN(rho) || math.IsInf(rho, 0) || rho <= 0 {
			rho = self
			counts.Density++
		}

		pr := Pressure(rho, params)
		if math.IsNaN(pr) || math.IsInf(pr, 0) {
			pr = 0
			counts.Density++
		}

		p.Densities[i] = rho
		p.Pressures[i] = pr
	}

	return counts
}
