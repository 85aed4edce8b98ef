// Package components defines the data the fluid solver and its hosts share.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particles holds per-particle state as parallel slices.
// A particle is identified by its index, which is stable until the next Resize.
type Particles struct {
	Positions  []r2.Vec
	Velocities []r2.Vec
	Forces     []r2.Vec
	Densities  []float64
	Pressures  []float64
}

// NewParticles allocates n zeroed particles.
func NewParticles(n int) *Particles {
	p := &Particles{}
	p.Resize(n)
	return p
}

// Len returns the particle count.
func (p *Particles) Len() int {
	return len(p.Positions)
}

// Resize sets the particle count to n and zeroes every slot.
// Existing capacity is reused.
func (p *Particles) Resize(n int) {
	p.Positions = resizeVec(p.Positions, n)
	p.Velocities = resizeVec(p.Velocities, n)
	p.Forces = resizeVec(p.Forces, n)
	p.Densities = resizeScalar(p.Densities, n)
	p.Pressures = resizeScalar(p.Pressures, n)
}

func resizeVec(s []r2.Vec, n int) []r2.Vec {
	if cap(s) < n {
		return make([]r2.Vec, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func resizeScalar(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	s = s[:n]
	clear(s)
	return s
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	Min, Max r2.Vec
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint.
func (b Bounds) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside the rectangle, edges included.
func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Inset shrinks the rectangle by margin on every side.
// The result never inverts; an over-large margin collapses to the centre.
func (b Bounds) Inset(margin float64) Bounds {
	mx := math.Min(margin, b.Width()/2)
	my := math.Min(margin, b.Height()/2)
	return Bounds{
		Min: r2.Vec{X: b.Min.X + mx, Y: b.Min.Y + my},
		Max: r2.Vec{X: b.Max.X - mx, Y: b.Max.Y - my},
	}
}

// InteractionSign selects whether an interaction pulls or pushes.
type InteractionSign int8

const (
	InteractionAttract InteractionSign = 1
	InteractionRepel   InteractionSign = -1
)

// Interaction is an externally driven force source such as a mouse pointer.
// The zero value is inactive, and so is an active interaction whose Sign is 0.
// Radius and Strength of 0 are not "no force": they select the fluid
// parameters' MouseRadius and MouseStrength.
type Interaction struct {
	Position r2.Vec
	Active   bool
	Radius   float64 // 0 = use the fluid parameters' mouse radius
	Strength float64 // 0 = use the fluid parameters' mouse strength
	Sign     InteractionSign
}
