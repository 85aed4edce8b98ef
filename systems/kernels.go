package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kernels evaluates the 2D smoothing kernels for one smoothing radius.
// Coefficients are computed once per step from the parameter snapshot.
//
// Every kernel is normalised so its integral over the disc of radius H is 1,
// and every kernel and gradient is exactly zero for r >= H.
type Kernels struct {
	H   float64
	HSq float64

	poly6Coef     float64 // 4 / (pi h^8)
	spikyCoef     float64 // 10 / (pi h^5)
	spikyGradCoef float64 // 30 / (pi h^5)
	viscLapCoef   float64 // 40 / (pi h^5)
}

// NewKernels precomputes the coefficients for smoothing radius h (> 0).
func NewKernels(h float64) Kernels {
	h2 := h * h
	h5 := h2 * h2 * h
	h8 := h5 * h2 * h
	return Kernels{
		H:             h,
		HSq:           h2,
		poly6Coef:     4 / (math.Pi * h8),
		spikyCoef:     10 / (math.Pi * h5),
		spikyGradCoef: 30 / (math.Pi * h5),
		viscLapCoef:   40 / (math.Pi * h5),
	}
}

// Poly6 is the density kernel, evaluated on squared distance.
func (k Kernels) Poly6(distSq float64) float64 {
	if distSq >= k.HSq {
		return 0
	}
	d := k.HSq - distSq
	return k.poly6Coef * d * d * d
}

// Spiky is the pressure kernel value.
func (k Kernels) Spiky(r float64) float64 {
	if r >= k.H {
		return 0
	}
	d := k.H - r
	return k.spikyCoef * d * d * d
}

// SpikyGrad returns the magnitude of the spiky kernel gradient.
// The gradient points from the neighbour towards the particle; callers
// supply that direction.
func (k Kernels) SpikyGrad(r float64) float64 {
	if r >= k.H {
		return 0
	}
	d := k.H - r
	return k.spikyGradCoef * d * d
}

// ViscosityLaplacian is the Laplacian of the viscosity kernel.
func (k Kernels) ViscosityLaplacian(r float64) float64 {
	if r >= k.H {
		return 0
	}
	return k.viscLapCoef * (k.H - r)
}

// Direction returns delta/r, or the zero vector for coincident points.
func Direction(delta r2.Vec, r float64) r2.Vec {
	if r <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/r, delta)
}
