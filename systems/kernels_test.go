package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestKernelsNormalised(t *testing.T) {
	for _, h := range []float64{0.5, 1, 20, 37.5} {
		k := NewKernels(h)

		tests := []struct {
			name string
			w    func(r float64) float64
		}{
			{"poly6", func(r float64) float64 { return k.Poly6(r * r) }},
			{"spiky", k.Spiky},
		}
		for _, tt := range tests {
			// Integral over the disc: 2 pi r W(r) dr
			got := quad.Fixed(func(r float64) float64 {
				return 2 * math.Pi * r * tt.w(r)
			}, 0, h, 32, nil, 0)
			if math.Abs(got-1) > 1e-9 {
				t.Errorf("%s h=%g: integral = %.12f, want 1", tt.name, h, got)
			}
		}
	}
}

func TestKernelsZeroOutsideSupport(t *testing.T) {
	k := NewKernels(20)

	for _, r := range []float64{20, 20.0000001, 25, 1e9, math.Inf(1)} {
		if v := k.Poly6(r * r); v != 0 {
			t.Errorf("Poly6(%g) = %g, want 0", r, v)
		}
		if v := k.Spiky(r); v != 0 {
			t.Errorf("Spiky(%g) = %g, want 0", r, v)
		}
		if v := k.SpikyGrad(r); v != 0 {
			t.Errorf("SpikyGrad(%g) = %g, want 0", r, v)
		}
		if v := k.ViscosityLaplacian(r); v != 0 {
			t.Errorf("ViscosityLaplacian(%g) = %g, want 0", r, v)
		}
	}
}

func TestKernelsContinuousAtCutoff(t *testing.T) {
	k := NewKernels(20)
	r := 20 - 1e-9

	if v := k.Poly6(r * r); v > 1e-12 {
		t.Errorf("Poly6 just inside cutoff = %g, expected ~0", v)
	}
	if v := k.SpikyGrad(r); v > 1e-12 {
		t.Errorf("SpikyGrad just inside cutoff = %g, expected ~0", v)
	}
	if v := k.ViscosityLaplacian(r); v > 1e-12 {
		t.Errorf("ViscosityLaplacian just inside cutoff = %g, expected ~0", v)
	}
}

func TestKernelsMonotone(t *testing.T) {
	k := NewKernels(10)
	prev := math.Inf(1)
	for r := 0.0; r < 10; r += 0.5 {
		v := k.Poly6(r * r)
		if v <= 0 || v >= prev {
			t.Fatalf("Poly6 not strictly decreasing at r=%g: %g (prev %g)", r, v, prev)
		}
		prev = v
	}
}

func TestSpikyGradMatchesDerivative(t *testing.T) {
	k := NewKernels(20)
	const eps = 1e-6
	for _, r := range []float64{1, 5, 10, 19} {
		numeric := -(k.Spiky(r+eps) - k.Spiky(r-eps)) / (2 * eps)
		if math.Abs(numeric-k.SpikyGrad(r)) > 1e-6*k.SpikyGrad(r)+1e-12 {
			t.Errorf("r=%g: SpikyGrad=%g, numeric=%g", r, k.SpikyGrad(r), numeric)
		}
	}
}

func TestDirection(t *testing.T) {
	if d := Direction(r2.Vec{}, 0); d != (r2.Vec{}) {
		t.Errorf("expected zero direction for coincident points, got %v", d)
	}

	d := Direction(r2.Vec{X: 3, Y: 4}, 5)
	if math.Abs(d.X-0.6) > 1e-12 || math.Abs(d.Y-0.8) > 1e-12 {
		t.Errorf("expected (0.6, 0.8), got %v", d)
	}
}
