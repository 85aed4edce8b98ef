package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFieldStats(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5, 0.3, 0.7, 0.2, 0.4, 0.6, 0.8, 1.0}
	s := ComputeFieldStats(values)

	if math.Abs(s.Mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", s.Mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(s.Std-math.Sqrt(0.0825)) > 1e-9 {
		t.Errorf("std = %v, want %v", s.Std, math.Sqrt(0.0825))
	}
	if math.Abs(s.P50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", s.P50)
	}
	if math.Abs(s.P90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", s.P90)
	}
	if s.Max != 1.0 {
		t.Errorf("max = %v, want 1", s.Max)
	}
	// Input left unsorted
	if values[0] != 0.9 {
		t.Error("ComputeFieldStats modified its input")
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	if s := ComputeFieldStats(nil); s != (FieldStats{}) {
		t.Errorf("empty slice should return zeros, got %+v", s)
	}
}

func TestKineticEnergyAndCenterOfMass(t *testing.T) {
	vels := []r2.Vec{{X: 3, Y: 4}, {X: 0, Y: 0}, {X: -1, Y: 0}}
	if e := KineticEnergy(vels, 2); math.Abs(e-26) > 1e-12 {
		t.Errorf("kinetic energy = %v, want 26", e)
	}

	com := CenterOfMass([]r2.Vec{{X: 0, Y: 0}, {X: 4, Y: 2}})
	if com != (r2.Vec{X: 2, Y: 1}) {
		t.Errorf("center of mass = %v", com)
	}
	if com := CenterOfMass(nil); com != (r2.Vec{}) {
		t.Errorf("empty center of mass = %v", com)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(1.0)

	for i := 0; i < 9; i++ {
		c.RecordStep(0.1, 0, 0, 0)
	}
	if c.ShouldFlush() {
		t.Fatal("flushed before the window elapsed")
	}
	c.RecordStep(0.1, 1, 2, 3)
	c.RecordStep(0.1, 0, 0, 0)
	if !c.ShouldFlush() {
		t.Fatal("expected flush after the window elapsed")
	}

	sample := FieldSample{
		Positions:     []r2.Vec{{X: 0, Y: -10}, {X: 0, Y: 10}},
		Velocities:    []r2.Vec{{X: 0, Y: 2}, {X: 0, Y: 0}},
		Densities:     []float64{0.01, 0.03},
		Mass:          1,
		TargetDensity: 0.01,
	}
	stats := c.Flush(11, sample)

	if stats.Steps != 11 || stats.Particles != 2 {
		t.Errorf("steps=%d particles=%d", stats.Steps, stats.Particles)
	}
	if stats.SanitizedDensity != 1 || stats.SanitizedForce != 2 || stats.SanitizedPosition != 3 {
		t.Errorf("sanitised counts not carried: %+v", stats)
	}
	if stats.Healthy() {
		t.Error("window with sanitised particles should not be healthy")
	}
	if math.Abs(stats.DensityRatio-3) > 1e-9 {
		t.Errorf("density ratio = %v, want 3", stats.DensityRatio)
	}
	if stats.SpeedMax != 2 || stats.KineticEnergy != 2 {
		t.Errorf("speed max %v, kinetic %v", stats.SpeedMax, stats.KineticEnergy)
	}
	if stats.CenterOfMassY != 0 {
		t.Errorf("com_y = %v", stats.CenterOfMassY)
	}

	// Counters reset
	c.RecordStep(0.1, 0, 0, 0)
	next := c.Flush(12, FieldSample{})
	if next.WindowStartTick != 11 || next.Steps != 1 || !next.Healthy() {
		t.Errorf("second window not reset: %+v", next)
	}
	if math.Abs(c.SimTime()-1.2) > 1e-9 {
		t.Errorf("sim time = %v, want 1.2", c.SimTime())
	}
}
