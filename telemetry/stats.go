package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`
	Steps     int `csv:"steps"`

	// Density distribution (sampled at window end)
	DensityMean  float64 `csv:"density_mean"`
	DensityStd   float64 `csv:"density_std"`
	DensityP50   float64 `csv:"density_p50"`
	DensityP90   float64 `csv:"density_p90"`
	DensityRatio float64 `csv:"density_ratio"` // Max density / target density

	// Motion (sampled at window end)
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedP90      float64 `csv:"speed_p90"`
	SpeedMax      float64 `csv:"speed_max"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	CenterOfMassY float64 `csv:"com_y"`

	// Numerical health during window
	SanitizedDensity  int `csv:"sanitized_density"`
	SanitizedForce    int `csv:"sanitized_force"`
	SanitizedPosition int `csv:"sanitized_position"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// FieldStats summarises a scalar particle field.
type FieldStats struct {
	Mean, Std     float64
	P50, P90, Max float64
}

// ComputeFieldStats calculates mean, population std, percentiles and max.
// The input is not modified.
func ComputeFieldStats(values []float64) FieldStats {
	n := len(values)
	if n == 0 {
		return FieldStats{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return FieldStats{
		Mean: mean,
		Std:  std,
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  floats.Max(sorted),
	}
}

// Speeds writes the magnitude of each velocity into dst and returns it.
func Speeds(dst []float64, velocities []r2.Vec) []float64 {
	dst = dst[:0]
	for _, v := range velocities {
		dst = append(dst, r2.Norm(v))
	}
	return dst
}

// KineticEnergy returns sum(m |v|^2 / 2).
func KineticEnergy(velocities []r2.Vec, mass float64) float64 {
	var e float64
	for _, v := range velocities {
		e += r2.Norm2(v)
	}
	return 0.5 * mass * e
}

// CenterOfMass returns the mean position, or the zero vector for no particles.
func CenterOfMass(positions []r2.Vec) r2.Vec {
	if len(positions) == 0 {
		return r2.Vec{}
	}
	var c r2.Vec
	for _, p := range positions {
		c = r2.Add(c, p)
	}
	return r2.Scale(1/float64(len(positions)), c)
}

// Healthy reports whether the window saw no numerical instability and
// produced only finite values.
func (s WindowStats) Healthy() bool {
	if s.SanitizedDensity+s.SanitizedForce+s.SanitizedPosition > 0 {
		return false
	}
	for _, v := range []float64{s.DensityMean, s.DensityStd, s.SpeedMax, s.KineticEnergy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("steps", s.Steps),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_ratio", s.DensityRatio),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("com_y", s.CenterOfMassY),
		slog.Int("sanitized_density", s.SanitizedDensity),
		slog.Int("sanitized_force", s.SanitizedForce),
		slog.Int("sanitized_position", s.SanitizedPosition),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
