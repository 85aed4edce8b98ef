package telemetry

import "gonum.org/v1/gonum/spatial/r2"

// Collector accumulates per-step events within windows of simulated time
// and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick uint64
	windowElapsed   float64
	simTime         float64

	// Event counters for current window
	steps             int
	sanitizedDensity  int
	sanitizedForce    int
	sanitizedPosition int

	speeds []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordStep records one completed step of simulated length dt together with
// the number of particles sanitised in each phase.
func (c *Collector) RecordStep(dt float64, density, force, position int) {
	c.steps++
	c.windowElapsed += dt
	c.simTime += dt
	c.sanitizedDensity += density
	c.sanitizedForce += force
	c.sanitizedPosition += position
}

// ShouldFlush returns true once the current window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.windowElapsed >= c.windowDurationSec
}

// SimTime returns the total simulated time recorded.
func (c *Collector) SimTime() float64 {
	return c.simTime
}

// FieldSample is the particle state sampled at the end of a window.
type FieldSample struct {
	Positions     []r2.Vec
	Velocities    []r2.Vec
	Densities     []float64
	Mass          float64
	TargetDensity float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick uint64, sample FieldSample) WindowStats {
	density := ComputeFieldStats(sample.Densities)
	c.speeds = Speeds(c.speeds, sample.Velocities)
	speed := ComputeFieldStats(c.speeds)

	var ratio float64
	if sample.TargetDensity > 0 {
		ratio = density.Max / sample.TargetDensity
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      c.simTime,

		Particles: len(sample.Positions),
		Steps:     c.steps,

		DensityMean:  density.Mean,
		DensityStd:   density.Std,
		DensityP50:   density.P50,
		DensityP90:   density.P90,
		DensityRatio: ratio,

		SpeedMean:     speed.Mean,
		SpeedP90:      speed.P90,
		SpeedMax:      speed.Max,
		KineticEnergy: KineticEnergy(sample.Velocities, sample.Mass),
		CenterOfMassY: CenterOfMass(sample.Positions).Y,

		SanitizedDensity:  c.sanitizedDensity,
		SanitizedForce:    c.sanitizedForce,
		SanitizedPosition: c.sanitizedPosition,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowElapsed = 0
	c.steps = 0
	c.sanitizedDensity = 0
	c.sanitizedForce = 0
	c.sanitizedPosition = 0

	return stats
}
