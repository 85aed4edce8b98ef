package sim

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Clock  Clock
	Params config.FluidConfig
	Seed   int64 // recorded in snapshots

	Perf           *telemetry.PerfCollector // nil = private collector
	StatsWindowSec float64
	Output         *telemetry.OutputManager // nil = no CSV output

	LogStats        bool
	PerfLogInterval int // ticks between perf log lines, 0 = off
}

// FrameResult summarises one call to Frame.
type FrameResult struct {
	Steps     int
	Sanitized systems.SanitizeCounts
}

// Runner drives a Simulation frame by frame for a host. It owns the live
// parameter set and feeds every completed step into telemetry.
type Runner struct {
	sim    *Simulation
	clock  Clock
	params config.FluidConfig
	seed   int64

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	logStats        bool
	perfLogInterval int
	sinceLog        int

	lastWindow telemetry.WindowStats
	hasWindow  bool
}

// NewRunner wraps a simulation. The simulation should share opts.Perf so
// its phase timings land in the same samples.
func NewRunner(s *Simulation, opts RunnerOptions) *Runner {
	perf := opts.Perf
	if perf == nil {
		perf = telemetry.NewPerfCollector(0)
	}
	return &Runner{
		sim:             s,
		clock:           opts.Clock,
		params:          opts.Params,
		seed:            opts.Seed,
		perf:            perf,
		collector:       telemetry.NewCollector(opts.StatsWindowSec),
		output:          opts.Output,
		logStats:        opts.LogStats,
		perfLogInterval: opts.PerfLogInterval,
	}
}

// Sim returns the wrapped simulation.
func (r *Runner) Sim() *Simulation { return r.sim }

// Params returns the live parameter set. Edits apply from the next step.
func (r *Runner) Params() *config.FluidConfig { return &r.params }

// Perf returns the perf collector.
func (r *Runner) Perf() *telemetry.PerfCollector { return r.perf }

// SimTime returns the simulated seconds recorded so far.
func (r *Runner) SimTime() float64 { return r.collector.SimTime() }

// LastWindow returns the most recently flushed stats window.
func (r *Runner) LastWindow() (telemetry.WindowStats, bool) {
	return r.lastWindow, r.hasWindow
}

// Frame advances the simulation by one rendered frame of frameTime seconds.
// A step error stops the frame early and is returned with the partial result.
func (r *Runner) Frame(frameTime float64, in components.Interaction) (FrameResult, error) {
	var res FrameResult
	dt, n := r.clock.Steps(frameTime)

	for range n {
		r.perf.StartTick()
		stats, err := r.sim.Step(dt, r.params, in)
		if err != nil {
			r.perf.EndTick()
			return res, err
		}
		if stats.Stepped {
			res.Steps++
			r.collector.RecordStep(stats.DT, stats.Sanitized.Density, stats.Sanitized.Force, stats.Sanitized.Position)
		}
		res.Sanitized.Add(stats.Sanitized)

		r.perf.StartPhase(telemetry.PhaseTelemetry)
		r.flushTelemetry()
		r.perf.EndTick()

		r.logPerf()
	}
	return res, nil
}

// flushTelemetry closes the stats window once it has covered its duration.
func (r *Runner) flushTelemetry() {
	if !r.collector.ShouldFlush() {
		return
	}

	stats := r.collector.Flush(r.sim.Tick(), telemetry.FieldSample{
		Positions:     r.sim.Positions(),
		Velocities:    r.sim.Velocities(),
		Densities:     r.sim.Densities(),
		Mass:          r.params.ParticleMass,
		TargetDensity: r.params.TargetDensity,
	})
	perfStats := r.perf.Stats()
	r.lastWindow = stats
	r.hasWindow = true

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if !stats.Healthy() {
		slog.Warn("unhealthy stats window", "window", stats)
	}

	if err := r.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

func (r *Runner) logPerf() {
	if r.perfLogInterval <= 0 {
		return
	}
	r.sinceLog++
	if r.sinceLog < r.perfLogInterval {
		return
	}
	r.sinceLog = 0
	slog.Info("perf", "tick", r.sim.Tick(), "stats", r.perf.Stats())
}

// Snapshot captures the particle state and live parameters.
func (r *Runner) Snapshot(label string) *telemetry.Snapshot {
	b := r.sim.Bounds()
	return &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   r.seed,
		BoundsMin: [2]float64{b.Min.X, b.Min.Y},
		BoundsMax: [2]float64{b.Max.X, b.Max.Y},
		Tick:      r.sim.Tick(),
		Label:     label,
		Fluid:     r.params,
		Particles: r.sim.Snapshot(nil),
	}
}

// Restore loads a snapshot's particles and parameters. A snapshot taken with
// different bounds still loads; its particles are pulled inside.
func (r *Runner) Restore(snap *telemetry.Snapshot) error {
	if err := snap.Fluid.Validate(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	b := r.sim.Bounds()
	if snap.BoundsMin != [2]float64{b.Min.X, b.Min.Y} || snap.BoundsMax != [2]float64{b.Max.X, b.Max.Y} {
		slog.Warn("snapshot bounds differ from simulation",
			"snapshot_min", snap.BoundsMin, "snapshot_max", snap.BoundsMax,
			"bounds_min", b.Min, "bounds_max", b.Max,
		)
	}
	r.params = snap.Fluid
	r.sim.Restore(snap.Particles, snap.Tick)
	slog.Info("restored snapshot", "tick", snap.Tick, "particles", len(snap.Particles))
	return nil
}
