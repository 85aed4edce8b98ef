// Package sim coordinates the SPH solver passes over a particle set.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
)

// ErrInvalidCount is returned for a negative particle count.
var ErrInvalidCount = errors.New("particle count must be >= 0")

// Options configures a new Simulation.
type Options struct {
	Bounds       components.Bounds
	Count        int
	Layout       systems.Layout
	LayoutParams systems.LayoutParams
	Seed         int64

	// Workers is the worker pool size; 0 uses GOMAXPROCS, 1 runs every pass inline.
	Workers int
	// ParallelThreshold is the particle count below which passes run inline.
	ParallelThreshold int

	// Perf receives per-phase timings when set.
	Perf *telemetry.PerfCollector
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	layout, err := systems.ParseLayout(cfg.Particles.Layout)
	if err != nil {
		return Options{}, fmt.Errorf("particles.layout: %w", err)
	}
	return Options{
		Bounds: components.Bounds{Min: cfg.Derived.BoundsMin, Max: cfg.Derived.BoundsMax},
		Count:  cfg.Particles.Count,
		Layout: layout,
		LayoutParams: systems.LayoutParams{
			SpawnMargin:    cfg.Particles.SpawnMargin,
			GridFill:       cfg.Particles.GridFill,
			GridSpacingMin: cfg.Particles.GridSpacingMin,
			GridSpacingMax: cfg.Particles.GridSpacingMax,
		},
		Seed:              cfg.Particles.Seed,
		Workers:           cfg.Derived.Workers,
		ParallelThreshold: cfg.Parallel.Threshold,
	}, nil
}

// StepStats reports what a Step did.
type StepStats struct {
	Tick      uint64  // Tick count after the step
	DT        float64 // Effective time step (frame dt times time scale)
	Stepped   bool    // False when the step was a no-op
	Sanitized systems.SanitizeCounts
}

// Simulation owns the particle set and advances it one step at a time.
// Step, Reset and Restore must be called from a single goroutine; reads of
// particle state are valid between those calls.
type Simulation struct {
	particles *components.Particles
	bounds    components.Bounds
	grid      *systems.SpatialGrid
	pool      *workerPool
	rng       *rand.Rand

	layout       systems.Layout
	layoutParams systems.LayoutParams
	tick         uint64

	// Per-step inputs, set by the coordinator before each pass is dispatched.
	params      config.FluidConfig
	kernels     systems.Kernels
	interaction components.Interaction
	dt          float64

	perf   *telemetry.PerfCollector
	logger *slog.Logger
}

// New creates a simulation and places its initial particles.
func New(opts Options) (*Simulation, error) {
	if opts.Bounds.Width() <= 0 || opts.Bounds.Height() <= 0 {
		return nil, fmt.Errorf("%w: bounds %v..%v are empty", config.ErrInvalidConfig, opts.Bounds.Min, opts.Bounds.Max)
	}
	if opts.Count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, opts.Count)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Simulation{
		particles:    components.NewParticles(0),
		bounds:       opts.Bounds,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		layout:       opts.Layout,
		layoutParams: opts.LayoutParams,
		perf:         opts.Perf,
		logger:       logger,
	}
	// Cell size is replaced by the smoothing radius on the first step
	s.grid = systems.NewSpatialGrid(opts.Bounds, defaultCellSize(opts.Bounds))
	s.pool = newWorkerPool(workers, opts.ParallelThreshold, s.runChunk)

	if err := s.Reset(opts.Layout, opts.Count); err != nil {
		return nil, err
	}
	return s, nil
}

func defaultCellSize(b components.Bounds) float64 {
	return max(b.Width(), b.Height()) / 16
}

// Close stops the worker pool. The simulation can still step afterwards;
// workers restart on demand.
func (s *Simulation) Close() {
	s.pool.stop()
}

// Reset reinitialises count particles in the given layout with zero velocity.
func (s *Simulation) Reset(layout systems.Layout, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	s.particles.Resize(count)
	switch layout {
	case systems.LayoutRandom:
		systems.PlaceRandom(s.particles.Positions, s.bounds, s.layoutParams, s.rng)
	case systems.LayoutGrid:
		systems.PlaceGrid(s.particles.Positions, s.bounds, s.layoutParams)
	default:
		return fmt.Errorf("reset: unknown layout %v", layout)
	}
	s.layout = layout
	s.tick = 0

	s.logger.Info("reset", "layout", layout.String(), "particles", count)
	return nil
}

// Restore replaces the particle set with saved states.
// States outside the bounds are pulled back inside.
func (s *Simulation) Restore(states []telemetry.ParticleState, tick uint64) {
	s.particles.Resize(len(states))
	for i, st := range states {
		pos, vel := systems.ResolveBoundary(st.Position(), st.Velocity(), s.bounds, 0, 0)
		s.particles.Positions[i] = pos
		s.particles.Velocities[i] = vel
	}
	s.tick = tick
}

// Step advances the simulation by dt * params.TimeScale.
//
// Parameters are validated first; an invalid set returns an error and leaves
// the particles untouched. A non-positive effective step or an empty particle
// set is a no-op. Kernel coefficients and grid layout are derived from params
// on every call, so live edits take effect on the next step.
func (s *Simulation) Step(dt float64, params config.FluidConfig, in components.Interaction) (StepStats, error) {
	if err := params.Validate(); err != nil {
		return StepStats{Tick: s.tick}, fmt.Errorf("step: %w", err)
	}

	n := s.particles.Len()
	dtEff := dt * params.TimeScale
	if n == 0 || !(dtEff > 0) {
		return StepStats{Tick: s.tick}, nil
	}

	s.params = params
	s.kernels = systems.NewKernels(params.SmoothingRadius)
	s.interaction = in
	s.dt = dtEff

	var stats StepStats

	// Grid rebuild is coordinator-only; the grid is read-only afterwards
	s.perf.StartPhase(telemetry.PhaseSpatialGrid)
	s.grid.Rebuild(s.particles.Positions, params.SmoothingRadius)

	s.perf.StartPhase(telemetry.PhaseDensity)
	stats.Sanitized.Add(s.pool.runPass(n, passDensity))

	s.perf.StartPhase(telemetry.PhaseForces)
	stats.Sanitized.Add(s.pool.runPass(n, passForces))

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	stats.Sanitized.Add(s.pool.runPass(n, passIntegrate))

	s.tick++
	stats.Tick = s.tick
	stats.DT = dtEff
	stats.Stepped = true

	if stats.Sanitized.Total() > 0 {
		s.logger.Warn("numerical instability",
			"tick", s.tick,
			"density", stats.Sanitized.Density,
			"force", stats.Sanitized.Force,
			"position", stats.Sanitized.Position,
		)
	}

	return stats, nil
}

// runChunk executes one pass over a particle range. Called by pool workers
// and inline by the coordinator.
func (s *Simulation) runChunk(c workChunk, scratch *systems.Scratch) systems.SanitizeCounts {
	switch c.pass {
	case passDensity:
		return systems.ComputeDensities(c.start, c.end, s.particles, s.grid, s.kernels, &s.params, scratch)
	case passForces:
		return systems.ComputeForces(c.start, c.end, s.particles, s.grid, s.kernels, &s.params, s.interaction, scratch)
	case passIntegrate:
		return systems.Integrate(c.start, c.end, s.particles, &s.params, s.bounds, s.dt)
	}
	return systems.SanitizeCounts{}
}

// Len returns the particle count.
func (s *Simulation) Len() int { return s.particles.Len() }

// Tick returns the number of completed steps since the last reset.
func (s *Simulation) Tick() uint64 { return s.tick }

// Bounds returns the simulation domain.
func (s *Simulation) Bounds() components.Bounds { return s.bounds }

// Layout returns the layout used by the last reset.
func (s *Simulation) Layout() systems.Layout { return s.layout }

// Positions returns the live position slice. Callers must not modify it.
func (s *Simulation) Positions() []r2.Vec { return s.particles.Positions }

// Velocities returns the live velocity slice. Callers must not modify it.
func (s *Simulation) Velocities() []r2.Vec { return s.particles.Velocities }

// Densities returns the densities computed by the last step.
func (s *Simulation) Densities() []float64 { return s.particles.Densities }

// Pressures returns the pressures computed by the last step.
func (s *Simulation) Pressures() []float64 { return s.particles.Pressures }

// Snapshot copies the current particle state into dst and returns it.
func (s *Simulation) Snapshot(dst []telemetry.ParticleState) []telemetry.ParticleState {
	return telemetry.NewParticleStates(dst, s.particles.Positions, s.particles.Velocities)
}

// Neighbors returns the indices of particles within radius of pos.
// The grid is rebuilt from current positions, so this must not overlap a Step.
func (s *Simulation) Neighbors(pos r2.Vec, radius float64) []int {
	s.grid.Rebuild(s.particles.Positions, s.grid.CellSize())
	return s.grid.QueryIndices(pos, radius, s.particles.Positions)
}
