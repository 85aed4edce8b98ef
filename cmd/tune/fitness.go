package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sim"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
)

// Score weights. A run that needed sanitising is never preferred over a
// stable one.
const (
	unstablePenalty = 1e6
	settleSpeed     = 50.0 // mean speed counted as one unit of unrest
)

// runResult holds the state measured at the end of one run.
type runResult struct {
	density   telemetry.FieldStats
	speedMean float64
	sanitized int
}

// FitnessEvaluator runs headless simulations and scores parameter vectors.
type FitnessEvaluator struct {
	params    *ParamVector
	base      *config.Config
	steps     int
	particles int
	seeds     []int64
	quiet     *slog.Logger

	mu         sync.Mutex
	lastResult runResult
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, base *config.Config, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:    params,
		base:      base,
		steps:     base.Tune.Steps,
		particles: base.Tune.Particles,
		seeds:     seeds,
		quiet:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastResult returns the first seed's measurements from the most recent Evaluate call.
func (fe *FitnessEvaluator) LastResult() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult
}

// Evaluate scores a raw parameter vector (lower = better), averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fluid := fe.params.Apply(fe.base.Fluid, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fe.runSimulation(fluid, seed)
		}()
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		total += score(r, fluid.TargetDensity)
	}

	fe.mu.Lock()
	if len(results) > 0 {
		fe.lastResult = results[0]
	}
	fe.mu.Unlock()

	return total / float64(max(len(results), 1))
}

// runSimulation scatters seeded random fluid and lets it settle.
func (fe *FitnessEvaluator) runSimulation(fluid config.FluidConfig, seed int64) runResult {
	opts, err := sim.OptionsFromConfig(fe.base)
	if err != nil {
		return runResult{sanitized: 1}
	}
	opts.Count = fe.particles
	opts.Layout = systems.LayoutRandom
	opts.Seed = seed
	opts.Workers = 1
	opts.Logger = fe.quiet

	s, err := sim.New(opts)
	if err != nil {
		return runResult{sanitized: 1}
	}
	defer s.Close()

	dt := fe.base.Integration.FixedDT
	if !(dt > 0) {
		dt = 0.002
	}

	var res runResult
	for range fe.steps {
		stats, err := s.Step(dt, fluid, components.Interaction{})
		if err != nil {
			return runResult{sanitized: 1}
		}
		res.sanitized += stats.Sanitized.Total()
	}

	res.density = telemetry.ComputeFieldStats(s.Densities())
	speeds := telemetry.Speeds(nil, s.Velocities())
	res.speedMean = telemetry.ComputeFieldStats(speeds).Mean
	return res
}

// score rewards a settled, near-incompressible fluid: peak density close to
// the target, uniform density and little residual motion.
func score(r runResult, target float64) float64 {
	if r.sanitized > 0 {
		return unstablePenalty + float64(r.sanitized)
	}
	vals := []float64{r.density.Max, r.density.Mean, r.density.Std, r.speedMean}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return unstablePenalty
		}
	}

	var compress, spread float64
	if target > 0 {
		compress = r.density.Max/target - 1
	}
	if r.density.Mean > 0 {
		spread = r.density.Std / r.density.Mean
	}
	unrest := r.speedMean / settleSpeed

	return compress*compress + spread*spread + unrest*unrest
}
