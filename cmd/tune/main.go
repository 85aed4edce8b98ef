// Package main provides CMA-ES search for fluid parameters that settle into
// a stable, near-incompressible rest state.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fluid/config"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval                  int     `csv:"eval"`
	Fitness               float64 `csv:"fitness"`
	DensityRatio          float64 `csv:"density_ratio"`
	SpeedMean             float64 `csv:"speed_mean"`
	Sanitized             int     `csv:"sanitized"`
	PressureMultiplier    float64 `csv:"pressure_multiplier"`
	NegativePressureScale float64 `csv:"negative_pressure_scale"`
	ViscosityStrength     float64 `csv:"viscosity_strength"`
	BoundaryDamping       float64 `csv:"boundary_damping"`
	Drag                  float64 `csv:"drag"`
}

// formatDuration formats a duration as 1h02m03s or 2m03s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for results")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	evals := baseCfg.Tune.Evaluations
	if *maxEvals > 0 {
		evals = *maxEvals
	}

	if err := run(baseCfg, *outputDir, evals, *seeds, *population); err != nil {
		slog.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(baseCfg *config.Config, outputDir string, maxEvals, seeds, population int) error {
	params := NewParamVector(baseCfg.Fluid)

	evalSeeds := make([]int64, max(seeds, 1))
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
	}

	logPath := filepath.Join(outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			last := evaluator.LastResult()
			rec := EvalRecord{
				Eval:                  evalCount,
				Fitness:               fitness,
				SpeedMean:             last.speedMean,
				Sanitized:             last.sanitized,
				PressureMultiplier:    raw[0],
				NegativePressureScale: raw[1],
				ViscosityStrength:     raw[2],
				BoundaryDamping:       raw[3],
				Drag:                  raw[4],
			}
			if target := baseCfg.Fluid.TargetDensity; target > 0 {
				rec.DensityRatio = last.density.Max / target
			}
			records := []EvalRecord{rec}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(records, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(records, logFile)
			}
			if werr != nil {
				slog.Warn("failed to write eval record", "error", werr)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: fitness=%.4f ratio=%.3f speed=%.1f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, maxEvals, fitness, rec.DensityRatio, rec.SpeedMean, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", dim, popSize, maxEvals)
	fmt.Printf("Seeds per evaluation: %d, steps per run: %d, particles: %d\n",
		len(evalSeeds), baseCfg.Tune.Steps, baseCfg.Tune.Particles)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestCfg := *baseCfg
	bestCfg.Fluid = params.Apply(baseCfg.Fluid, bestParams)
	if err := bestCfg.Fluid.Validate(); err != nil {
		return fmt.Errorf("best parameters: %w", err)
	}

	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	return nil
}
