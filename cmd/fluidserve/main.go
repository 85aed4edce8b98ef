// Command fluidserve runs the simulation headless and streams frames to
// websocket clients, which may send pointer input back.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sim"
	"github.com/pthm-cable/fluid/stream"
	"github.com/pthm-cable/fluid/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *addr != "" {
		cfg.Stream.Addr = *addr
	}

	if err := run(cfg, *outputDir, *logStats); err != nil {
		slog.Error("stream stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, logStats bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	opts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Perf = perf
	s, err := sim.New(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer output.Close()

	runner := sim.NewRunner(s, sim.RunnerOptions{
		// One solver frame per broadcast frame
		Clock: sim.Clock{
			FixedDT:  cfg.Integration.FixedDT,
			Substeps: cfg.Integration.Substeps,
		},
		Params:          cfg.Fluid,
		Seed:            opts.Seed,
		Perf:            perf,
		StatsWindowSec:  cfg.Telemetry.StatsWindow,
		Output:          output,
		LogStats:        logStats,
		PerfLogInterval: cfg.Telemetry.PerfLogInterval,
	})

	return stream.NewServer(runner, stream.OptionsFromConfig(cfg)).Run(ctx, cfg.Stream.Addr)
}
