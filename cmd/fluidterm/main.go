// Command fluidterm runs the simulation in a terminal.
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
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	particles := flag.Int("particles", 1500, "Particle count (-1 = use config)")
	fps := flag.Int("fps", 30, "Frames per second")
	logPath := flag.String("log", "fluidterm.log", "Log file; the terminal itself is taken over")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *particles >= 0 {
		cfg.Particles.Count = *particles
	}

	if err := run(cfg, *fps); err != nil {
		slog.Error("terminal stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, fps int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	opts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	s, err := sim.New(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	palette, err := systems.NewPalette(cfg.Render.Palette, cfg.Render.Steps, cfg.Render.MaxSpeed)
	if err != nil {
		return err
	}

	runner := sim.NewRunner(s, sim.RunnerOptions{
		Clock:          sim.ClockFromConfig(cfg.Integration),
		Params:         cfg.Fluid,
		Seed:           opts.Seed,
		StatsWindowSec: cfg.Telemetry.StatsWindow,
	})
	return terminal.New(runner, palette, cfg.Particles.Count, fps).Run(ctx)
}
