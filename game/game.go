// Package game hosts the fluid simulation in a raylib window, or headless.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/inspector"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/sim"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

const controlsLegend = "LMB attract | RMB repel | MMB inspect | Space pause | N step | R/G reset | S snapshot | Tab params | C overlays | Arrows/wheel camera"

// Game holds the host state around one simulation.
type Game struct {
	cfg      *config.Config
	runner   *sim.Runner
	defaults config.FluidConfig

	interaction components.Interaction

	// Render-side world: one entity per particle
	world        *ecs.World
	visualMapper *ecs.Map3[components.ParticleRef, components.ScreenPos, components.Tint]
	visualFilter *systems.VisualFilter
	visuals      []ecs.Entity

	palette *systems.Palette

	// Graphics (nil when headless)
	camera            *camera.Camera
	containerRenderer *renderer.ContainerRenderer
	particleRenderer  *renderer.ParticleRenderer
	velocityRenderer  *renderer.VelocityRenderer
	fieldRenderer     *renderer.FieldRenderer
	inspector         *inspector.Inspector
	paramPanel        *inspector.ParamPanel
	hud               *ui.HUD
	perfPanel         *ui.PerfPanel
	controlsPanel     *ui.ControlsPanel
	statsPanel        *ui.FluidStatsPanel
	overlays          *ui.OverlayRegistry

	output      *telemetry.OutputManager
	snapshotDir string

	headless       bool
	paused         bool
	stepOnce       bool
	stepsPerUpdate int
	lastFrame      sim.FrameResult

	screenWidth, screenHeight float32
}

// NewGame builds the simulation and, unless headless, the graphics state.
// The raylib window must already be open for graphical mode.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	simOpts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	simOpts.Perf = perf
	s, err := sim.New(simOpts)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	g := &Game{
		cfg:      cfg,
		defaults: cfg.Fluid,
		runner: sim.NewRunner(s, sim.RunnerOptions{
			Clock:           sim.ClockFromConfig(cfg.Integration),
			Params:          cfg.Fluid,
			Seed:            simOpts.Seed,
			Perf:            perf,
			StatsWindowSec:  statsWindow,
			Output:          output,
			LogStats:        opts.LogStats,
			PerfLogInterval: cfg.Telemetry.PerfLogInterval,
		}),
		output:         output,
		snapshotDir:    opts.SnapshotDir,
		headless:       opts.Headless,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}

	if opts.RestorePath != "" {
		snap, err := telemetry.LoadSnapshot(opts.RestorePath)
		if err == nil {
			err = g.runner.Restore(snap)
		}
		if err != nil {
			g.Unload()
			return nil, err
		}
	}

	if !g.headless {
		if err := g.initGraphics(); err != nil {
			g.Unload()
			return nil, err
		}
	}

	return g, nil
}

// initGraphics creates the camera, renderers, panels and the visual world.
func (g *Game) initGraphics() error {
	cfg := g.cfg
	palette, err := systems.NewPalette(cfg.Render.Palette, cfg.Render.Steps, cfg.Render.MaxSpeed)
	if err != nil {
		return err
	}
	g.palette = palette

	g.screenWidth = cfg.Derived.ScreenW32
	g.screenHeight = cfg.Derived.ScreenH32
	g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.BoundsMin, cfg.Derived.BoundsMax)

	g.world = ecs.NewWorld()
	g.visualMapper = ecs.NewMap3[components.ParticleRef, components.ScreenPos, components.Tint](g.world)
	g.visualFilter = ecs.NewFilter3[components.ParticleRef, components.ScreenPos, components.Tint](g.world)

	g.containerRenderer = renderer.NewContainerRenderer(12, 18, 28)
	g.particleRenderer = renderer.NewParticleRenderer(float32(cfg.Particles.Radius))
	g.velocityRenderer = renderer.NewVelocityRenderer(4, 0.05)
	g.fieldRenderer = renderer.NewFieldRenderer(128, 72, palette)
	g.fieldRenderer.Init()

	w, h := int32(g.screenWidth), int32(g.screenHeight)
	g.inspector = inspector.NewInspector(w, h)
	g.paramPanel = inspector.NewParamPanel(10, 100)
	g.hud = ui.NewHUD()
	g.controlsPanel = ui.NewControlsPanel(10, 100, 220)
	g.statsPanel = ui.NewFluidStatsPanel(w-250, h-160, 240)
	g.perfPanel = ui.NewPerfPanel(w-250, h-290)
	g.overlays = ui.NewOverlayRegistry()
	g.overlays.SetEnabled(ui.OverlayInteraction, true)

	g.syncVisualEntities()
	return nil
}

// Unload releases the simulation, output files and GPU resources.
func (g *Game) Unload() {
	if g.fieldRenderer != nil {
		g.fieldRenderer.Unload()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.runner.Sim().Close()
}

// Tick returns the number of completed solver steps.
func (g *Game) Tick() uint64 { return g.runner.Sim().Tick() }

// Params returns the live fluid parameters.
func (g *Game) Params() *config.FluidConfig { return g.runner.Params() }

// Update advances one rendered frame: input, solver steps, visual sync.
func (g *Game) Update() {
	g.handleInput()
	g.runner.Perf().RecordFrame()

	if !g.paused || g.stepOnce {
		g.advance(frameTime())
		g.stepOnce = false
	}

	g.syncVisualEntities()
	g.syncVisuals()
}

// UpdateHeadless advances stepsPerUpdate frames without input or drawing.
// Frames are timed at the target frame rate.
func (g *Game) UpdateHeadless() error {
	ft := 1 / float64(max(g.cfg.Screen.TargetFPS, 1))
	for range g.stepsPerUpdate {
		if _, err := g.runner.Frame(ft, components.Interaction{}); err != nil {
			return err
		}
	}
	return nil
}

// advance runs the solver steps for one frame. A step error pauses the host;
// the parameter panel is the usual way out.
func (g *Game) advance(frameTime float64) {
	res, err := g.runner.Frame(frameTime, g.interaction)
	g.lastFrame = res
	if err != nil {
		slog.Error("step failed, pausing", "error", err)
		g.paused = true
	}
}

// reset re-places particles and drops the inspector selection.
func (g *Game) reset(layout systems.Layout) {
	if err := g.runner.Sim().Reset(layout, g.cfg.Particles.Count); err != nil {
		slog.Error("reset failed", "error", err)
		return
	}
	if g.inspector != nil {
		g.inspector.Deselect()
	}
}
