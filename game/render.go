package game

import (
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

var (
	backgroundColor = rl.Color{R: 6, G: 8, B: 12, A: 255}
	gridColor       = rl.Color{R: 80, G: 100, B: 120, A: 50}
	attractColor    = rl.Color{R: 120, G: 200, B: 255, A: 180}
	repelColor      = rl.Color{R: 255, G: 140, B: 100, A: 180}
	interactionIdle = rl.Color{R: 200, G: 200, B: 200, A: 60}
)

// Draw renders the frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	s := g.runner.Sim()
	params := g.Params()
	project := g.camera.Project

	g.containerRenderer.Draw(s.Bounds(), project)
	if g.overlays.IsEnabled(ui.OverlayDensityField) {
		g.fieldRenderer.Draw(s.Bounds(), project, rl.GetFrameTime())
	}
	if g.overlays.IsEnabled(ui.OverlaySpatialGrid) {
		g.drawSpatialGrid(params.SmoothingRadius)
	}

	g.particleRenderer.Draw(g.visualFilter, g.camera.Zoom)

	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.velocityRenderer.Draw(s.Positions(), s.Velocities(), project)
	}
	if g.overlays.IsEnabled(ui.OverlayInteraction) {
		g.drawInteraction(params.MouseRadius)
	}

	g.inspector.DrawSelectionHighlight(s.Positions(), project,
		float32(g.cfg.Particles.Radius)*g.camera.Zoom, float32(params.SmoothingRadius)*g.camera.Zoom)

	g.drawUI()
	rl.EndDrawing()
}

// drawSpatialGrid draws neighbour search cell boundaries across the bounds.
func (g *Game) drawSpatialGrid(cell float64) {
	if !(cell > 0) {
		return
	}
	b := g.runner.Sim().Bounds()
	line := func(a, c r2.Vec) {
		x0, y0 := g.camera.Project(a)
		x1, y1 := g.camera.Project(c)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, gridColor)
	}
	for x := b.Min.X; x <= b.Max.X; x += cell {
		line(r2.Vec{X: x, Y: b.Min.Y}, r2.Vec{X: x, Y: b.Max.Y})
	}
	for y := b.Min.Y; y <= b.Max.Y; y += cell {
		line(r2.Vec{X: b.Min.X, Y: y}, r2.Vec{X: b.Max.X, Y: y})
	}
}

// drawInteraction outlines the pointer's area of effect.
func (g *Game) drawInteraction(radius float64) {
	mouse := rl.GetMousePosition()
	if g.overPanel(mouse.X, mouse.Y) {
		return
	}

	color := interactionIdle
	if g.interaction.Active {
		color = repelColor
		if g.interaction.Sign > 0 {
			color = attractColor
		}
	}
	rl.DrawCircleLines(int32(mouse.X), int32(mouse.Y), float32(radius)*g.camera.Zoom, color)
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	s := g.runner.Sim()
	params := g.Params()

	g.hud.Draw(ui.HUDData{
		Title:     "SPH Fluid",
		Particles: s.Len(),
		Layout:    s.Layout().String(),
		Tick:      s.Tick(),
		SimTime:   g.runner.SimTime(),
		Substeps:  g.lastFrame.Steps,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Sanitized: g.lastFrame.Sanitized.Total(),
	})

	if g.paramPanel.Draw(params, g.defaults) {
		if err := params.Validate(); err != nil {
			slog.Warn("parameter edit rejected by solver", "error", err)
		}
	}
	g.controlsPanel.Draw(g.overlays)

	g.inspector.Draw(s, params.SmoothingRadius, params.TargetDensity)

	if stats, ok := g.runner.LastWindow(); ok {
		g.statsPanel.Draw(stats, params.TargetDensity)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.runner.Perf().Stats())
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

// saveSnapshot writes the current state to the output directory, or to the
// snapshot directory when no output directory is set.
func (g *Game) saveSnapshot(label string) {
	snap := g.runner.Snapshot(label)

	var (
		path string
		err  error
	)
	switch {
	case g.output != nil:
		path, err = g.output.WriteSnapshot(snap)
	case g.snapshotDir != "":
		path, err = telemetry.SaveSnapshot(snap, g.snapshotDir)
	default:
		path, err = telemetry.SaveSnapshot(snap, filepath.Join(".", "snapshots"))
	}
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", snap.Tick, "label", label)
}
