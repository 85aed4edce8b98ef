package game

import (
	"time"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// syncVisualEntities grows or shrinks the render world to one entity per
// particle. Entity i always refers to particle i.
func (g *Game) syncVisualEntities() {
	n := g.runner.Sim().Len()

	for len(g.visuals) < n {
		e := g.visualMapper.NewEntity(
			&components.ParticleRef{Index: len(g.visuals)},
			&components.ScreenPos{},
			&components.Tint{},
		)
		g.visuals = append(g.visuals, e)
	}

	for len(g.visuals) > n {
		last := len(g.visuals) - 1
		g.world.RemoveEntity(g.visuals[last])
		g.visuals = g.visuals[:last]
	}
}

// syncVisuals projects particle state onto the render entities.
func (g *Game) syncVisuals() {
	start := time.Now()

	s := g.runner.Sim()
	systems.SyncVisuals(g.visualFilter, s.Positions(), s.Velocities(), g.camera.Project, g.palette)
	if g.overlays.IsEnabled(ui.OverlayDensityField) {
		g.fieldRenderer.Update(s.Positions(), s.Bounds())
	}

	g.runner.Perf().AddPhase(telemetry.PhaseVisuals, time.Since(start))
}
