package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// pickRadius is the screen distance within which a middle click selects a particle.
const pickRadius = 12

// frameTime returns the last frame duration in seconds.
func frameTime() float64 {
	return float64(rl.GetFrameTime())
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		g.stepOnce = true
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.reset(systems.LayoutRandom)
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.reset(systems.LayoutGrid)
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot("manual")
	}

	// Parameter and overlay panels share the left column
	if rl.IsKeyPressed(rl.KeyTab) {
		if g.paramPanel.Toggle() {
			g.controlsPanel.SetVisible(false)
		}
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if g.controlsPanel.Toggle() && g.paramPanel.IsVisible() {
			g.paramPanel.Toggle()
		}
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCameraInput()
	g.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.statsPanel.SetPosition(int32(w)-250, int32(h)-160)
	g.perfPanel.SetPosition(int32(w)-250, int32(h)-290)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse turns mouse buttons into the pointer interaction. Clicks on
// panels never reach the fluid.
func (g *Game) handleMouse() {
	g.interaction = components.Interaction{}

	mouse := rl.GetMousePosition()
	if g.overPanel(mouse.X, mouse.Y) {
		return
	}
	at := g.camera.Unproject(mouse.X, mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		g.inspector.Select(g.runner.Sim().Positions(), at, float64(pickRadius/g.camera.Zoom))
	}

	var sign components.InteractionSign
	switch {
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		sign = components.InteractionAttract
	case rl.IsMouseButtonDown(rl.MouseButtonRight):
		sign = components.InteractionRepel
	default:
		return
	}
	g.interaction = components.Interaction{Position: at, Active: true, Sign: sign}
}

func (g *Game) overPanel(x, y float32) bool {
	return g.paramPanel.OverPanel(x, y, g.Params()) || g.inspector.OverPanel(x, y)
}
