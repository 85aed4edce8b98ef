package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorHighlight   = rl.Color{R: 255, G: 220, B: 90, A: 255}
)

// ParticleSource is the read side of a simulation the inspector needs.
type ParticleSource interface {
	Positions() []r2.Vec
	Velocities() []r2.Vec
	Densities() []float64
	Pressures() []float64
	Neighbors(pos r2.Vec, radius float64) []int
}

// ParticleInfo is the inspected state of one particle.
type ParticleInfo struct {
	Index        int     `inspect:"label"`
	X            float64 `inspect:"label,fmt:%.1f"`
	Y            float64 `inspect:"label,fmt:%.1f"`
	VelX         float64 `inspect:"label,fmt:%.1f"`
	VelY         float64 `inspect:"label,fmt:%.1f"`
	Speed        float64 `inspect:"bar,max:400,fmt:%.1f"`
	Density      float64 `inspect:"label,fmt:%.5f"`
	DensityRatio float64 `inspect:"bar,max:3,fmt:%.2f"`
	Pressure     float64 `inspect:"label,fmt:%.1f"`
	Neighbors    int     `inspect:"label"`
}

// Describe gathers the state of particle i. Neighbors are counted within h,
// the particle itself excluded. ok is false if i is out of range.
func Describe(src ParticleSource, i int, h, targetDensity float64) (ParticleInfo, bool) {
	positions := src.Positions()
	if i < 0 || i >= len(positions) {
		return ParticleInfo{}, false
	}
	pos := positions[i]
	vel := src.Velocities()[i]
	rho := src.Densities()[i]

	info := ParticleInfo{
		Index:    i,
		X:        pos.X,
		Y:        pos.Y,
		VelX:     vel.X,
		VelY:     vel.Y,
		Speed:    r2.Norm(vel),
		Density:  rho,
		Pressure: src.Pressures()[i],
	}
	if targetDensity > 0 {
		info.DensityRatio = rho / targetDensity
	}
	if n := len(src.Neighbors(pos, h)); n > 0 {
		info.Neighbors = n - 1
	}
	return info, true
}

// Pick returns the particle nearest to at within radius.
func Pick(positions []r2.Vec, at r2.Vec, radius float64) (int, bool) {
	best := -1
	bestDistSq := radius * radius
	for i, p := range positions {
		if d := r2.Norm2(r2.Sub(p, at)); d <= bestDistSq {
			best, bestDistSq = i, d
		}
	}
	return best, best >= 0
}

// Inspector tracks a selected particle and draws its panel.
type Inspector struct {
	selected     int
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	return &Inspector{
		panelX:       screenWidth - PanelWidth - 10,
		panelY:       10,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
	}
}

// Select picks the particle nearest to the world point, or deselects when
// none is within radius.
func (ins *Inspector) Select(positions []r2.Vec, at r2.Vec, radius float64) {
	ins.selected, ins.hasSelected = Pick(positions, at, radius)
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected particle index.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// OverPanel reports whether a screen point lies on the open panel.
func (ins *Inspector) OverPanel(mouseX, mouseY float32) bool {
	if !ins.hasSelected {
		return false
	}
	return int32(mouseX) >= ins.panelX && int32(mouseX) <= ins.panelX+PanelWidth &&
		int32(mouseY) >= ins.panelY && int32(mouseY) <= ins.panelY+ins.panelHeight()
}

func (ins *Inspector) panelHeight() int32 {
	rows := int32(len(ExtractFields(ParticleInfo{})))
	return HeaderHeight + PanelPadding*2 + rows*18
}

// Draw renders the panel for the selected particle. A selection that no
// longer exists (after a reset to fewer particles) is dropped.
func (ins *Inspector) Draw(src ParticleSource, h, targetDensity float64) {
	if !ins.hasSelected {
		return
	}
	info, ok := Describe(src, ins.selected, h, targetDensity)
	if !ok {
		ins.Deselect()
		return
	}

	panelHeight := ins.panelHeight()
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("PARTICLE #%d", info.Index), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding
	for _, f := range ExtractFields(info) {
		if f.Name == "Index" {
			continue
		}
		y += DrawField(x, y, f)
	}
}

// DrawSelectionHighlight circles the selected particle and its smoothing radius.
func (ins *Inspector) DrawSelectionHighlight(positions []r2.Vec, project func(r2.Vec) (float32, float32), radius, h float32) {
	if !ins.hasSelected || ins.selected >= len(positions) {
		return
	}
	sx, sy := project(positions[ins.selected])
	rl.DrawCircleLines(int32(sx), int32(sy), radius+3, ColorHighlight)
	rl.DrawCircleLines(int32(sx), int32(sy), h, rl.Fade(ColorHighlight, 0.4))
}
