package inspector

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/config"
)

// ParamPanel edits fluid parameters live through their slider tags.
type ParamPanel struct {
	x, y    int32
	visible bool
}

// NewParamPanel creates a hidden parameter panel at the given position.
func NewParamPanel(x, y int32) *ParamPanel {
	return &ParamPanel{x: x, y: y}
}

// Toggle switches panel visibility.
func (p *ParamPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *ParamPanel) IsVisible() bool { return p.visible }

// Height returns the panel height for the given parameters.
func (p *ParamPanel) Height(params *config.FluidConfig) int32 {
	return HeaderHeight + PanelPadding*2 + int32(len(ExtractFields(params)))*34 + 30
}

// OverPanel reports whether a screen point lies on the visible panel.
func (p *ParamPanel) OverPanel(mouseX, mouseY float32, params *config.FluidConfig) bool {
	if !p.visible {
		return false
	}
	return int32(mouseX) >= p.x && int32(mouseX) <= p.x+PanelWidth &&
		int32(mouseY) >= p.y && int32(mouseY) <= p.y+p.Height(params)
}

// Draw renders a slider per tagged field and writes edits back into params.
// It returns true if anything changed. The defaults button restores defaults.
func (p *ParamPanel) Draw(params *config.FluidConfig, defaults config.FluidConfig) bool {
	if !p.visible {
		return false
	}

	height := p.Height(params)
	rl.DrawRectangle(p.x, p.y, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLines(p.x, p.y, PanelWidth, height, ColorPanelBorder)
	rl.DrawRectangle(p.x, p.y, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("FLUID PARAMETERS", p.x+PanelPadding, p.y+7, 16, ColorHeaderText)

	x := p.x + PanelPadding
	y := p.y + HeaderHeight + PanelPadding
	changed := false

	for _, f := range ExtractFields(params) {
		if f.Tag.Widget != WidgetSlider {
			continue
		}
		cur, ok := Float(f.Value)
		if !ok {
			continue
		}
		next, h := DrawSlider(x, y, f.Name, cur, f.Tag)
		y += h
		if next != cur {
			if err := SetFloat(params, f.Index, next); err == nil {
				changed = true
			}
		}
	}

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y + 4), Width: 120, Height: 22}, "Defaults") {
		*params = defaults
		changed = true
	}

	return changed
}
