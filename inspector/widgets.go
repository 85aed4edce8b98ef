package inspector

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg   = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill = rl.Color{R: 90, G: 150, B: 220, A: 255}
	ColorBarHigh = rl.Color{R: 220, G: 110, B: 80, A: 255}
	ColorText    = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorBoolOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

const sliderWidth = 150

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, tag Tag) int32 {
	text := FormatValue(value, tag.Format)
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar between the min and max options.
// Values past max are drawn in the warning colour.
func DrawBar(x, y int32, name string, value float64, tag Tag) int32 {
	var ratio float32
	if tag.Max > tag.Min {
		ratio = float32((value - tag.Min) / (tag.Max - tag.Min))
	}
	fillColor := ColorBarFill
	if ratio > 1 {
		ratio = 1
		fillColor = ColorBarHigh
	}
	if ratio < 0 {
		ratio = 0
	}

	barWidth := int32(120)
	barHeight := int32(12)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 110
	rl.DrawRectangle(barX, y+1, barWidth, barHeight, ColorBarBg)
	rl.DrawRectangle(barX, y+1, int32(float32(barWidth)*ratio), barHeight, fillColor)

	rl.DrawText(FormatValue(value, tag.Format), barX+barWidth+5, y, 14, ColorTextDim)
	return 18
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 110
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "OFF"
	if value {
		color = ColorBoolOn
		text = "ON"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)
	return 18
}

// DrawSlider renders a labelled slider and returns the (possibly edited)
// value with the row height.
// The value is only replaced when the slider moved, so values that float32
// cannot hold exactly survive untouched frames.
func DrawSlider(x, y int32, name string, value float64, tag Tag) (float64, int32) {
	rl.DrawText(name, x, y, 12, ColorTextDim)
	bounds := rl.Rectangle{X: float32(x), Y: float32(y + 14), Width: sliderWidth, Height: 14}
	cur := float32(value)
	if next := gui.SliderBar(bounds, "", "", cur, float32(tag.Min), float32(tag.Max)); next != cur {
		value = float64(next)
	}
	rl.DrawText(FormatValue(value, tag.Format), x+sliderWidth+8, y+14, 12, ColorText)

	return value, 34
}

// DrawField renders a read-only field using its widget type.
// Sliders are drawn as bars; editing goes through ParamPanel.
func DrawField(x, y int32, field Field) int32 {
	switch field.Tag.Widget {
	case WidgetBar, WidgetSlider:
		if v, ok := Float(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Tag)
		}
	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, field.Name, v)
		}
	}
	return DrawLabel(x, y, field.Name, field.Value, field.Tag)
}
