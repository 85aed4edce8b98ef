package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// FieldRenderer draws particle occupancy as a smoothed, coloured texture
// stretched over the bounds. Uses CPU-side blending so the field fades
// between updates instead of flickering.
type FieldRenderer struct {
	tex        rl.Texture2D
	texW, texH int

	current []float32 // Target values
	display []float32 // Currently displayed (interpolated)
	pixels  []color.RGBA

	palette     *systems.Palette
	initialized bool
}

// NewFieldRenderer creates a field renderer of the given texture resolution.
func NewFieldRenderer(texW, texH int, palette *systems.Palette) *FieldRenderer {
	return &FieldRenderer{texW: texW, texH: texH, palette: palette}
}

// Init initializes the renderer (must be called after raylib window is created).
func (f *FieldRenderer) Init() {
	if f.initialized {
		return
	}

	img := rl.GenImageColor(f.texW, f.texH, rl.Blank)
	f.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(f.tex, rl.FilterBilinear)

	size := f.texW * f.texH
	f.display = make([]float32, size)
	f.pixels = make([]color.RGBA, size)

	f.initialized = true
}

// Update bins the current positions as the new target field.
func (f *FieldRenderer) Update(positions []r2.Vec, b components.Bounds) {
	f.current = systems.BinOccupancy(f.current, positions, b, f.texW, f.texH)
}

// Draw blends toward the target field and renders it over the bounds.
func (f *FieldRenderer) Draw(b components.Bounds, project func(r2.Vec) (float32, float32), dt float32) {
	if !f.initialized {
		f.Init()
	}
	if len(f.current) != len(f.display) {
		return
	}

	// Exponential smoothing over ~0.2 seconds
	blendRate := min(5*dt, 1)
	for i := range f.display {
		f.display[i] += (f.current[i] - f.display[i]) * blendRate
	}
	f.uploadTexture()

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(f.texW), Height: float32(f.texH)}
	rl.DrawTexturePro(f.tex, src, screenRect(b, project), rl.Vector2{}, 0, rl.Fade(rl.White, 0.6))
}

// uploadTexture converts the display buffer to palette colours and uploads.
func (f *FieldRenderer) uploadTexture() {
	for i, val := range f.display {
		t := f.palette.At(float64(val))
		f.pixels[i] = color.RGBA{R: t.R, G: t.G, B: t.B, A: uint8(min(val, 1) * 255)}
	}
	rl.UpdateTexture(f.tex, f.pixels)
}

// Unload frees resources.
func (f *FieldRenderer) Unload() {
	if f.initialized {
		rl.UnloadTexture(f.tex)
		f.initialized = false
	}
}
