package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// ContainerRenderer draws the simulation bounds: a filled basin and its walls.
type ContainerRenderer struct {
	fill  rl.Color
	frame rl.Color
}

// NewContainerRenderer creates a container renderer with the given basin colour.
func NewContainerRenderer(baseR, baseG, baseB uint8) *ContainerRenderer {
	return &ContainerRenderer{
		fill:  rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		frame: rl.Color{R: 90, G: 110, B: 130, A: 255},
	}
}

// Draw renders the bounds. project maps world to screen space.
func (c *ContainerRenderer) Draw(b components.Bounds, project func(r2.Vec) (float32, float32)) {
	rect := screenRect(b, project)
	rl.DrawRectangleRec(rect, c.fill)
	rl.DrawRectangleLinesEx(rect, 2, c.frame)
}

// screenRect projects world bounds to a screen rectangle. World y is up, so
// the top-left corner comes from (Min.X, Max.Y).
func screenRect(b components.Bounds, project func(r2.Vec) (float32, float32)) rl.Rectangle {
	x0, y0 := project(r2.Vec{X: b.Min.X, Y: b.Max.Y})
	x1, y1 := project(r2.Vec{X: b.Max.X, Y: b.Min.Y})
	return rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
