package systems

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// Layout selects an initial particle arrangement.
type Layout uint8

const (
	LayoutRandom Layout = iota
	LayoutGrid
)

// String returns the layout name used in configs and logs.
func (l Layout) String() string {
	switch l {
	case LayoutRandom:
		return "random"
	case LayoutGrid:
		return "grid"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// ParseLayout converts a config name to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "random", "":
		return LayoutRandom, nil
	case "grid":
		return LayoutGrid, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

// LayoutParams controls how initial layouts fill the bounds.
type LayoutParams struct {
	SpawnMargin    float64 // Random layout inset
	GridFill       float64 // Fraction of each dimension the lattice spans
	GridSpacingMin float64
	GridSpacingMax float64
}

// PlaceRandom scatters positions uniformly inside bounds inset by the spawn margin.
func PlaceRandom(positions []r2.Vec, b components.Bounds, lp LayoutParams, rng *rand.Rand) {
	area := b.Inset(lp.SpawnMargin)
	for i := range positions {
		positions[i] = r2.Vec{
			X: area.Min.X + rng.Float64()*area.Width(),
			Y: area.Min.Y + rng.Float64()*area.Height(),
		}
	}
}

// PlaceGrid arranges positions on a roughly square lattice centred in bounds.
// Spacing is chosen so the lattice spans GridFill of the bounds, then clamped
// to [GridSpacingMin, GridSpacingMax]. If the clamped lattice would overflow
// the bounds it is shrunk to fit.
func PlaceGrid(positions []r2.Vec, b components.Bounds, lp LayoutParams) {
	n := len(positions)
	if n == 0 {
		return
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols

	availW := b.Width() * lp.GridFill
	availH := b.Height() * lp.GridFill
	spacingX := availW
	if cols > 1 {
		spacingX = availW / float64(cols-1)
	}
	spacingY := availH
	if rows > 1 {
		spacingY = availH / float64(rows-1)
	}

	spacing := math.Min(spacingX, spacingY)
	if lp.GridSpacingMax > 0 {
		spacing = math.Min(spacing, lp.GridSpacingMax)
	}
	spacing = math.Max(spacing, lp.GridSpacingMin)
	if cols > 1 {
		spacing = math.Min(spacing, b.Width()/float64(cols-1))
	}
	if rows > 1 {
		spacing = math.Min(spacing, b.Height()/float64(rows-1))
	}

	center := b.Center()
	start := r2.Vec{
		X: center.X - float64(cols-1)*spacing/2,
		Y: center.Y - float64(rows-1)*spacing/2,
	}

	for i := range positions {
		col, row := i%cols, i/cols
		p := r2.Vec{X: start.X + float64(col)*spacing, Y: start.Y + float64(row)*spacing}
		p.X = math.Min(math.Max(p.X, b.Min.X), b.Max.X)
		p.Y = math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y)
		positions[i] = p
	}
}
