package terminal

import (
	"github.com/nsf/termbox-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// ramp orders glyphs from empty to dense.
var ramp = []rune(" .:-=+*#%@")

// Glyph returns the character for a normalized occupancy value.
func Glyph(v float32) rune {
	if !(v > 0) {
		return ramp[0]
	}
	if v >= 1 {
		return ramp[len(ramp)-1]
	}
	// Any occupancy at all gets at least the lightest mark
	i := 1 + int(v*float32(len(ramp)-1))
	return ramp[min(i, len(ramp)-1)]
}

// ColorAttr maps a tint onto the 6x6x6 cube of the 256-colour palette.
// termbox attributes are the palette index plus one.
func ColorAttr(t components.Tint) termbox.Attribute {
	level := func(c uint8) int { return (int(c)*5 + 127) / 255 }
	return termbox.Attribute(16 + 36*level(t.R) + 6*level(t.G) + level(t.B) + 1)
}

// CellToWorld returns the world position at the centre of a terminal cell.
// Row 0 is the top of the bounds.
func CellToWorld(col, row, cols, rows int, b components.Bounds) r2.Vec {
	return r2.Vec{
		X: b.Min.X + (float64(col)+0.5)/float64(cols)*b.Width(),
		Y: b.Max.Y - (float64(row)+0.5)/float64(rows)*b.Height(),
	}
}
