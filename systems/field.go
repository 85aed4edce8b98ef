package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// BinOccupancy counts particles per cell of a cols x rows raster laid over b
// and normalises the counts by the fullest cell. Row 0 is the top of the
// bounds (Max.Y) so the raster can be uploaded as an image directly.
// Particles outside b are clamped into the edge cells.
func BinOccupancy(dst []float32, positions []r2.Vec, b components.Bounds, cols, rows int) []float32 {
	n := cols * rows
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	clear(dst)
	if n == 0 || b.Width() <= 0 || b.Height() <= 0 {
		return dst
	}

	sx := float64(cols) / b.Width()
	sy := float64(rows) / b.Height()
	var peak float32
	for _, p := range positions {
		col := clampCell(math.Floor((p.X-b.Min.X)*sx), cols)
		row := clampCell(math.Floor((b.Max.Y-p.Y)*sy), rows)
		i := row*cols + col
		dst[i]++
		peak = max(peak, dst[i])
	}

	if peak > 0 {
		inv := 1 / peak
		for i := range dst {
			dst[i] *= inv
		}
	}
	return dst
}
