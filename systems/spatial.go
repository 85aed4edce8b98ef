// Package systems provides the solver passes of the fluid simulation.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/components"
)

// gridPadding is the number of extra cells kept around the bounds on each side.
const gridPadding = 2

// MaxGridCells caps the cell array. Cell sizes too small for the bounds are
// widened until the grid fits; queries stay exact since they scan
// ceil(radius/cellSize) rings whatever the cell size.
const MaxGridCells = 1 << 20

// Neighbor holds a nearby particle with precomputed spatial data.
type Neighbor struct {
	Index  int
	Delta  r2.Vec  // Neighbour position minus query position
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid buckets particle indices into uniform square cells.
// It is rebuilt from scratch every step and read-only while queried.
type SpatialGrid struct {
	bounds   components.Bounds
	cellSize float64
	origin   r2.Vec
	cols     int
	rows     int
	cells    [][]int // flat grid of index lists
	count    int
}

// NewSpatialGrid creates an empty grid covering bounds. The cell size may
// be widened to respect MaxGridCells.
func NewSpatialGrid(bounds components.Bounds, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{bounds: bounds}
	g.layout(g.fitCellSize(cellSize))
	return g
}

// fitCellSize doubles cellSize until the grid over the bounds fits within
// MaxGridCells. Non-positive or infinite sizes fall back to one cell per bounds.
func (g *SpatialGrid) fitCellSize(cellSize float64) float64 {
	w, h := g.bounds.Width(), g.bounds.Height()
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = max(w, h, 1)
	}
	for {
		cols := math.Ceil(w/cellSize) + 2*gridPadding
		rows := math.Ceil(h/cellSize) + 2*gridPadding
		if cols*rows <= MaxGridCells {
			return cellSize
		}
		cellSize *= 2
	}
}

// layout sizes the cell array for a new cell size. Buckets are allocated
// on first insert.
func (g *SpatialGrid) layout(cellSize float64) {
	g.cellSize = cellSize
	pad := gridPadding * cellSize
	g.origin = r2.Vec{X: g.bounds.Min.X - pad, Y: g.bounds.Min.Y - pad}
	g.cols = int(math.Ceil(g.bounds.Width()/cellSize)) + 2*gridPadding
	g.rows = int(math.Ceil(g.bounds.Height()/cellSize)) + 2*gridPadding

	n := g.cols * g.rows
	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
	} else {
		g.cells = make([][]int, n)
	}
	g.Clear()
}

// CellSize returns the current cell edge length, which may exceed the
// requested size.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Dims returns the number of columns and rows.
func (g *SpatialGrid) Dims() (cols, rows int) { return g.cols, g.rows }

// Len returns the number of indices stored.
func (g *SpatialGrid) Len() int { return g.count }

// Clear removes all indices from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Rebuild clears the grid and inserts every position by index.
// A changed cell size re-lays out the cell array first.
func (g *SpatialGrid) Rebuild(positions []r2.Vec, cellSize float64) {
	if cellSize = g.fitCellSize(cellSize); cellSize != g.cellSize {
		g.layout(cellSize)
	} else {
		g.Clear()
	}
	for i, p := range positions {
		g.Insert(i, p)
	}
}

// Insert adds index i at position p.
func (g *SpatialGrid) Insert(i int, p r2.Vec) {
	col, row := g.CellCoord(p)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
	g.count++
}

// CellCoord returns the cell containing p. A point on a cell edge belongs to
// the cell whose lower edge it lies on. Points beyond the padded range are
// clamped to the outermost cells so they remain findable.
func (g *SpatialGrid) CellCoord(p r2.Vec) (col, row int) {
	col = clampCell((p.X-g.origin.X)/g.cellSize, g.cols)
	row = clampCell((p.Y-g.origin.Y)/g.cellSize, g.rows)
	return col, row
}

func clampCell(v float64, n int) int {
	c := math.Floor(v)
	// NaN fails every comparison and lands in cell 0
	if !(c >= 0) {
		return 0
	}
	if c > float64(n-1) {
		return n - 1
	}
	return int(c)
}

// QueryRadiusInto appends every index whose position lies within radius of pos.
// Returns the updated slice. Reuse dst across calls to avoid allocations.
// Within a cell indices come back in insertion order.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos r2.Vec, radius float64, positions []r2.Vec) []Neighbor {
	if g.count == 0 || !(radius >= 0) {
		return dst
	}

	// Clamping is monotone and never stretches distances, so the same
	// ring of cells around the clamped centre covers clamped neighbours.
	reach := int(math.Ceil(radius / g.cellSize))
	centerCol, centerRow := g.CellCoord(pos)
	c0, c1 := max(centerCol-reach, 0), min(centerCol+reach, g.cols-1)
	r0, r1 := max(centerRow-reach, 0), min(centerRow+reach, g.rows-1)

	radiusSq := radius * radius
	for row := r0; row <= r1; row++ {
		base := row * g.cols
		for col := c0; col <= c1; col++ {
			for _, j := range g.cells[base+col] {
				d := r2.Sub(positions[j], pos)
				distSq := d.X*d.X + d.Y*d.Y
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: j, Delta: d, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// QueryIndices returns the indices within radius of pos.
// Allocates; the solver passes use QueryRadiusInto.
func (g *SpatialGrid) QueryIndices(pos r2.Vec, radius float64, positions []r2.Vec) []int {
	neighbors := g.QueryRadiusInto(nil, pos, radius, positions)
	result := make([]int, len(neighbors))
	for i, n := range neighbors {
		result[i] = n.Index
	}
	return result
}
