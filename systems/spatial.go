// Package systems provides the spatial store and physics passes for the simulation.
package systems

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/plife/components"
	"github.com/pthm-cable/plife/config"
)

// ErrCellFull is returned when a cell has reached its growth ceiling.
// The particle that triggered the growth is not stored.
var ErrCellFull = errors.New("cell storage exhausted")

// GridSpec describes the shape of a Grid.
type GridSpec struct {
	Size            int     // Cells per axis
	WorldSize       float64 // Edge length of the periodic cube
	InitialCapacity int     // First allocation per cell
	MaxCapacity     int     // Growth ceiling per cell
	Wrap            bool    // Wrap neighbor search modulo Size
}

// GridSpecFromConfig builds a GridSpec from loaded configuration.
func GridSpecFromConfig(cfg *config.Config) GridSpec {
	return GridSpec{
		Size:            cfg.World.GridSize,
		WorldSize:       cfg.World.WorldSize,
		InitialCapacity: cfg.Physics.InitialCellCapacity,
		MaxCapacity:     cfg.Physics.MaxCellCapacity,
		Wrap:            cfg.Physics.WrapNeighbors,
	}
}

// Grid partitions the world into Size^3 cells, each owning its particles.
// Every particle stored under a cell satisfies CellIndexOf(p.Pos) == that cell.
type Grid struct {
	spec     GridSpec
	cellSize float64
	half     float64
	cells    [][]components.Particle // flat, index = (ix*Size+iy)*Size+iz
}

// NewGrid creates an empty grid. Cells allocate lazily on first insert.
func NewGrid(spec GridSpec) *Grid {
	if spec.InitialCapacity < 1 {
		spec.InitialCapacity = 16
	}
	if spec.MaxCapacity < spec.InitialCapacity {
		spec.MaxCapacity = spec.InitialCapacity
	}
	return &Grid{
		spec:     spec,
		cellSize: spec.WorldSize / float64(spec.Size),
		half:     spec.WorldSize / 2,
		cells:    make([][]components.Particle, spec.Size*spec.Size*spec.Size),
	}
}

// Spec returns the grid's shape.
func (g *Grid) Spec() GridSpec {
	return g.spec
}

// Size returns the number of cells per axis.
func (g *Grid) Size() int {
	return g.spec.Size
}

// NumCells returns Size^3.
func (g *Grid) NumCells() int {
	return len(g.cells)
}

// Index returns the flat index of cell (ix, iy, iz).
func (g *Grid) Index(ix, iy, iz int) int {
	n := g.spec.Size
	return (ix*n+iy)*n + iz
}

// Coords returns the cell triple for a flat index.
func (g *Grid) Coords(idx int) (ix, iy, iz int) {
	n := g.spec.Size
	iz = idx % n
	iy = (idx / n) % n
	ix = idx / (n * n)
	return ix, iy, iz
}

// coordIndex maps one world coordinate to a cell index on its axis.
func (g *Grid) coordIndex(c float64) int {
	i := int(math.Floor((c + g.half) / g.cellSize))

	// Clamp to valid range; positions exactly on +half land here too
	if i < 0 {
		i = 0
	} else if i >= g.spec.Size {
		i = g.spec.Size - 1
	}
	return i
}

// CellIndexOf returns the cell owning a world position.
// The result is always in range, whatever the input.
func (g *Grid) CellIndexOf(pos r3.Vec) (ix, iy, iz int) {
	return g.coordIndex(pos.X), g.coordIndex(pos.Y), g.coordIndex(pos.Z)
}

// Insert appends a particle to cell (ix, iy, iz).
// Capacity starts at InitialCapacity and doubles up to MaxCapacity;
// beyond that the particle is dropped and ErrCellFull is returned.
func (g *Grid) Insert(ix, iy, iz int, p components.Particle) error {
	return g.InsertAt(g.Index(ix, iy, iz), p)
}

// InsertAt is Insert addressed by flat index.
func (g *Grid) InsertAt(idx int, p components.Particle) error {
	cell := g.cells[idx]
	if len(cell) == cap(cell) {
		newCap := g.spec.InitialCapacity
		if cap(cell) > 0 {
			newCap = cap(cell) * 2
		}
		if newCap > g.spec.MaxCapacity {
			newCap = g.spec.MaxCapacity
		}
		if newCap <= len(cell) {
			ix, iy, iz := g.Coords(idx)
			return fmt.Errorf("%w: cell (%d,%d,%d) holds %d", ErrCellFull, ix, iy, iz, len(cell))
		}
		grown := make([]components.Particle, len(cell), newCap)
		copy(grown, cell)
		cell = grown
	}
	g.cells[idx] = append(cell, p)
	return nil
}

// Add inserts a particle into the cell its position maps to.
func (g *Grid) Add(p components.Particle) error {
	ix, iy, iz := g.CellIndexOf(p.Pos)
	return g.Insert(ix, iy, iz, p)
}

// Cell returns the particles of cell (ix, iy, iz). The slice must not be modified.
func (g *Grid) Cell(ix, iy, iz int) []components.Particle {
	return g.cells[g.Index(ix, iy, iz)]
}

// CellAt returns the particles of a cell by flat index.
func (g *Grid) CellAt(idx int) []components.Particle {
	return g.cells[idx]
}

// Neighbors calls fn for every cell of the 3x3x3 block around (ix, iy, iz), self included.
// Out-of-range offsets are skipped unless the grid wraps, in which case they
// are taken modulo Size.
func (g *Grid) Neighbors(ix, iy, iz int, fn func(idx int, cell []components.Particle)) {
	n := g.spec.Size
	for nx := ix - 1; nx <= ix+1; nx++ {
		wx, ok := g.neighborAxis(nx, n)
		if !ok {
			continue
		}
		for ny := iy - 1; ny <= iy+1; ny++ {
			wy, ok := g.neighborAxis(ny, n)
			if !ok {
				continue
			}
			for nz := iz - 1; nz <= iz+1; nz++ {
				wz, ok := g.neighborAxis(nz, n)
				if !ok {
					continue
				}
				idx := (wx*n+wy)*n + wz
				if cell := g.cells[idx]; len(cell) > 0 {
					fn(idx, cell)
				}
			}
		}
	}
}

func (g *Grid) neighborAxis(i, n int) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	if !g.spec.Wrap {
		return 0, false
	}
	return (i + n) % n, true
}

// Count returns the number of particles stored.
func (g *Grid) Count() int {
	total := 0
	for _, cell := range g.cells {
		total += len(cell)
	}
	return total
}

// Occupancy returns the particle count of every cell in flat index order.
func (g *Grid) Occupancy() []int {
	occ := make([]int, len(g.cells))
	for i, cell := range g.cells {
		occ[i] = len(cell)
	}
	return occ
}

// ForEachCell calls fn for every non-empty cell.
func (g *Grid) ForEachCell(fn func(ix, iy, iz int, cell []components.Particle)) {
	for idx, cell := range g.cells {
		if len(cell) == 0 {
			continue
		}
		ix, iy, iz := g.Coords(idx)
		fn(ix, iy, iz, cell)
	}
}

// Particles appends every stored particle to dst and returns it.
func (g *Grid) Particles(dst []components.Particle) []components.Particle {
	for _, cell := range g.cells {
		dst = append(dst, cell...)
	}
	return dst
}

// Clear empties every cell, keeping allocated capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Release drops all per-cell storage.
func (g *Grid) Release() {
	for i := range g.cells {
		g.cells[i] = nil
	}
}
