package systems

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/plife/components"
)

func testSpec(size int, wrap bool) GridSpec {
	return GridSpec{
		Size:            size,
		WorldSize:       2,
		InitialCapacity: 16,
		MaxCapacity:     1024,
		Wrap:            wrap,
	}
}

// cellCenter returns the world position at the center of cell (ix, iy, iz).
func cellCenter(g *Grid, ix, iy, iz int) r3.Vec {
	cs := g.spec.WorldSize / float64(g.spec.Size)
	at := func(i int) float64 { return -g.half + (float64(i)+0.5)*cs }
	return r3.Vec{X: at(ix), Y: at(iy), Z: at(iz)}
}

// fillAll puts one particle in every cell.
func fillAll(t *testing.T, g *Grid) {
	t.Helper()
	for idx := 0; idx < g.NumCells(); idx++ {
		ix, iy, iz := g.Coords(idx)
		if err := g.Add(components.Particle{Pos: cellCenter(g, ix, iy, iz)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
}

func TestCellIndexOf(t *testing.T) {
	g := NewGrid(testSpec(12, false))

	tests := []struct {
		name  string
		coord float64
		want  int
	}{
		{"lower bound", -1.0, 0},
		{"upper bound clamps", 1.0, 11},
		{"origin", 0.0, 6},
		{"first cell", -0.9, 0},
		{"second cell", -0.8, 1},
		{"below world", -3.0, 0},
		{"above world", 2.5, 11},
		{"just below upper", 0.999, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, iy, iz := g.CellIndexOf(r3.Vec{X: tt.coord, Y: tt.coord, Z: tt.coord})
			if ix != tt.want || iy != tt.want || iz != tt.want {
				t.Errorf("CellIndexOf(%v) = (%d,%d,%d), want %d on every axis", tt.coord, ix, iy, iz, tt.want)
			}
		})
	}
}

func TestIndexCoordsRoundTrip(t *testing.T) {
	g := NewGrid(testSpec(5, false))
	for idx := 0; idx < g.NumCells(); idx++ {
		ix, iy, iz := g.Coords(idx)
		if got := g.Index(ix, iy, iz); got != idx {
			t.Fatalf("Index(Coords(%d)) = %d", idx, got)
		}
	}
}

func TestInsertGrowth(t *testing.T) {
	spec := testSpec(4, false)
	spec.MaxCapacity = 64
	g := NewGrid(spec)

	wantCaps := map[int]int{1: 16, 16: 16, 17: 32, 33: 64, 64: 64}
	for i := 1; i <= 64; i++ {
		if err := g.Insert(1, 1, 1, components.Particle{}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if want, ok := wantCaps[i]; ok {
			if got := cap(g.Cell(1, 1, 1)); got != want {
				t.Errorf("after %d inserts cap = %d, want %d", i, got, want)
			}
		}
	}

	err := g.Insert(1, 1, 1, components.Particle{})
	if !errors.Is(err, ErrCellFull) {
		t.Fatalf("insert past ceiling: err = %v, want ErrCellFull", err)
	}
	if got := len(g.Cell(1, 1, 1)); got != 64 {
		t.Errorf("dropped particle was stored: len = %d, want 64", got)
	}

	// Other cells are unaffected
	if err := g.Insert(0, 0, 0, components.Particle{}); err != nil {
		t.Errorf("insert into another cell: %v", err)
	}
}

func TestNeighborsClipped(t *testing.T) {
	g := NewGrid(testSpec(4, false))
	fillAll(t, g)

	tests := []struct {
		name       string
		ix, iy, iz int
		want       int
	}{
		{"corner", 0, 0, 0, 8},
		{"far corner", 3, 3, 3, 8},
		{"edge", 0, 0, 1, 12},
		{"face", 0, 1, 1, 18},
		{"interior", 1, 2, 1, 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visited := 0
			g.Neighbors(tt.ix, tt.iy, tt.iz, func(int, []components.Particle) { visited++ })
			if visited != tt.want {
				t.Errorf("visited %d cells, want %d", visited, tt.want)
			}
		})
	}
}

func TestNeighborsWrapped(t *testing.T) {
	g := NewGrid(testSpec(4, true))
	fillAll(t, g)

	seen := make(map[int]bool)
	g.Neighbors(0, 0, 0, func(idx int, _ []components.Particle) {
		if seen[idx] {
			t.Errorf("cell %d visited twice", idx)
		}
		seen[idx] = true
	})
	if len(seen) != 27 {
		t.Errorf("visited %d cells, want 27", len(seen))
	}
	if !seen[g.Index(3, 3, 3)] {
		t.Error("wrapped search missed the opposite corner")
	}
}

func TestNeighborsSkipsEmpty(t *testing.T) {
	g := NewGrid(testSpec(4, false))
	if err := g.Add(components.Particle{Pos: cellCenter(g, 1, 1, 1)}); err != nil {
		t.Fatal(err)
	}

	visited := 0
	g.Neighbors(1, 1, 2, func(idx int, cell []components.Particle) {
		visited++
		if idx != g.Index(1, 1, 1) || len(cell) != 1 {
			t.Errorf("unexpected cell %d with %d particles", idx, len(cell))
		}
	})
	if visited != 1 {
		t.Errorf("visited %d cells, want 1", visited)
	}
}

func TestClearAndRelease(t *testing.T) {
	g := NewGrid(testSpec(3, false))
	fillAll(t, g)

	if got := g.Count(); got != 27 {
		t.Fatalf("Count = %d, want 27", got)
	}

	g.Clear()
	if got := g.Count(); got != 0 {
		t.Errorf("Count after Clear = %d, want 0", got)
	}
	if cap(g.Cell(0, 0, 0)) == 0 {
		t.Error("Clear released capacity")
	}

	g.Release()
	if cap(g.Cell(0, 0, 0)) != 0 {
		t.Error("Release kept capacity")
	}
}

func TestOccupancy(t *testing.T) {
	g := NewGrid(testSpec(3, false))
	for i := 0; i < 3; i++ {
		if err := g.Insert(2, 1, 0, components.Particle{}); err != nil {
			t.Fatal(err)
		}
	}
	occ := g.Occupancy()
	if len(occ) != 27 {
		t.Fatalf("len(Occupancy) = %d, want 27", len(occ))
	}
	if occ[g.Index(2, 1, 0)] != 3 {
		t.Errorf("occupancy = %d, want 3", occ[g.Index(2, 1, 0)])
	}
}
