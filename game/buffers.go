package game

import "github.com/pthm-cable/plife/systems"

// generations owns the published grid and the grid the next tick is built in.
// Only the coordinator touches them, and only while workers are parked.
type generations struct {
	current *systems.Grid
	next    *systems.Grid
}

func newGenerations(spec systems.GridSpec) *generations {
	return &generations{
		current: systems.NewGrid(spec),
		next:    systems.NewGrid(spec),
	}
}

// merge concatenates the scratch grids into next, cell by cell.
// Particles next cannot hold are dropped and counted.
func (g *generations) merge(scratches ...*systems.Grid) (dropped int) {
	for _, s := range scratches {
		for idx := 0; idx < s.NumCells(); idx++ {
			for _, p := range s.CellAt(idx) {
				if err := g.next.InsertAt(idx, p); err != nil {
					dropped++
					systems.LogDrop(err)
				}
			}
		}
	}
	return dropped
}

// swap publishes next as the current generation.
func (g *generations) swap() {
	g.current, g.next = g.next, g.current
}

// release drops the storage of both generations.
func (g *generations) release() {
	g.current.Release()
	g.next.Release()
}
