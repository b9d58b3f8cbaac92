package game

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/plife/systems"
)

// numWorkers is fixed: cells are split by (ix+iy+iz) parity.
const numWorkers = 2

// worker holds the private state of one persistent compute goroutine.
type worker struct {
	id      int
	scratch *systems.Grid // written only by this worker while computing
	dropped int           // particles lost in the last tick
}

// parallelState holds the worker pool and its two-phase barrier.
//
// Per tick the coordinator and both workers meet at start (workers may read
// the current generation) and again at done (scratch grids are complete).
type parallelState struct {
	workers  [numWorkers]*worker
	start    *barrier
	done     *barrier
	shutdown atomic.Bool
	group    *errgroup.Group // joins the worker goroutines
	running  bool            // true if workers are running

	// startHook runs while each worker is prepared; a non-nil error aborts startup.
	startHook func(id int) error
}

func newParallelState() *parallelState {
	return &parallelState{}
}

// startWorkers prepares both workers and launches their goroutines.
// Either both workers run or none do.
func (p *parallelState) startWorkers(gens *generations, forces *systems.ForceSystem) error {
	if p.running {
		return nil
	}

	spec := gens.current.Spec()
	var prepared [numWorkers]*worker
	for i := range prepared {
		if p.startHook != nil {
			if err := p.startHook(i); err != nil {
				return fmt.Errorf("%w: worker %d: %w", ErrWorkerStart, i, err)
			}
		}
		prepared[i] = &worker{id: i, scratch: systems.NewGrid(spec)}
	}

	p.workers = prepared
	p.start = newBarrier(numWorkers + 1)
	p.done = newBarrier(numWorkers + 1)
	p.shutdown.Store(false)
	p.group = new(errgroup.Group)
	p.running = true

	for _, w := range p.workers {
		w := w
		p.group.Go(func() error {
			p.run(w, gens, forces)
			return nil
		})
	}
	return nil
}

// run is the worker loop. The current generation is only read between the
// start and done barriers, when the coordinator leaves it alone.
func (p *parallelState) run(w *worker, gens *generations, forces *systems.ForceSystem) {
	owns := systems.ParityPartition(w.id)

	for {
		p.start.wait()
		if p.shutdown.Load() {
			return
		}
		w.scratch.Clear()
		w.dropped = forces.ComputeCells(gens.current, w.scratch, owns)
		p.done.wait()
	}
}

// step releases the workers for one tick and waits for their results.
func (p *parallelState) step() (dropped int) {
	p.start.wait()
	p.done.wait()
	for _, w := range p.workers {
		dropped += w.dropped
	}
	return dropped
}

// scratches returns the workers' scratch grids in worker order.
func (p *parallelState) scratches() []*systems.Grid {
	grids := make([]*systems.Grid, 0, numWorkers)
	for _, w := range p.workers {
		grids = append(grids, w.scratch)
	}
	return grids
}

// stopWorkers signals both workers to exit and waits for them.
// Workers observe the flag at the start barrier, so an in-flight tick completes first.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	p.shutdown.Store(true)
	p.start.wait()
	p.group.Wait()
	p.group = nil

	for i, w := range p.workers {
		w.scratch.Release()
		p.workers[i] = nil
	}
	p.running = false
}
