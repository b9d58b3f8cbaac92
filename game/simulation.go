package game

import "github.com/pthm-cable/plife/telemetry"

// AdvanceTick runs one full simulation step and publishes the result.
// It must not be called concurrently with itself or with reads of Current.
func (g *Game) AdvanceTick() error {
	if g.released {
		return ErrReleased
	}

	g.perfCollector.StartTick()

	// 1. Empty the merge target
	g.perfCollector.StartPhase(telemetry.PhaseClear)
	g.gens.next.Clear()

	// 2. Force pass, straight into next when serial
	g.perfCollector.StartPhase(telemetry.PhaseCompute)
	var dropped int
	if g.parallel.running {
		dropped = g.parallel.step()

		// 3. Concatenate the workers' scratch grids
		g.perfCollector.StartPhase(telemetry.PhaseMerge)
		dropped += g.gens.merge(g.parallel.scratches()...)
	} else {
		dropped = g.forces.ComputeCells(g.gens.current, g.gens.next, nil)
	}

	// 4. Publish
	g.perfCollector.StartPhase(telemetry.PhaseSwap)
	g.gens.swap()
	g.tick++
	g.recordDropped(dropped)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	return nil
}
