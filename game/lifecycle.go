package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/plife/components"
	"github.com/pthm-cable/plife/systems"
)

// Initialize replaces the population with count seeded particles.
// It must be called while workers are stopped.
func (g *Game) Initialize(count int, seed int64) error {
	if err := g.checkParked(); err != nil {
		return err
	}
	maxParticles := g.cfg.Population.MaxParticles
	if count < 0 || count > maxParticles {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrParticleCount, count, maxParticles)
	}

	particles := systems.SeedParticles(g.cfg.Population, count, g.cfg.Derived.NumTypes, g.cfg.World.WorldSize, seed)
	if err := g.InitializeWith(particles); err != nil {
		return err
	}
	g.seed = seed

	slog.Info("created particles",
		"count", g.ParticleCount(),
		"seed", seed,
		"distribution", g.cfg.Population.Distribution,
	)
	return nil
}

// InitializeWith replaces the population with the given particles.
// Positions are wrapped into the world; types must index the type table.
func (g *Game) InitializeWith(particles []components.Particle) error {
	if err := g.checkParked(); err != nil {
		return err
	}
	numTypes := len(g.types)
	for i, p := range particles {
		if int(p.Type) >= numTypes {
			return fmt.Errorf("particle %d: type %d outside type table of %d", i, p.Type, numTypes)
		}
	}

	g.gens.current.Clear()
	g.gens.next.Clear()
	g.tick = 0
	g.dropped = 0
	g.collector = newCollector(g.cfg)

	half := g.cfg.Derived.HalfWorld
	for _, p := range particles {
		p.Pos = systems.WrapPosition(p.Pos, half)
		if err := g.gens.current.Add(p); err != nil {
			systems.LogDrop(err)
			g.recordDropped(1)
		}
	}
	return nil
}

func (g *Game) checkParked() error {
	if g.released {
		return ErrReleased
	}
	if g.parallel.running {
		return ErrRunning
	}
	return nil
}

// StartWorkers launches the two persistent workers. It is a no-op when they
// are already running. On failure it returns an error wrapping ErrWorkerStart
// and the game keeps ticking on the serial path.
func (g *Game) StartWorkers() error {
	if g.released {
		return ErrReleased
	}
	if g.parallel.running {
		return nil
	}
	if err := g.parallel.startWorkers(g.gens, g.forces); err != nil {
		return err
	}
	slog.Info("workers started", "workers", numWorkers, "tick", g.tick)
	return nil
}

// StopWorkers stops the workers, waits for them to exit and releases all
// grid storage. The game cannot tick afterwards. Calling it again is a no-op.
func (g *Game) StopWorkers() {
	if g.released {
		return
	}
	wasRunning := g.parallel.running
	g.parallel.stopWorkers()
	g.gens.release()
	g.released = true

	if wasRunning {
		slog.Info("workers stopped", "tick", g.tick)
	}
}

// Unload stops the engine and closes telemetry output.
func (g *Game) Unload() {
	g.StopWorkers()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
