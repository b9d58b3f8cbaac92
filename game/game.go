// Package game owns the simulation context: generation buffers, the worker
// scheduler and the per-tick pipeline driven by an external loop.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/plife/components"
	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/systems"
	"github.com/pthm-cable/plife/telemetry"
)

var (
	// ErrWorkerStart is returned when the worker pool cannot be started.
	// No worker is left running; the caller may continue on the serial path.
	ErrWorkerStart = errors.New("game: worker start failed")

	// ErrReleased is returned once StopWorkers has released grid storage.
	ErrReleased = errors.New("game: grid storage released")

	// ErrRunning is returned by operations that require parked workers.
	ErrRunning = errors.New("game: workers are running")

	// ErrParticleCount is returned for a population outside [0, max_particles].
	ErrParticleCount = errors.New("game: particle count out of range")
)

// Options configures a Game beyond the loaded config.
type Options struct {
	LogStats      bool                        // Log window stats via slog
	OutputDir     string                      // Directory for CSV output (empty = disabled)
	StatsCallback func(telemetry.WindowStats) // Called at each flushed window
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	forces *systems.ForceSystem
	types  []components.TypeInfo

	gens     *generations
	parallel *parallelState

	// State
	tick     int32
	seed     int64
	dropped  int // particles lost since Initialize
	released bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewGame creates a game with default options.
func NewGame(cfg *config.Config) (*Game, error) {
	return NewGameWithOptions(cfg, Options{})
}

// NewGameWithOptions creates a game. The grid starts empty; call Initialize
// to populate it.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	attraction, err := systems.AttractionFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if dir := om.Dir(); dir != "" {
		slog.Info("telemetry output enabled", "dir", dir)
	}

	g := &Game{
		cfg:           cfg,
		forces:        systems.NewForceSystem(systems.ForceParamsFromConfig(cfg), attraction),
		types:         typeTable(cfg),
		gens:          newGenerations(systems.GridSpecFromConfig(cfg)),
		parallel:      newParallelState(),
		collector:     newCollector(cfg),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		outputManager: om,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	return g, nil
}

// typeTable builds the display table for every configured type.
func typeTable(cfg *config.Config) []components.TypeInfo {
	types := make([]components.TypeInfo, len(cfg.Types))
	for i, t := range cfg.Types {
		types[i] = components.TypeInfo{
			Name:  t.Name,
			Color: components.Color{R: t.Color[0], G: t.Color[1], B: t.Color[2]},
		}
	}
	return types
}

// Current returns the published generation. It is read-only and valid
// until the next AdvanceTick.
func (g *Game) Current() *systems.Grid {
	return g.gens.current
}

// ParticleCount returns the number of particles in the published generation.
func (g *Game) ParticleCount() int {
	return g.gens.current.Count()
}

// Types returns the static type table.
func (g *Game) Types() []components.TypeInfo {
	return g.types
}

// Colors returns the display color of every type, by type index.
func (g *Game) Colors() []components.Color {
	colors := make([]components.Color, len(g.types))
	for i, t := range g.types {
		colors[i] = t.Color
	}
	return colors
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Seed returns the seed of the last Initialize.
func (g *Game) Seed() int64 {
	return g.seed
}

// Dropped returns the number of particles lost since Initialize.
func (g *Game) Dropped() int {
	return g.dropped
}

// Running reports whether the worker pool is active.
func (g *Game) Running() bool {
	return g.parallel.running
}

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// RecordFrame marks one presented frame. The loop driving the game calls it
// once per displayed frame; the interval feeds the FPS in perf stats.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// PerfStats returns timing statistics over the recent perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}
