package game

import (
	"log/slog"

	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/telemetry"
)

func newCollector(cfg *config.Config) *telemetry.Collector {
	return telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.Timestep, cfg.Derived.NumTypes)
}

// recordDropped counts particles lost to full cells.
func (g *Game) recordDropped(n int) {
	if n == 0 {
		return
	}
	g.dropped += n
	g.collector.RecordDropped(n)
}

// flushTelemetry emits window stats once the stats window has elapsed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	current := g.gens.current
	stats := g.collector.Flush(g.tick, current.Particles(nil), current.Occupancy())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
