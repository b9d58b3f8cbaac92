package telemetry

import "github.com/pthm-cable/plife/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int32
	timestep    float64
	numTypes    int

	// Current window tracking
	windowStart int32

	// Event counters for current window
	dropped int
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window spans
// timestep: simulated seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, timestep float64, numTypes int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int32(windowTicks),
		timestep:    timestep,
		numTypes:    numTypes,
	}
}

// RecordDropped records particles lost during a tick.
func (c *Collector) RecordDropped(n int) {
	c.dropped += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// particles is the population at currentTick; occupancy holds per-cell counts.
func (c *Collector) Flush(currentTick int32, particles []components.Particle, occupancy []int) WindowStats {
	summary := SummarizeParticles(particles, c.numTypes)
	mean, std, p10, p50, p90 := ComputeSpeedStats(summary.Speeds)
	occupied, maxCount, meanOcc := OccupancyStats(occupancy)

	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.timestep,

		Particles: len(particles),
		Dropped:   c.dropped,

		OccupiedCells:    occupied,
		MaxCellOccupancy: maxCount,
		MeanOccupancy:    meanOcc,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		KineticEnergy:  summary.KineticEnergy,
		MeanCenterDist: summary.MeanCenterDist,

		TypeCounts: summary.TypeCounts,
	}

	c.windowStart = currentTick
	c.dropped = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
