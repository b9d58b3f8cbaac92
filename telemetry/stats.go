package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/plife/components"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Particles int `csv:"particles"`
	Dropped   int `csv:"dropped"` // Particles lost to full cells during the window

	// Grid occupancy at window end
	OccupiedCells    int     `csv:"occupied_cells"`
	MaxCellOccupancy int     `csv:"max_cell_occupancy"`
	MeanOccupancy    float64 `csv:"mean_occupancy"` // Mean over occupied cells only

	// Speed distribution, in world units per tick
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	KineticEnergy  float64 `csv:"kinetic_energy"` // Sum of |v|^2 / 2
	MeanCenterDist float64 `csv:"mean_center_dist"`

	TypeCounts []int `csv:"-"`
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeSpeedStats calculates mean, std, and percentiles from speed values.
// values is sorted in place.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}

	sort.Float64s(values)
	mean, std = stat.PopMeanStdDev(values, nil)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)
	return mean, std, p10, p50, p90
}

// OccupancyStats summarizes per-cell particle counts.
func OccupancyStats(occupancy []int) (occupied, maxCount int, mean float64) {
	total := 0
	for _, n := range occupancy {
		if n == 0 {
			continue
		}
		occupied++
		total += n
		if n > maxCount {
			maxCount = n
		}
	}
	if occupied > 0 {
		mean = float64(total) / float64(occupied)
	}
	return occupied, maxCount, mean
}

// ParticleSummary gathers the per-particle aggregates of a window.
type ParticleSummary struct {
	Speeds         []float64
	KineticEnergy  float64
	MeanCenterDist float64
	TypeCounts     []int
}

// SummarizeParticles computes speeds, energy and per-type counts.
func SummarizeParticles(particles []components.Particle, numTypes int) ParticleSummary {
	s := ParticleSummary{
		Speeds:     make([]float64, len(particles)),
		TypeCounts: make([]int, numTypes),
	}
	var dist float64
	for i, p := range particles {
		v2 := r3.Norm2(p.Vel)
		s.Speeds[i] = math.Sqrt(v2)
		s.KineticEnergy += 0.5 * v2
		dist += r3.Norm(p.Pos)
		if int(p.Type) < numTypes {
			s.TypeCounts[p.Type]++
		}
	}
	if len(particles) > 0 {
		s.MeanCenterDist = dist / float64(len(particles))
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("dropped", s.Dropped),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("max_cell_occupancy", s.MaxCellOccupancy),
		slog.Float64("mean_occupancy", s.MeanOccupancy),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("mean_center_dist", s.MeanCenterDist),
	}
	if len(s.TypeCounts) > 0 {
		attrs = append(attrs, slog.Any("type_counts", s.TypeCounts))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "stats", s)
}
