package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/plife/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"clamped high", []float64{1, 2, 3}, 1.5, 3.0},
		{"clamped low", []float64{1, 2, 3}, -0.5, 1.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p50 ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.5, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{0.4, 0.2, 0.6, 0.8}
	mean, std, p10, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-0.5) > 1e-9 {
		t.Errorf("mean = %v, want 0.5", mean)
	}
	// Population std of {0.2,0.4,0.6,0.8} is sqrt(0.05)
	if math.Abs(std-math.Sqrt(0.05)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(0.05))
	}
	if !(p10 <= p50 && p50 <= p90) {
		t.Errorf("percentiles not ordered: %v %v %v", p10, p50, p90)
	}
	if p10 != 0.2 || p90 != 0.8 {
		t.Errorf("p10 = %v, p90 = %v, want 0.2 and 0.8", p10, p90)
	}
}

func TestComputeSpeedStatsDegenerate(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeSpeedStats(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeSpeedStats([]float64{0.3})
	if mean != 0.3 || std != 0 || p50 != 0.3 {
		t.Errorf("single value: mean %v std %v p50 %v", mean, std, p50)
	}
}

func TestOccupancyStats(t *testing.T) {
	occupied, maxCount, mean := OccupancyStats([]int{0, 3, 0, 1, 2, 0})
	if occupied != 3 || maxCount != 3 || math.Abs(mean-2) > 1e-12 {
		t.Errorf("OccupancyStats = (%d, %d, %v), want (3, 3, 2)", occupied, maxCount, mean)
	}

	occupied, maxCount, mean = OccupancyStats(make([]int, 8))
	if occupied != 0 || maxCount != 0 || mean != 0 {
		t.Errorf("empty grid = (%d, %d, %v), want zeros", occupied, maxCount, mean)
	}
}

func TestSummarizeParticles(t *testing.T) {
	particles := []components.Particle{
		{Pos: r3.Vec{X: 0.6}, Vel: r3.Vec{X: 0.3, Y: 0.4}, Type: 0},
		{Pos: r3.Vec{Z: -0.2}, Vel: r3.Vec{}, Type: 2},
		{Pos: r3.Vec{}, Vel: r3.Vec{Z: 0.1}, Type: 2},
	}

	s := SummarizeParticles(particles, 3)

	if math.Abs(s.Speeds[0]-0.5) > 1e-12 {
		t.Errorf("speed[0] = %v, want 0.5", s.Speeds[0])
	}
	if want := 0.5 * (0.25 + 0.01); math.Abs(s.KineticEnergy-want) > 1e-12 {
		t.Errorf("kinetic energy = %v, want %v", s.KineticEnergy, want)
	}
	if want := 0.8 / 3; math.Abs(s.MeanCenterDist-want) > 1e-12 {
		t.Errorf("mean center dist = %v, want %v", s.MeanCenterDist, want)
	}
	if s.TypeCounts[0] != 1 || s.TypeCounts[1] != 0 || s.TypeCounts[2] != 2 {
		t.Errorf("type counts = %v, want [1 0 2]", s.TypeCounts)
	}
}
