package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseCompute)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseMerge)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseCompute.String()]; !ok {
		t.Error("expected compute phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseMerge.String()]; !ok {
		t.Error("expected merge phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseSwap.String()]; ok {
		t.Error("swap phase never ran but has an average")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseCompute)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseClear)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseCompute)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	fast := stats.PhasePct[PhaseClear.String()]
	slow := stats.PhasePct[PhaseCompute.String()]
	if slow <= fast {
		t.Errorf("expected compute (%v%%) > clear (%v%%)", slow, fast)
	}

	row := stats.ToCSV(100)
	if row.WindowEnd != 100 || row.ComputePct != slow || row.ClearPct != fast {
		t.Errorf("ToCSV = %+v, percentages not carried over", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_NilIsNoop(t *testing.T) {
	var pc *PerfCollector

	pc.StartTick()
	pc.StartPhase(PhaseCompute)
	pc.EndTick()
	pc.RecordFrame()

	if stats := pc.Stats(); stats.AvgTickDuration != 0 {
		t.Errorf("nil collector reported %v", stats.AvgTickDuration)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseClear, "clear"},
		{PhaseCompute, "compute"},
		{PhaseMerge, "merge"},
		{PhaseSwap, "swap"},
		{PhaseTelemetry, "telemetry"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}
}
