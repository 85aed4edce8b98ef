package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	for range 5 {
		pc.StartTick()
		pc.StartPhase(PhaseDensity)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseForces)
		time.Sleep(300 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Fatalf("no tick timing: %+v", stats)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max out of order: %v %v %v", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
	if stats.PhaseAvg[PhaseDensity] <= 0 || stats.PhaseAvg[PhaseForces] <= 0 {
		t.Errorf("phases not tracked: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseIntegrate] != 0 {
		t.Errorf("untimed phase has %v", stats.PhaseAvg[PhaseIntegrate])
	}
	if stats.PhasePct[PhaseForces] <= stats.PhasePct[PhaseDensity] {
		t.Errorf("forces %.1f%% should exceed density %.1f%%", stats.PhasePct[PhaseForces], stats.PhasePct[PhaseDensity])
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for range 10 {
		pc.StartTick()
		pc.StartPhase(PhaseSpatialGrid)
		pc.EndTick()
	}
	if pc.count != 3 {
		t.Errorf("window holds %d samples, want 3", pc.count)
	}
	if pc.Stats().AvgTickDuration <= 0 {
		t.Error("expected positive average after wrap")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 || stats.FPS != 0 {
		t.Errorf("empty collector reported %+v", stats)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration %v, want >= 15ms", stats.FrameDuration)
	}
	// Sleep never returns early, so 16ms frames cap FPS near 62
	if stats.FPS <= 0 || stats.FPS > 63 {
		t.Errorf("FPS = %v", stats.FPS)
	}
}

func TestPerfCollectorNilSafe(t *testing.T) {
	var pc *PerfCollector
	pc.StartTick()
	pc.StartPhase(PhaseDensity)
	pc.EndTick()
	pc.AddPhase(PhaseVisuals, time.Millisecond)
	pc.RecordFrame()
}

func TestPerfCollectorAddPhase(t *testing.T) {
	pc := NewPerfCollector(4)

	// No sample yet: nothing to charge
	pc.AddPhase(PhaseVisuals, time.Millisecond)
	if stats := pc.Stats(); stats.PhaseAvg[PhaseVisuals] != 0 {
		t.Errorf("charged %v before the first tick", stats.PhaseAvg[PhaseVisuals])
	}

	pc.StartTick()
	pc.StartPhase(PhaseDensity)
	pc.EndTick()
	before := pc.Stats().AvgTickDuration

	pc.AddPhase(PhaseVisuals, 2*time.Millisecond)
	stats := pc.Stats()
	if stats.PhaseAvg[PhaseVisuals] != 2*time.Millisecond {
		t.Errorf("visuals avg = %v, want 2ms", stats.PhaseAvg[PhaseVisuals])
	}
	if stats.AvgTickDuration != before+2*time.Millisecond {
		t.Errorf("tick duration = %v, want %v", stats.AvgTickDuration, before+2*time.Millisecond)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseForces.String(); got != "forces" {
		t.Errorf("PhaseForces = %q", got)
	}
	if got := NumPhases.String(); got != "unknown" {
		t.Errorf("NumPhases = %q", got)
	}
	if len(Phases()) != int(NumPhases) {
		t.Errorf("Phases() has %d entries", len(Phases()))
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var stats PerfStats
	stats.AvgTickDuration = 2 * time.Millisecond
	stats.PhasePct[PhaseDensity] = 40
	stats.PhasePct[PhaseForces] = 55

	row := stats.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgTickUS != 2000 {
		t.Errorf("header fields: %+v", row)
	}
	if row.DensityPct != 40 || row.ForcesPct != 55 || row.SpatialGridPct != 0 {
		t.Errorf("phase percentages: %+v", row)
	}
}
