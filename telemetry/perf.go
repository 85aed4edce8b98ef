package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed section of a solver step.
type Phase uint8

// Phases in step order. PhaseVisuals is charged once per rendered frame.
const (
	PhaseSpatialGrid Phase = iota
	PhaseDensity
	PhaseForces
	PhaseIntegrate
	PhaseVisuals
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"spatial_grid", "density", "forces", "integrate", "visuals", "telemetry",
}

func (ph Phase) String() string {
	if ph < NumPhases {
		return phaseNames[ph]
	}
	return "unknown"
}

// Phases returns every phase in step order.
func Phases() []Phase {
	out := make([]Phase, NumPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// PhaseTimes holds one duration per phase.
type PhaseTimes [NumPhases]time.Duration

// PerfSample is the timing of a single tick.
type PerfSample struct {
	Tick   time.Duration
	Phases PhaseTimes
}

// PerfCollector keeps a ring of recent tick timings. Recording methods are
// no-ops on a nil collector, so the solver can run untimed.
type PerfCollector struct {
	ring  []PerfSample
	next  int
	count int

	cur        PerfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 when windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]PerfSample, windowSize)}
}

// StartTick begins timing a new solver tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.cur = PerfSample{}
	p.inPhase = false
}

// closePhase charges the running phase up to now.
func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < NumPhases {
		p.cur.Phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// StartPhase ends the running phase, if any, and starts ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

// EndTick closes the tick and pushes it into the window.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.Tick = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// AddPhase charges time spent outside a tick, such as per-frame visual
// sync, to the most recent sample.
func (p *PerfCollector) AddPhase(ph Phase, d time.Duration) {
	if p == nil || p.count == 0 || ph >= NumPhases {
		return
	}
	s := &p.ring[(p.next-1+len(p.ring))%len(p.ring)]
	s.Phases[ph] += d
	s.Tick += d
}

// RecordFrame marks a rendered frame; the gap to the previous mark is the frame time.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg PhaseTimes
	PhasePct [NumPhases]float64 // share of the average tick, 0..100

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var st PerfStats
	st.FrameDuration = p.frame
	if p.frame > 0 {
		st.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return st
	}

	var total time.Duration
	var sum PhaseTimes
	for i, s := range p.ring[:p.count] {
		total += s.Tick
		if i == 0 || s.Tick < st.MinTickDuration {
			st.MinTickDuration = s.Tick
		}
		st.MaxTickDuration = max(st.MaxTickDuration, s.Tick)
		for ph, d := range s.Phases {
			sum[ph] += d
		}
	}

	n := time.Duration(p.count)
	st.AvgTickDuration = total / n
	for ph := range sum {
		st.PhaseAvg[ph] = sum[ph] / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[ph] = float64(st.PhaseAvg[ph]) / float64(st.AvgTickDuration) * 100
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	return st
}

// LogStats logs the window at info level, skipping phases under 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd      uint64  `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	DensityPct     float64 `csv:"density_pct"`
	ForcesPct      float64 `csv:"forces_pct"`
	IntegratePct   float64 `csv:"integrate_pct"`
	VisualsPct     float64 `csv:"visuals_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		DensityPct:     s.PhasePct[PhaseDensity],
		ForcesPct:      s.PhasePct[PhaseForces],
		IntegratePct:   s.PhasePct[PhaseIntegrate],
		VisualsPct:     s.PhasePct[PhaseVisuals],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
