package sim

import (
	"math"
	"testing"
)

func TestClockSteps(t *testing.T) {
	tests := []struct {
		name      string
		clock     Clock
		frameTime float64
		wantDT    float64
		wantN     int
	}{
		{"fixed ignores frame time", Clock{FixedDT: 0.002, Substeps: 3}, 0.5, 0.002, 3},
		{"fixed with zero substeps", Clock{FixedDT: 0.002}, 0.016, 0.002, 1},
		{"frame split into substeps", Clock{MaxFrameTime: 0.05, Substeps: 2}, 0.02, 0.01, 2},
		{"frame clamped", Clock{MaxFrameTime: 0.05, Substeps: 5}, 1, 0.01, 5},
		{"unclamped", Clock{Substeps: 1}, 0.25, 0.25, 1},
		{"zero frame", Clock{Substeps: 2}, 0, 0, 0},
		{"nan frame", Clock{Substeps: 2}, math.NaN(), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, n := tt.clock.Steps(tt.frameTime)
			if n != tt.wantN {
				t.Errorf("n = %d, want %d", n, tt.wantN)
			}
			if math.Abs(dt-tt.wantDT) > 1e-12 {
				t.Errorf("dt = %g, want %g", dt, tt.wantDT)
			}
		})
	}
}
