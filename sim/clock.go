package sim

import "github.com/pthm-cable/fluid/config"

// Clock turns rendered frame time into solver steps.
type Clock struct {
	FixedDT      float64 // seconds per step before time scale; 0 = derive from frame time
	MaxFrameTime float64 // frame time clamp when FixedDT is 0
	Substeps     int
}

// ClockFromConfig builds a clock from the integration section.
func ClockFromConfig(cfg config.IntegrationConfig) Clock {
	return Clock{
		FixedDT:      cfg.FixedDT,
		MaxFrameTime: cfg.MaxFrameTime,
		Substeps:     cfg.Substeps,
	}
}

// Steps returns the step length and count for a frame that took frameTime
// seconds. A fixed clock ignores frameTime so runs replay identically.
func (c Clock) Steps(frameTime float64) (dt float64, n int) {
	n = max(c.Substeps, 1)
	if c.FixedDT > 0 {
		return c.FixedDT, n
	}
	if !(frameTime > 0) {
		return 0, 0
	}
	if c.MaxFrameTime > 0 {
		frameTime = min(frameTime, c.MaxFrameTime)
	}
	return frameTime / float64(n), n
}
