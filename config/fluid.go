package config

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// FluidConfig is the parameter snapshot handed to every simulation step.
// Hosts may edit it freely between steps; nothing derived from it outlives a step.
// The inspect tags drive the live tuning panel.
type FluidConfig struct {
	SmoothingRadius       float64 `yaml:"smoothing_radius" inspect:"slider,min:4,max:60"`
	ParticleMass          float64 `yaml:"particle_mass" inspect:"slider,min:0.1,max:10"`
	TargetDensity         float64 `yaml:"target_density" inspect:"slider,min:0,max:0.05,fmt:%.4f"`
	PressureMultiplier    float64 `yaml:"pressure_multiplier" inspect:"slider,min:0,max:1000000,fmt:%.0f"`
	NegativePressureScale float64 `yaml:"negative_pressure_scale" inspect:"slider,min:0,max:1"`
	ViscosityStrength     float64 `yaml:"viscosity_strength" inspect:"slider,min:0,max:200"`
	GravityX              float64 `yaml:"gravity_x" inspect:"slider,min:-500,max:500,fmt:%.0f"`
	GravityY              float64 `yaml:"gravity_y" inspect:"slider,min:-500,max:500,fmt:%.0f"`
	TimeScale             float64 `yaml:"time_scale" inspect:"slider,min:0,max:10"`
	BoundaryDamping       float64 `yaml:"boundary_damping" inspect:"slider,min:0,max:1"`
	Drag                  float64 `yaml:"drag" inspect:"slider,min:0,max:0.1,fmt:%.3f"`
	FloorRestSpeed        float64 `yaml:"floor_rest_speed" inspect:"slider,min:0,max:50"`
	MouseRadius           float64 `yaml:"mouse_radius" inspect:"slider,min:0,max:500,fmt:%.0f"`
	MouseStrength         float64 `yaml:"mouse_strength" inspect:"slider,min:0,max:5000,fmt:%.0f"`
}

// Gravity returns the gravity acceleration vector.
func (f FluidConfig) Gravity() r2.Vec {
	return r2.Vec{X: f.GravityX, Y: f.GravityY}
}

// Validate rejects parameter sets the solver cannot evaluate safely.
// All problems are reported together.
func (f FluidConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	for _, p := range []struct {
		name string
		v    float64
	}{
		{"smoothing_radius", f.SmoothingRadius},
		{"particle_mass", f.ParticleMass},
		{"target_density", f.TargetDensity},
		{"pressure_multiplier", f.PressureMultiplier},
		{"negative_pressure_scale", f.NegativePressureScale},
		{"viscosity_strength", f.ViscosityStrength},
		{"gravity_x", f.GravityX},
		{"gravity_y", f.GravityY},
		{"time_scale", f.TimeScale},
		{"boundary_damping", f.BoundaryDamping},
		{"drag", f.Drag},
		{"floor_rest_speed", f.FloorRestSpeed},
		{"mouse_radius", f.MouseRadius},
		{"mouse_strength", f.MouseStrength},
	} {
		check(!math.IsNaN(p.v) && !math.IsInf(p.v, 0), "%s must be finite, got %g", p.name, p.v)
	}

	check(f.SmoothingRadius > 0, "smoothing_radius must be > 0, got %g", f.SmoothingRadius)
	check(f.ParticleMass > 0, "particle_mass must be > 0, got %g", f.ParticleMass)
	check(f.TargetDensity >= 0, "target_density must be >= 0, got %g", f.TargetDensity)
	check(f.PressureMultiplier >= 0, "pressure_multiplier must be >= 0, got %g", f.PressureMultiplier)
	check(f.NegativePressureScale >= 0 && f.NegativePressureScale <= 1,
		"negative_pressure_scale must be in [0,1], got %g", f.NegativePressureScale)
	check(f.ViscosityStrength >= 0, "viscosity_strength must be >= 0, got %g", f.ViscosityStrength)
	check(f.TimeScale >= 0, "time_scale must be >= 0, got %g", f.TimeScale)
	check(f.BoundaryDamping >= 0 && f.BoundaryDamping <= 1,
		"boundary_damping must be in [0,1], got %g", f.BoundaryDamping)
	check(f.Drag >= 0 && f.Drag < 1, "drag must be in [0,1), got %g", f.Drag)
	check(f.FloorRestSpeed >= 0, "floor_rest_speed must be >= 0, got %g", f.FloorRestSpeed)
	check(f.MouseRadius >= 0, "mouse_radius must be >= 0, got %g", f.MouseRadius)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
