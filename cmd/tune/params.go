package main

import (
	"github.com/pthm-cable/fluid/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string // yaml key under fluid:
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard search space around the given defaults.
func NewParamVector(defaults config.FluidConfig) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_multiplier", Min: 20000, Max: 800000, Default: defaults.PressureMultiplier},
			{Name: "negative_pressure_scale", Min: 0, Max: 1, Default: defaults.NegativePressureScale},
			{Name: "viscosity_strength", Min: 0, Max: 150, Default: defaults.ViscosityStrength},
			{Name: "boundary_damping", Min: 0.05, Max: 1, Default: defaults.BoundaryDamping},
			{Name: "drag", Min: 0, Max: 0.05, Default: defaults.Drag},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values, clamped into range.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to the [0,1] search space.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply returns params with the clamped values substituted.
// Order must match Specs order.
func (pv *ParamVector) Apply(params config.FluidConfig, values []float64) config.FluidConfig {
	c := pv.Clamp(values)
	params.PressureMultiplier = c[0]
	params.NegativePressureScale = c[1]
	params.ViscosityStrength = c[2]
	params.BoundaryDamping = c[3]
	params.Drag = c[4]
	return params
}
