// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/spatial/r2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Fluid       FluidConfig       `yaml:"fluid"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Integration IntegrationConfig `yaml:"integration"`
	Parallel    ParallelConfig    `yaml:"parallel"`
	Render      RenderConfig      `yaml:"render"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Stream      StreamConfig      `yaml:"stream"`
	Tune        TuneConfig        `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// The world is centred on the origin with y pointing up.
type WorldConfig struct {
	Width  float64 `yaml:"width"`  // World width in world units (0 = use screen width)
	Height float64 `yaml:"height"` // World height in world units (0 = use screen height)
}

// ParticlesConfig holds particle count and initial layout parameters.
type ParticlesConfig struct {
	Count          int     `yaml:"count"`
	Radius         float64 `yaml:"radius"`           // Visual radius; bounds are inset by this much
	Layout         string  `yaml:"layout"`           // "random" or "grid"
	Seed           int64   `yaml:"seed"`             // RNG seed for random layouts
	SpawnMargin    float64 `yaml:"spawn_margin"`     // Random layout inset from the bounds
	GridFill       float64 `yaml:"grid_fill"`        // Fraction of each bound dimension the grid spans
	GridSpacingMin float64 `yaml:"grid_spacing_min"` // Lattice spacing clamp
	GridSpacingMax float64 `yaml:"grid_spacing_max"`
}

// IntegrationConfig holds time stepping parameters.
type IntegrationConfig struct {
	FixedDT      float64 `yaml:"fixed_dt"`       // Base step before time scale; 0 = use frame time
	MaxFrameTime float64 `yaml:"max_frame_time"` // Frame time clamp when FixedDT is 0
	Substeps     int     `yaml:"substeps"`       // Steps per rendered frame
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this particle count passes run inline
}

// RenderConfig holds visual mapping parameters.
type RenderConfig struct {
	MaxSpeed float64  `yaml:"max_speed"` // Speed mapped to the top of the palette
	Palette  []string `yaml:"palette"`   // Colour stops, slow to fast
	Steps    int      `yaml:"steps"`     // Palette resolution
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	PerfLogInterval     int     `yaml:"perf_log_interval"`     // Ticks between perf log lines (0 = off)
}

// StreamConfig holds websocket streaming parameters.
type StreamConfig struct {
	Addr      string  `yaml:"addr"`
	Path      string  `yaml:"path"`
	FrameRate float64 `yaml:"frame_rate"` // Broadcast frames per second
}

// TuneConfig holds parameter search settings.
type TuneConfig struct {
	Steps       int `yaml:"steps"`       // Simulation steps per evaluation
	Evaluations int `yaml:"evaluations"` // Optimizer function evaluation budget
	Particles   int `yaml:"particles"`   // Particle count used during evaluation
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	WorldW    float64 // Effective world width
	WorldH    float64 // Effective world height
	BoundsMin r2.Vec  // Particle domain, inset by particle radius
	BoundsMax r2.Vec
	Workers   int // Effective worker count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration.
// Panics if Init() has not been called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration. Used by tools that build configs in code.
func Set(cfg *Config) {
	global = cfg
}

// Load reads configuration from a YAML file, merging with embedded defaults.
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = float64(c.Screen.Width)
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = float64(c.Screen.Height)
	}
	c.Derived.WorldW = worldW
	c.Derived.WorldH = worldH

	inset := c.Particles.Radius
	c.Derived.BoundsMin = r2.Vec{X: -worldW/2 + inset, Y: -worldH/2 + inset}
	c.Derived.BoundsMax = r2.Vec{X: worldW/2 - inset, Y: worldH/2 - inset}

	c.Derived.Workers = c.Parallel.Workers
	if c.Derived.Workers <= 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Fluid.Validate(); err != nil {
		return err
	}
	if c.Derived.BoundsMax.X <= c.Derived.BoundsMin.X || c.Derived.BoundsMax.Y <= c.Derived.BoundsMin.Y {
		return fmt.Errorf("%w: world %gx%g is too small for particle radius %g",
			ErrInvalidConfig, c.Derived.WorldW, c.Derived.WorldH, c.Particles.Radius)
	}
	if c.Particles.Count < 0 {
		return fmt.Errorf("%w: particles.count must be >= 0, got %d", ErrInvalidConfig, c.Particles.Count)
	}
	if c.Integration.FixedDT < 0 {
		return fmt.Errorf("%w: integration.fixed_dt must be >= 0, got %g", ErrInvalidConfig, c.Integration.FixedDT)
	}
	return nil
}

// WriteYAML writes the current config to a file (useful for debugging).
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
