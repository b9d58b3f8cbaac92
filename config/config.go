// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Types      []TypeConfig     `yaml:"types"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds driver pacing settings.
// Nothing is drawn by this module; the driver only uses TargetFPS to pace ticks.
type ScreenConfig struct {
	TargetFPS int `yaml:"target_fps"` // 0 = run as fast as possible
}

// WorldConfig holds the periodic domain and its partition.
// The world spans [-WorldSize/2, WorldSize/2] on every axis.
type WorldConfig struct {
	GridSize  int     `yaml:"grid_size"`
	WorldSize float64 `yaml:"world_size"`
}

// PhysicsConfig holds force law and integration constants.
type PhysicsConfig struct {
	CenterForce         float64 `yaml:"center_force"`          // Constant pull toward origin
	CenterEpsilon       float64 `yaml:"center_epsilon"`        // No central force below this squared radius
	BaseRadius          float64 `yaml:"base_radius"`           // Particle radius at z = -1
	RadiusZScale        float64 `yaml:"radius_z_scale"`        // Radius growth per unit of (z+1)
	CollisionScale      float64 `yaml:"collision_scale"`       // Threshold = (ri+rj)^2 * this
	CollisionForce      float64 `yaml:"collision_force"`       // Soft repulsion strength
	MaxDistSq           float64 `yaml:"max_dist_sq"`           // Interaction cutoff (squared)
	MinDistSq           float64 `yaml:"min_dist_sq"`           // Numerical floor (squared)
	Damping             float64 `yaml:"damping"`               // Velocity retained per tick
	Timestep            float64 `yaml:"timestep"`              // Force to velocity factor
	InitialCellCapacity int     `yaml:"initial_cell_capacity"` // First allocation per cell
	MaxCellCapacity     int     `yaml:"max_cell_capacity"`     // Growth ceiling per cell
	WrapNeighbors       bool    `yaml:"wrap_neighbors"`        // Wrap neighbor search modulo grid size
}

// PopulationConfig holds initial particle injection parameters.
type PopulationConfig struct {
	Count        int         `yaml:"count"`
	MaxParticles int         `yaml:"max_particles"`
	Distribution string      `yaml:"distribution"` // "uniform" or "clustered"
	Noise        NoiseConfig `yaml:"noise"`
}

// NoiseConfig holds Perlin parameters for clustered seeding.
type NoiseConfig struct {
	Alpha     float64 `yaml:"alpha"`     // Weight when the sum is formed
	Beta      float64 `yaml:"beta"`      // Harmonic scaling/spacing
	Octaves   int32   `yaml:"octaves"`   // Number of iterations
	Scale     float64 `yaml:"scale"`     // World to noise coordinate factor
	Threshold float64 `yaml:"threshold"` // Minimum acceptance probability
}

// TypeConfig defines one particle species.
type TypeConfig struct {
	Name       string     `yaml:"name"`
	Color      [3]float32 `yaml:"color"`      // RGB in [0,1]
	Attraction []float64  `yaml:"attraction"` // Coefficient toward each type, by index
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumTypes   int
	HalfWorld  float64   // WorldSize / 2
	CellSize   float64   // WorldSize / GridSize
	Attraction []float64 // Row-major NumTypes x NumTypes
}

// MaxTypes is the largest type table a particle's type field can index.
const MaxTypes = 256

// Distribution names.
const (
	DistributionUniform   = "uniform"
	DistributionClustered = "clustered"
)

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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks values that would break the engine's invariants.
func (c *Config) Validate() error {
	var errs []error

	if c.World.GridSize < 1 {
		errs = append(errs, fmt.Errorf("world.grid_size must be >= 1, got %d", c.World.GridSize))
	}
	if c.World.WorldSize <= 0 {
		errs = append(errs, fmt.Errorf("world.world_size must be > 0, got %g", c.World.WorldSize))
	}
	if c.Physics.WrapNeighbors && c.World.GridSize < 3 {
		// A wrapped 3x3x3 block would visit the same cell twice.
		errs = append(errs, fmt.Errorf("physics.wrap_neighbors requires grid_size >= 3, got %d", c.World.GridSize))
	}
	if c.Physics.InitialCellCapacity < 1 {
		errs = append(errs, errors.New("physics.initial_cell_capacity must be >= 1"))
	}
	if c.Physics.MaxCellCapacity < c.Physics.InitialCellCapacity {
		errs = append(errs, fmt.Errorf("physics.max_cell_capacity (%d) below initial_cell_capacity (%d)",
			c.Physics.MaxCellCapacity, c.Physics.InitialCellCapacity))
	}
	if c.Population.Count < 0 || c.Population.Count > c.Population.MaxParticles {
		errs = append(errs, fmt.Errorf("population.count must be in [0, %d], got %d",
			c.Population.MaxParticles, c.Population.Count))
	}
	switch c.Population.Distribution {
	case DistributionUniform, DistributionClustered:
	default:
		errs = append(errs, fmt.Errorf("population.distribution %q is not one of uniform, clustered", c.Population.Distribution))
	}

	n := len(c.Types)
	if n == 0 {
		errs = append(errs, errors.New("types: at least one particle type is required"))
	} else if n > MaxTypes {
		errs = append(errs, fmt.Errorf("types: at most %d particle types are supported, got %d", MaxTypes, n))
	}
	for i, t := range c.Types {
		if len(t.Attraction) != n {
			errs = append(errs, fmt.Errorf("types[%d] (%s): attraction has %d entries, want %d", i, t.Name, len(t.Attraction), n))
			continue
		}
		for j, v := range t.Attraction {
			if v < -1 || v > 1 {
				errs = append(errs, fmt.Errorf("types[%d] (%s): attraction[%d] = %g outside [-1, 1]", i, t.Name, j, v))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	n := len(c.Types)
	c.Derived.NumTypes = n
	c.Derived.HalfWorld = c.World.WorldSize / 2
	c.Derived.CellSize = c.World.WorldSize / float64(c.World.GridSize)

	c.Derived.Attraction = make([]float64, 0, n*n)
	for _, t := range c.Types {
		c.Derived.Attraction = append(c.Derived.Attraction, t.Attraction...)
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 60
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
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
