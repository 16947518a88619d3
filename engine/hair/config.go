package hair

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable simulation parameters and stage toggles. Parameters
// in [0, 1] are clamped semantically by Validate rather than silently at use.
type Config struct {
	// Stiffness is the global shape matching strength in [0, 1]. 1 pins every
	// vertex to the transformed rest pose, 0 disables shape matching.
	Stiffness float32 `yaml:"stiffness"`

	// StiffnessRange is the normalized fraction of each strand, from the root,
	// that receives full stiffness. Past it the effective stiffness falls
	// linearly to 0 at the tip.
	StiffnessRange float32 `yaml:"stiffness_range"`

	// Damping is the velocity retention factor in [0, 1]. 0 removes all implicit
	// velocity each frame, 1 retains it fully.
	Damping float32 `yaml:"damping"`

	// Gravity is the gravity acceleration in world units per second squared.
	Gravity [3]float32 `yaml:"gravity"`

	// WindDirection is the wind direction. Does not need to be normalized; the
	// magnitude rides separately in WindMagnitude.
	WindDirection [3]float32 `yaml:"wind_direction"`

	// WindMagnitude is the wind acceleration magnitude.
	WindMagnitude float32 `yaml:"wind_magnitude"`

	// EnableLengthWind toggles the length constraints + wind stage. Off by
	// default; the core look comes from global and local shape matching.
	EnableLengthWind bool `yaml:"enable_length_wind"`

	// EnableCollision toggles the collision + tangents stage.
	EnableCollision bool `yaml:"enable_collision"`

	// DebugReadback enables the per-frame diagnostic buffer readback. On the GPU
	// backend this forces a blocking sync every frame.
	DebugReadback bool `yaml:"debug_readback"`

	// Workers is the CPU backend pool size. Zero or negative selects runtime.NumCPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default simulation configuration: integration,
// global shape, local shape, and collision enabled; length + wind off; no
// debug readback.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		Stiffness:       0.05,
		StiffnessRange:  0.4,
		Damping:         0.9,
		Gravity:         [3]float32{0, -9.81, 0},
		WindDirection:   [3]float32{1, 0, 0},
		WindMagnitude:   0,
		EnableCollision: true,
	}
}

// LoadConfig reads a Config from a YAML file, starting from defaults so the
// file only needs to name the values it overrides.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, parse, or validation failure
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("hair: reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("hair: parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that all normalized parameters are in range.
//
// Returns:
//   - error: the first out-of-range parameter, or nil
func (c Config) Validate() error {
	if c.Stiffness < 0 || c.Stiffness > 1 {
		return fmt.Errorf("hair: stiffness %v out of range [0, 1]", c.Stiffness)
	}
	if c.StiffnessRange < 0 || c.StiffnessRange > 1 {
		return fmt.Errorf("hair: stiffness_range %v out of range [0, 1]", c.StiffnessRange)
	}
	if c.Damping < 0 || c.Damping > 1 {
		return fmt.Errorf("hair: damping %v out of range [0, 1]", c.Damping)
	}
	if c.WindMagnitude < 0 {
		return fmt.Errorf("hair: wind_magnitude %v must be non-negative", c.WindMagnitude)
	}
	return nil
}
