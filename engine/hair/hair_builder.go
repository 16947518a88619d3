package hair

import (
	"github.com/Carmen-Shannon/strands-go/engine/renderer"
)

// SimulatorBuilderOption is a functional option applied to a simulator during construction via NewSimulator.
type SimulatorBuilderOption func(*simulator)

// WithConfig sets the simulation configuration. Unset fields keep their defaults
// only if the caller started from DefaultConfig; the config is used as given.
//
// Parameters:
//   - cfg: the configuration to use
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the config option to a simulator
func WithConfig(cfg Config) SimulatorBuilderOption {
	return func(s *simulator) {
		s.cfg = cfg
	}
}

// WithCollider sets the capsule collider the collision stage resolves against.
// Without this option the collider is a degenerate zero-radius capsule at the
// origin, which never pushes vertices out.
//
// Parameters:
//   - c: the capsule collider
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the collider option to a simulator
func WithCollider(c Capsule) SimulatorBuilderOption {
	return func(s *simulator) {
		s.collider = c
	}
}

// WithDebugReadback enables the per-frame diagnostic buffer readback. This forces
// a blocking GPU sync every frame on the GPU backend, so it should only be enabled
// for verification runs.
//
// Parameters:
//   - enabled: true to read diagnostics back each frame
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the debug readback option to a simulator
func WithDebugReadback(enabled bool) SimulatorBuilderOption {
	return func(s *simulator) {
		s.cfg.DebugReadback = enabled
	}
}

// WithWorkers sets the worker count for the CPU backend's pool. Ignored by the
// GPU backend. Zero or negative selects the default of runtime.NumCPU.
//
// Parameters:
//   - workers: the number of pool workers
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the workers option to a simulator
func WithWorkers(workers int) SimulatorBuilderOption {
	return func(s *simulator) {
		s.cfg.Workers = workers
	}
}

// WithRenderer supplies an existing Renderer for the GPU backend to share. Without
// this option the GPU backend creates and owns its own headless renderer.
//
// Parameters:
//   - r: the renderer to share
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the renderer option to a simulator
func WithRenderer(r renderer.Renderer) SimulatorBuilderOption {
	return func(s *simulator) {
		s.renderer = r
	}
}
