// Package hair implements a position-based dynamics hair simulation driven by
// GPU compute kernels, with a CPU reference backend running the identical
// numerical contracts.
//
// A Simulator owns the per-object simulation state: rest lengths, reference
// vectors, rotation chains, and the vertex offset table. Each StepFrame runs
// the fixed constraint pipeline (integration + global shape matching, local
// shape constraints, optional length + wind, collision + tangents) with an
// implicit barrier between stages.
package hair

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/strands-go/engine/logger"
	"github.com/Carmen-Shannon/strands-go/engine/renderer"
	"go.uber.org/zap"
)

var (
	// ErrMissingGeometry indicates the required strand geometry provider was absent or empty
	// in a way that makes the simulation impossible to initialize.
	ErrMissingGeometry = errors.New("hair: required strand geometry is missing")

	// ErrKernelNotFound indicates the compiled compute program lacks an expected entry point.
	ErrKernelNotFound = errors.New("hair: compute kernel entry point not found")

	// ErrAllocation indicates the device could not satisfy a buffer allocation request.
	ErrAllocation = errors.New("hair: GPU buffer allocation failed")

	// ErrInvalidOffsets indicates the vertex offset table does not partition the vertex
	// range into contiguous, strictly increasing per-strand ranges.
	ErrInvalidOffsets = errors.New("hair: vertex offset table is invalid")

	// ErrNotInitialized indicates StepFrame was called before a successful Initialize.
	ErrNotInitialized = errors.New("hair: simulator not initialized")
)

// FrameContext carries the transient per-frame inputs supplied by the scene and
// transform system. Values are not retained beyond the frame they are passed to.
type FrameContext struct {
	// DeltaTime is the elapsed time since the previous frame in seconds, >= 0.
	DeltaTime float32

	// Model is the current model-to-world transform as a flat 4x4 column-major
	// matrix. Nil is treated as identity.
	Model []float32

	// Rotation is the current model world rotation as a unit quaternion (x, y,
	// z, w). It seeds each strand's root rotation so reference vectors follow
	// the object's orientation. The zero value is treated as identity.
	Rotation [4]float32
}

// simulator is the implementation of the Simulator interface.
// It holds the configuration and delegates per-frame work to the selected backend.
type simulator struct {
	mu *sync.Mutex

	backendType BackendType
	backend     simulatorBackend

	cfg      Config
	collider Capsule
	renderer renderer.Renderer

	paused      bool
	initialized bool

	// computationTime is the wall-clock duration of the last StepFrame in milliseconds.
	computationTime float64
}

// Simulator defines the interface for a single simulated hair object. One Simulator
// instance owns one object's buffers and rotation state; instances are fully
// independent and may be stepped from different goroutines.
type Simulator interface {
	// Initialize allocates all persistent simulation state from the host-supplied
	// arrays. It must be called exactly once before StepFrame; topology is fixed for
	// the simulator's lifetime. Rotation buffers are seeded with identity quaternions
	// and rest data is uploaded verbatim.
	//
	// Parameters:
	//   - geom: the strand geometry provider owning the initial/current/previous position buffers
	//   - restLengths: one target edge length per vertex (last vertex of a strand holds a sentinel)
	//   - refVectors: one rest-pose edge direction per vertex, in the strand's local rotation frame
	//   - offsets: index of the first vertex of each strand in the flat buffers
	//
	// Returns:
	//   - error: ErrMissingGeometry, ErrInvalidOffsets, ErrKernelNotFound, or ErrAllocation wrapped with detail
	Initialize(geom *Geometry, restLengths []float32, refVectors [][4]float32, offsets []uint32) error

	// StepFrame runs one simulation frame: binds the per-frame scalars, dispatches the
	// constraint kernels in fixed order, performs the optional debug readback, and
	// records the elapsed wall-clock time. While paused only the skip kernel is
	// dispatched and no state is mutated.
	//
	// Parameters:
	//   - ctx: the transient per-frame inputs
	//
	// Returns:
	//   - error: a device failure during dispatch, fatal to the frame; never retried
	StepFrame(ctx FrameContext) error

	// ComputationTime returns the wall-clock duration of the last StepFrame in milliseconds.
	//
	// Returns:
	//   - float64: last frame's simulation time in ms
	ComputationTime() float64

	// DebugVectors returns the per-vertex diagnostic vectors captured by the last
	// frame's readback. Empty unless the debug readback option is enabled.
	//
	// Returns:
	//   - [][3]float32: one diagnostic vector per vertex, or nil
	DebugVectors() [][3]float32

	// SetPaused freezes or resumes the simulation. While paused StepFrame dispatches
	// only the skip kernel, leaving all state untouched.
	//
	// Parameters:
	//   - paused: true to freeze the simulation
	SetPaused(paused bool)

	// Paused reports whether the simulation is currently frozen.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// Config returns the configuration this simulator was built with.
	//
	// Returns:
	//   - Config: the active configuration
	Config() Config

	// Release frees all device resources owned by the simulator. The simulator must
	// not be used after Release.
	Release()
}

var _ Simulator = &simulator{}

// NewSimulator creates a new Simulator with the specified backend type.
// The simulator is inert until Initialize is called.
//
// Parameters:
//   - backendType: the backend to run the constraint kernels on (GPU or CPU)
//   - opts: a variadic list of SimulatorBuilderOption functions to configure the simulator
//
// Returns:
//   - Simulator: a new Simulator instance with the provided configuration
func NewSimulator(backendType BackendType, opts ...SimulatorBuilderOption) Simulator {
	s := &simulator{
		mu:          &sync.Mutex{},
		backendType: backendType,
		cfg:         DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *simulator) Initialize(geom *Geometry, restLengths []float32, refVectors [][4]float32, offsets []uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if geom == nil {
		return ErrMissingGeometry
	}

	state, err := newSimState(geom, restLengths, refVectors, offsets, s.collider)
	if err != nil {
		return err
	}

	switch s.backendType {
	case BackendTypeCPU:
		s.backend = newCPUSimulatorBackend(s.cfg)
	case BackendTypeGPU:
		fallthrough
	default:
		s.backend = newGPUSimulatorBackend(s.cfg, s.renderer)
	}

	if err := s.backend.initialize(geom, state); err != nil {
		logger.Error("hair simulator initialization failed",
			zap.Int("strand_count", state.strandCount),
			zap.Int("vertex_count", state.vertexCount),
			zap.Error(err),
		)
		s.backend = nil
		return err
	}

	s.initialized = true
	logger.Info("hair simulator initialized",
		zap.Int("strand_count", state.strandCount),
		zap.Int("vertex_count", state.vertexCount),
		zap.Int("vertices_per_strand", state.verticesPerStrand),
	)
	return nil
}

func (s *simulator) StepFrame(ctx FrameContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	start := time.Now()
	err := s.backend.stepFrame(ctx, s.paused)
	s.computationTime = float64(time.Since(start).Microseconds()) / 1000.0

	return err
}

func (s *simulator) ComputationTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computationTime
}

func (s *simulator) DebugVectors() [][3]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	return s.backend.debugVectors()
}

func (s *simulator) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *simulator) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *simulator) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *simulator) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		s.backend.release()
		s.backend = nil
	}
	s.initialized = false
}
