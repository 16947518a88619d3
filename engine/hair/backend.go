package hair

// BackendType enumerates the available simulation backends.
type BackendType int

const (
	// BackendTypeGPU runs the constraint kernels as WGSL compute shaders on the GPU.
	BackendTypeGPU BackendType = iota

	// BackendTypeCPU runs the same constraint kernels on the host using a worker pool,
	// mirroring the GPU dispatch geometry group for group.
	BackendTypeCPU
)

// simulatorBackend is the internal seam between the simulator front and the
// compute backends. Both backends honor the same numerical contracts, so the
// front can swap them without observable behavior changes beyond throughput.
type simulatorBackend interface {
	// initialize allocates backend-owned resources and uploads the seeded state.
	initialize(geom *Geometry, state *simState) error

	// stepFrame runs one frame of the constraint pipeline. While paused the
	// backend dispatches only the skip kernel and mutates no state.
	stepFrame(ctx FrameContext, paused bool) error

	// debugVectors returns the per-vertex diagnostics captured by the last frame,
	// or nil when the debug readback is disabled.
	debugVectors() [][3]float32

	// release frees backend-owned resources.
	release()
}
