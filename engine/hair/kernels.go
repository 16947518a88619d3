package hair

import (
	"fmt"

	"github.com/Carmen-Shannon/strands-go/engine/renderer/shader"
)

// Compute kernel entry point names in the hair simulation shader module.
const (
	// KernelIntegrateGlobalShape advances vertices under gravity and blends them
	// toward the transformed rest pose.
	KernelIntegrateGlobalShape = "cs_integrate_global_shape"

	// KernelLocalShape enforces per-edge bend constraints sequentially from root
	// to tip, updating the per-vertex rotation chain.
	KernelLocalShape = "cs_local_shape"

	// KernelLengthWind applies wind acceleration then re-projects every edge to
	// its rest length, root to tip.
	KernelLengthWind = "cs_length_wind"

	// KernelCollisionTangents pushes vertices out of the capsule collider and
	// recomputes per-vertex tangents.
	KernelCollisionTangents = "cs_collision_tangents"

	// KernelSkip performs no state mutation. Dispatched while the simulation is
	// paused to keep the frame structure intact.
	KernelSkip = "cs_skip"
)

// StrandsPerGroup is the number of strands processed by one workgroup. Each
// kernel is declared with a matching workgroup size of 2 threads, one strand per
// thread.
const StrandsPerGroup = 2

// DispatchGroupCount returns the number of workgroups to dispatch on the x axis
// so that every strand is covered. Rounds up, so workgroups past the strand
// count carry threads that fail the kernel's bounds check and exit.
//
// Parameters:
//   - strandCount: the number of strands in the simulation
//
// Returns:
//   - uint32: the workgroup count, 0 when there are no strands
func DispatchGroupCount(strandCount uint32) uint32 {
	return (strandCount + StrandsPerGroup - 1) / StrandsPerGroup
}

// KernelSet holds the resolved entry points of the five simulation kernels.
// Resolution validates that the compiled module actually declares each entry,
// failing fast at initialization rather than at first dispatch.
type KernelSet struct {
	IntegrateGlobalShape string
	LocalShape           string
	LengthWind           string
	CollisionTangents    string
	Skip                 string
}

// ResolveKernels looks up the five simulation entry points on the given compute
// shader and verifies each declares the expected workgroup size.
//
// Parameters:
//   - s: the parsed compute shader module
//
// Returns:
//   - KernelSet: the validated entry point names
//   - error: ErrKernelNotFound wrapped with the missing entry name
func ResolveKernels(s shader.Shader) (KernelSet, error) {
	names := []string{
		KernelIntegrateGlobalShape,
		KernelLocalShape,
		KernelLengthWind,
		KernelCollisionTangents,
		KernelSkip,
	}
	for _, name := range names {
		if !s.HasEntryPoint(name) {
			return KernelSet{}, fmt.Errorf("%w: %s", ErrKernelNotFound, name)
		}
		if size := s.WorkgroupSize(name); size[0] != StrandsPerGroup {
			return KernelSet{}, fmt.Errorf("%w: %s declares workgroup size %d, want %d", ErrKernelNotFound, name, size[0], StrandsPerGroup)
		}
	}
	return KernelSet{
		IntegrateGlobalShape: KernelIntegrateGlobalShape,
		LocalShape:           KernelLocalShape,
		LengthWind:           KernelLengthWind,
		CollisionTangents:    KernelCollisionTangents,
		Skip:                 KernelSkip,
	}, nil
}
