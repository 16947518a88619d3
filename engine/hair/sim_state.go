package hair

import (
	"fmt"

	"github.com/Carmen-Shannon/strands-go/common"
)

// simState is the host-side simulation state store shared by both backends. It
// validates the topology once at creation, seeds the rotation chains with
// identity quaternions, and retains the rest data verbatim. The CPU backend
// mutates these slices in place; the GPU backend uploads them and owns device
// copies from then on.
type simState struct {
	vertexCount       int
	strandCount       int
	verticesPerStrand int

	restLengths []float32
	refVectors  [][4]float32
	offsets     []uint32

	// globalRotations and localRotations are quaternions stored xyzw, seeded to identity.
	globalRotations [][4]float32
	localRotations  [][4]float32

	// debug holds the per-vertex diagnostic vectors, vec4 aligned to match the GPU buffer.
	debug [][4]float32

	collider Capsule
}

// newSimState validates the topology and rest data and builds the seeded state.
//
// Parameters:
//   - geom: the geometry provider
//   - restLengths: one target edge length per vertex
//   - refVectors: one rest-pose edge direction per vertex
//   - offsets: the vertex offset table
//   - collider: the capsule collider for the collision stage
//
// Returns:
//   - *simState: the validated, seeded state
//   - error: ErrMissingGeometry or ErrInvalidOffsets wrapped with detail
func newSimState(geom *Geometry, restLengths []float32, refVectors [][4]float32, offsets []uint32, collider Capsule) (*simState, error) {
	vertexCount := geom.VertexCount()
	if len(geom.Current) != vertexCount || len(geom.Previous) != vertexCount || len(geom.Tangents) != vertexCount {
		return nil, fmt.Errorf("%w: position buffer lengths disagree", ErrMissingGeometry)
	}
	if vertexCount > 0 && (len(restLengths) != vertexCount || len(refVectors) != vertexCount) {
		return nil, fmt.Errorf("%w: rest data length %d/%d, want %d", ErrMissingGeometry, len(restLengths), len(refVectors), vertexCount)
	}

	verticesPerStrand, err := ValidateOffsets(offsets, vertexCount)
	if err != nil {
		return nil, err
	}

	s := &simState{
		vertexCount:       vertexCount,
		strandCount:       len(offsets),
		verticesPerStrand: verticesPerStrand,
		restLengths:       restLengths,
		refVectors:        refVectors,
		offsets:           offsets,
		globalRotations:   make([][4]float32, vertexCount),
		localRotations:    make([][4]float32, vertexCount),
		debug:             make([][4]float32, vertexCount),
		collider:          collider,
	}

	identity := common.QuatIdentity()
	for i := range s.globalRotations {
		s.globalRotations[i] = identity
		s.localRotations[i] = identity
	}

	return s, nil
}
