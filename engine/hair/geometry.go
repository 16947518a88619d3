package hair

import (
	"fmt"
)

// Geometry is the strand geometry provider for one simulated hair object. It
// owns the flat per-vertex position buffers shared with the simulation: the
// immutable rest pose and the mutable current/previous Verlet pair. Positions
// are vec4 aligned with w unused, matching the GPU storage layout.
type Geometry struct {
	// Initial is the rest pose in model space. Never mutated by the simulation.
	Initial [][4]float32

	// Current is the present vertex position in world space.
	Current [][4]float32

	// Previous is the previous-frame vertex position, the implicit velocity store.
	Previous [][4]float32

	// Tangents is the per-vertex normalized forward edge direction, maintained by
	// the collision + tangents stage for downstream rendering.
	Tangents [][4]float32
}

// NewGeometry creates a Geometry from a rest pose, seeding the current and
// previous buffers with copies of it so the first frame starts at rest with
// zero implicit velocity.
//
// Parameters:
//   - initial: the rest-pose vertex positions in model space
//
// Returns:
//   - *Geometry: the geometry provider
func NewGeometry(initial [][4]float32) *Geometry {
	g := &Geometry{
		Initial:  initial,
		Current:  make([][4]float32, len(initial)),
		Previous: make([][4]float32, len(initial)),
		Tangents: make([][4]float32, len(initial)),
	}
	copy(g.Current, initial)
	copy(g.Previous, initial)
	return g
}

// VertexCount returns the total number of vertices across all strands.
//
// Returns:
//   - int: the vertex count
func (g *Geometry) VertexCount() int {
	return len(g.Initial)
}

// ValidateOffsets checks that the vertex offset table partitions the vertex
// range into contiguous, strictly increasing, uniformly sized per-strand ranges.
// The flat GPU buffer layout requires every strand to have the same vertex
// count, derived here as vertexCount / strandCount.
//
// Parameters:
//   - offsets: index of the first vertex of each strand
//   - vertexCount: the total number of vertices
//
// Returns:
//   - int: the uniform vertices-per-strand, 0 when there are no strands
//   - error: ErrInvalidOffsets wrapped with the violation detail
func ValidateOffsets(offsets []uint32, vertexCount int) (int, error) {
	strandCount := len(offsets)
	if strandCount == 0 {
		if vertexCount != 0 {
			return 0, fmt.Errorf("%w: %d vertices with no strands", ErrInvalidOffsets, vertexCount)
		}
		return 0, nil
	}
	if offsets[0] != 0 {
		return 0, fmt.Errorf("%w: first offset is %d, want 0", ErrInvalidOffsets, offsets[0])
	}
	if vertexCount%strandCount != 0 {
		return 0, fmt.Errorf("%w: %d vertices not divisible by %d strands", ErrInvalidOffsets, vertexCount, strandCount)
	}
	stride := vertexCount / strandCount
	if stride < 2 {
		return 0, fmt.Errorf("%w: %d vertices per strand, want at least 2", ErrInvalidOffsets, stride)
	}
	for i, off := range offsets {
		if want := uint32(i * stride); off != want {
			return 0, fmt.Errorf("%w: offset[%d] is %d, want %d", ErrInvalidOffsets, i, off, want)
		}
	}
	return stride, nil
}

// BuildStrandGrid procedurally generates a grid of straight strands hanging
// along -Y, with roots spaced on the XZ plane. It produces the full input set
// for Initialize: geometry, rest lengths, reference vectors, and the offset
// table. Reference vectors are the rest-pose edge directions, which for an
// identity rotation chain equal the world edge directions.
//
// Parameters:
//   - strandsX: number of strand roots along the x axis
//   - strandsZ: number of strand roots along the z axis
//   - verticesPerStrand: vertices per strand, >= 2
//   - spacing: distance between adjacent roots
//   - segmentLength: rest length of every strand edge
//
// Returns:
//   - *Geometry: the geometry provider seeded at the rest pose
//   - []float32: one rest length per vertex (last vertex of a strand repeats the previous edge)
//   - [][4]float32: one rest-pose edge direction per vertex
//   - []uint32: the vertex offset table
func BuildStrandGrid(strandsX, strandsZ, verticesPerStrand int, spacing, segmentLength float32) (*Geometry, []float32, [][4]float32, []uint32) {
	strandCount := strandsX * strandsZ
	vertexCount := strandCount * verticesPerStrand

	initial := make([][4]float32, 0, vertexCount)
	restLengths := make([]float32, 0, vertexCount)
	refVectors := make([][4]float32, 0, vertexCount)
	offsets := make([]uint32, 0, strandCount)

	down := [4]float32{0, -1, 0, 0}
	for sz := range strandsZ {
		for sx := range strandsX {
			offsets = append(offsets, uint32(len(initial)))
			rootX := float32(sx) * spacing
			rootZ := float32(sz) * spacing
			for v := range verticesPerStrand {
				initial = append(initial, [4]float32{
					rootX,
					-float32(v) * segmentLength,
					rootZ,
					1,
				})
				restLengths = append(restLengths, segmentLength)
				refVectors = append(refVectors, down)
			}
		}
	}

	return NewGeometry(initial), restLengths, refVectors, offsets
}
