package hair

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSimParams is the GPU-aligned representation of the per-frame simulation
// parameters bound as the uniform at binding 0.
// Size: 144 bytes (std140 aligned).
type GPUSimParams struct {
	Model             [16]float32 // offset 0: model-to-world transform, column-major
	Gravity           [4]float32  // offset 64: gravity acceleration, xyz used
	Wind              [4]float32  // offset 80: wind direction in xyz, magnitude in w
	ModelRotation     [4]float32  // offset 96: model world rotation quaternion, xyzw
	DeltaTime         float32     // offset 112: frame delta time in seconds
	Damping           float32     // offset 116: velocity retention factor [0, 1]
	Stiffness         float32     // offset 120: global shape stiffness [0, 1]
	StiffnessRange    float32     // offset 124: normalized strand fraction at full stiffness [0, 1]
	StrandCount       uint32      // offset 128: number of strands in the flat buffers
	VerticesPerStrand uint32      // offset 132: uniform vertices per strand
	Frame             uint32      // offset 136: monotonically increasing frame index
	_pad0             uint32      // offset 140: padding to 144 bytes
}

// Size returns the size of GPUSimParams in bytes.
//
// Returns:
//   - int: size in bytes
func (g *GPUSimParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal converts the GPUSimParams to a byte slice for GPU upload.
//
// Returns:
//   - []byte: the byte representation of the struct
func (g *GPUSimParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	offset := 0

	for _, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	for _, v := range g.Gravity {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	for _, v := range g.Wind {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	for _, v := range g.ModelRotation {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}

	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(g.DeltaTime))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(g.Damping))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(g.Stiffness))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(g.StiffnessRange))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], g.StrandCount)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], g.VerticesPerStrand)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], g.Frame)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], 0) // _pad0

	return buf
}

// GPUCapsule is the GPU-aligned representation of the capsule collider bound
// as the uniform at binding 11. The capsule radius rides in PointA.w.
// Size: 32 bytes (std140 aligned).
type GPUCapsule struct {
	PointA [4]float32 // offset 0: capsule endpoint A in xyz, radius in w
	PointB [4]float32 // offset 16: capsule endpoint B in xyz, w unused
}

// Size returns the size of GPUCapsule in bytes.
//
// Returns:
//   - int: size in bytes
func (g *GPUCapsule) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal converts the GPUCapsule to a byte slice for GPU upload.
//
// Returns:
//   - []byte: the byte representation of the struct
func (g *GPUCapsule) Marshal() []byte {
	buf := make([]byte, g.Size())
	offset := 0

	for _, v := range g.PointA {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	for _, v := range g.PointB {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}

	return buf
}
