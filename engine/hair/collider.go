package hair

import (
	"github.com/Carmen-Shannon/strands-go/common"
)

// Capsule is a capsule collider defined by a line segment and a radius. The
// zero value is a degenerate point capsule with radius 0, which never collides.
type Capsule struct {
	PointA [3]float32
	PointB [3]float32
	Radius float32
}

// ClosestPoint returns the closest point to p on the capsule's core segment.
//
// Parameters:
//   - p: the query point
//
// Returns:
//   - [3]float32: the closest point on the segment AB
func (c Capsule) ClosestPoint(p [3]float32) [3]float32 {
	ab := common.Sub3(c.PointB, c.PointA)
	abLenSq := common.Dot3(ab, ab)
	if abLenSq == 0 {
		return c.PointA
	}
	t := common.Dot3(common.Sub3(p, c.PointA), ab) / abLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return common.Add3(c.PointA, common.Scale3(ab, t))
}

// PushOut resolves a penetrating point to the capsule surface along the radial
// direction. Points outside the capsule are returned unchanged.
//
// Parameters:
//   - p: the point to resolve
//
// Returns:
//   - [3]float32: the resolved position
//   - bool: true if the point was inside the capsule and moved
func (c Capsule) PushOut(p [3]float32) ([3]float32, bool) {
	if c.Radius <= 0 {
		return p, false
	}
	closest := c.ClosestPoint(p)
	delta := common.Sub3(p, closest)
	dist := common.Length3(delta)
	if dist >= c.Radius {
		return p, false
	}
	var normal [3]float32
	if dist > 0 {
		normal = common.Scale3(delta, 1/dist)
	} else {
		// Point exactly on the core segment, push along an axis perpendicular
		// to the capsule so the resolved point actually leaves the core.
		axis := common.Sub3(c.PointB, c.PointA)
		normal = common.Cross3(axis, [3]float32{1, 0, 0})
		if common.Dot3(normal, normal) < 1e-12 {
			normal = common.Cross3(axis, [3]float32{0, 1, 0})
		}
		if common.Dot3(normal, normal) < 1e-12 {
			normal = [3]float32{0, 1, 0}
		}
		normal = common.Normalize3(normal)
	}
	return common.Add3(closest, common.Scale3(normal, c.Radius)), true
}

// ToGPU converts the capsule to its GPU-aligned uniform representation.
//
// Returns:
//   - GPUCapsule: the packed capsule with the radius in PointA.w
func (c Capsule) ToGPU() GPUCapsule {
	return GPUCapsule{
		PointA: [4]float32{c.PointA[0], c.PointA[1], c.PointA[2], c.Radius},
		PointB: [4]float32{c.PointB[0], c.PointB[1], c.PointB[2], 0},
	}
}
