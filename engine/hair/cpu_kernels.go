package hair

import (
	"math"

	"github.com/Carmen-Shannon/strands-go/common"
)

// kernelParams are the per-frame scalars shared by every strand kernel, the CPU
// mirror of the GPUSimParams uniform.
type kernelParams struct {
	model          []float32
	modelRotation  [4]float32
	gravity        [3]float32
	wind           [3]float32
	windMagnitude  float32
	deltaTime      float32
	damping        float32
	stiffness      float32
	stiffnessRange float32
	frame          uint32
}

func v3(p [4]float32) [3]float32 {
	return [3]float32{p[0], p[1], p[2]}
}

func v4(p [3]float32, w float32) [4]float32 {
	return [4]float32{p[0], p[1], p[2], w}
}

// normalizeRotation returns the unit form of a frame rotation, treating the
// zero value as identity so callers can omit it.
func normalizeRotation(q [4]float32) [4]float32 {
	return common.QuatNormalize(q)
}

// integrateGlobalShapeStrand runs Verlet integration under gravity followed by
// global shape matching for one strand. The root vertex is pinned to its
// transformed rest position. For every vertex the previous-position buffer
// receives the pre-integration current position.
func integrateGlobalShapeStrand(cur, prev, initial [][4]float32, p kernelParams, base, count int) {
	gravityStep := common.Scale3(p.gravity, p.deltaTime*p.deltaTime)

	for i := range count {
		idx := base + i
		restWorld := common.TransformPoint(p.model, v3(initial[idx]))
		old := v3(cur[idx])

		if i == 0 {
			prev[idx] = v4(old, cur[idx][3])
			cur[idx] = v4(restWorld, cur[idx][3])
			continue
		}

		velocity := common.Scale3(common.Sub3(old, v3(prev[idx])), p.damping)
		integrated := common.Add3(common.Add3(old, velocity), gravityStep)

		t := float32(i) / float32(count-1)
		w := p.stiffness * stiffnessFalloff(t, p.stiffnessRange)
		shaped := common.Add3(integrated, common.Scale3(common.Sub3(restWorld, integrated), w))

		prev[idx] = v4(old, cur[idx][3])
		cur[idx] = v4(shaped, cur[idx][3])
	}
}

// stiffnessFalloff returns the stiffness attenuation at normalized strand
// position t: full strength through stiffnessRange, then linear to 0 at the tip.
func stiffnessFalloff(t, stiffnessRange float32) float32 {
	if t <= stiffnessRange {
		return 1
	}
	if stiffnessRange >= 1 {
		return 1
	}
	f := (1 - t) / (1 - stiffnessRange)
	if f < 0 {
		return 0
	}
	return f
}

// localShapeStrand enforces per-edge bend constraints sequentially from root to
// tip. The root rotation is seeded with the object's current orientation so
// reference vectors follow model rotation down the chain. Each edge's expected
// direction comes from rotating the vertex's reference vector by the
// accumulated global rotation; the corrective displacement is split between
// the edge's vertices except at the root, which never moves. The rotation
// chain is updated with the shortest-arc rotation between expected and actual
// edge, renormalized to keep the chain at unit length.
func localShapeStrand(cur, globalRot, localRot, refs [][4]float32, rest []float32, debug [][4]float32, rotation [4]float32, base, count int) {
	globalRot[base] = common.QuatNormalize(rotation)

	for i := range count - 1 {
		idx := base + i

		expectedEdge := common.Scale3(common.QuatRotate(globalRot[idx], v3(refs[idx+1])), rest[idx])
		expectedPos := common.Add3(v3(cur[idx]), expectedEdge)
		delta := common.Sub3(expectedPos, v3(cur[idx+1]))

		half := common.Scale3(delta, 0.5)
		if i > 0 {
			cur[idx] = v4(common.Sub3(v3(cur[idx]), half), cur[idx][3])
		}
		cur[idx+1] = v4(common.Add3(v3(cur[idx+1]), half), cur[idx+1][3])
		debug[idx+1] = v4(delta, 0)

		actualEdge := common.Sub3(v3(cur[idx+1]), v3(cur[idx]))
		if common.Length3(actualEdge) == 0 || common.Length3(expectedEdge) == 0 {
			continue
		}
		adjust := common.QuatFromTo(common.Normalize3(expectedEdge), common.Normalize3(actualEdge))
		globalRot[idx+1] = common.QuatNormalize(common.QuatMul(adjust, globalRot[idx]))
		localRot[idx+1] = common.QuatNormalize(adjust)
	}
}

// lengthWindStrand applies wind acceleration to every non-root vertex, with a
// per-strand flutter term varying over frames, then re-projects each edge to
// its rest length from root to tip.
func lengthWindStrand(cur [][4]float32, rest []float32, p kernelParams, strand, base, count int) {
	if p.windMagnitude > 0 {
		flutter := 0.5 + 0.5*float32(math.Sin(float64(0.05*float32(p.frame)+0.7*float32(strand))))
		accel := common.Scale3(p.wind, p.windMagnitude*flutter*p.deltaTime*p.deltaTime)
		for i := 1; i < count; i++ {
			idx := base + i
			cur[idx] = v4(common.Add3(v3(cur[idx]), accel), cur[idx][3])
		}
	}

	for i := range count - 1 {
		idx := base + i
		edge := common.Sub3(v3(cur[idx+1]), v3(cur[idx]))
		if common.Length3(edge) == 0 {
			continue
		}
		dir := common.Normalize3(edge)
		cur[idx+1] = v4(common.Add3(v3(cur[idx]), common.Scale3(dir, rest[idx])), cur[idx+1][3])
	}
}

// collisionTangentsStrand pushes penetrating vertices out to the capsule
// surface, then recomputes per-vertex tangents as the normalized forward edge.
// The last vertex inherits the previous edge's tangent.
func collisionTangentsStrand(cur, tangents [][4]float32, c Capsule, base, count int) {
	for i := range count {
		idx := base + i
		if resolved, moved := c.PushOut(v3(cur[idx])); moved {
			cur[idx] = v4(resolved, cur[idx][3])
		}
	}

	for i := range count - 1 {
		idx := base + i
		edge := common.Sub3(v3(cur[idx+1]), v3(cur[idx]))
		if common.Length3(edge) == 0 {
			continue
		}
		tangents[idx] = v4(common.Normalize3(edge), 0)
	}
	if count > 1 {
		tangents[base+count-1] = tangents[base+count-2]
	}
}
