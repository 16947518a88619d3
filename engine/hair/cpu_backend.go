package hair

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/strands-go/common"
)

// cpuSimulatorBackend runs the constraint kernels on the host. It mirrors the
// GPU dispatch geometry exactly: work is submitted in groups of StrandsPerGroup
// strands, with a WaitGroup barrier between stages standing in for the GPU's
// inter-dispatch barriers. Within a stage strands never share vertices, so
// groups run in parallel without locks.
type cpuSimulatorBackend struct {
	cfg   Config
	geom  *Geometry
	state *simState

	pool    worker.DynamicWorkerPool
	workers int

	// identity is the fallback model matrix for frames with a nil transform.
	identity []float32

	frame  uint32
	taskID int
}

var _ simulatorBackend = &cpuSimulatorBackend{}

// newCPUSimulatorBackend creates the CPU backend. The worker pool is created
// lazily at initialize so a simulator that fails validation never spawns workers.
func newCPUSimulatorBackend(cfg Config) *cpuSimulatorBackend {
	workers := cfg.Workers
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	return &cpuSimulatorBackend{
		cfg:     cfg,
		workers: workers,
	}
}

func (b *cpuSimulatorBackend) initialize(geom *Geometry, state *simState) error {
	b.geom = geom
	b.state = state
	b.identity = make([]float32, 16)
	common.Identity(b.identity)
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	return nil
}

func (b *cpuSimulatorBackend) stepFrame(ctx FrameContext, paused bool) error {
	if paused {
		// Mirrors the GPU skip dispatch: the frame runs, state stays untouched.
		b.runStage(func(strand, base, count int) {})
		b.frame++
		return nil
	}

	model := ctx.Model
	if model == nil {
		model = b.identity
	}
	p := kernelParams{
		model:          model,
		modelRotation:  normalizeRotation(ctx.Rotation),
		gravity:        b.cfg.Gravity,
		wind:           b.cfg.WindDirection,
		windMagnitude:  b.cfg.WindMagnitude,
		deltaTime:      ctx.DeltaTime,
		damping:        b.cfg.Damping,
		stiffness:      b.cfg.Stiffness,
		stiffnessRange: b.cfg.StiffnessRange,
		frame:          b.frame,
	}

	b.runStage(func(strand, base, count int) {
		integrateGlobalShapeStrand(b.geom.Current, b.geom.Previous, b.geom.Initial, p, base, count)
	})
	b.runStage(func(strand, base, count int) {
		localShapeStrand(b.geom.Current, b.state.globalRotations, b.state.localRotations, b.state.refVectors, b.state.restLengths, b.state.debug, p.modelRotation, base, count)
	})
	if b.cfg.EnableLengthWind {
		b.runStage(func(strand, base, count int) {
			lengthWindStrand(b.geom.Current, b.state.restLengths, p, strand, base, count)
		})
	}
	if b.cfg.EnableCollision {
		b.runStage(func(strand, base, count int) {
			collisionTangentsStrand(b.geom.Current, b.geom.Tangents, b.state.collider, base, count)
		})
	}

	b.frame++
	return nil
}

// runStage submits one task per workgroup-equivalent strand pair and blocks
// until all complete. A WaitGroup provides the barrier since pool.Wait() blocks
// until workers idle-exit, which is unsuitable for frame-rate workloads.
func (b *cpuSimulatorBackend) runStage(fn func(strand, base, count int)) {
	groups := int(DispatchGroupCount(uint32(b.state.strandCount)))
	var wg sync.WaitGroup
	for g := range groups {
		wg.Add(1)
		first := g * StrandsPerGroup
		id := b.taskID
		b.taskID++
		b.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for s := first; s < first+StrandsPerGroup && s < b.state.strandCount; s++ {
					fn(s, int(b.state.offsets[s]), b.state.verticesPerStrand)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (b *cpuSimulatorBackend) debugVectors() [][3]float32 {
	if !b.cfg.DebugReadback || b.state == nil {
		return nil
	}
	out := make([][3]float32, len(b.state.debug))
	for i, d := range b.state.debug {
		out[i] = [3]float32{d[0], d[1], d[2]}
	}
	return out
}

func (b *cpuSimulatorBackend) release() {
	// Pool workers idle-exit on their own after the configured timeout.
	b.pool = nil
	b.geom = nil
	b.state = nil
}
