package hair

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/strands-go/common"
)

func identityMatrix() []float32 {
	m := make([]float32, 16)
	common.Identity(m)
	return m
}

func testParams(cfg Config, dt float32) kernelParams {
	return kernelParams{
		model:          identityMatrix(),
		gravity:        cfg.Gravity,
		wind:           cfg.WindDirection,
		windMagnitude:  cfg.WindMagnitude,
		deltaTime:      dt,
		damping:        cfg.Damping,
		stiffness:      cfg.Stiffness,
		stiffnessRange: cfg.StiffnessRange,
	}
}

// newTestSim builds a CPU simulator over a single vertical strand.
func newTestSim(t *testing.T, cfg Config, vertices int, opts ...SimulatorBuilderOption) (Simulator, *Geometry) {
	t.Helper()
	geom, restLengths, refVectors, offsets := BuildStrandGrid(1, 1, vertices, 0.1, 0.05)
	opts = append([]SimulatorBuilderOption{WithConfig(cfg), WithWorkers(2)}, opts...)
	sim := NewSimulator(BackendTypeCPU, opts...)
	if err := sim.Initialize(geom, restLengths, refVectors, offsets); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(sim.Release)
	return sim, geom
}

func TestSimStateSeedsIdentityRotations(t *testing.T) {
	geom, restLengths, refVectors, offsets := BuildStrandGrid(2, 2, 4, 0.1, 0.05)
	state, err := newSimState(geom, restLengths, refVectors, offsets, Capsule{})
	if err != nil {
		t.Fatalf("newSimState: %v", err)
	}
	identity := common.QuatIdentity()
	for i := range state.globalRotations {
		if state.globalRotations[i] != identity || state.localRotations[i] != identity {
			t.Fatalf("rotation %d not seeded to identity", i)
		}
	}
	if state.verticesPerStrand != 4 || state.strandCount != 4 {
		t.Errorf("topology: %d strands of %d, want 4 of 4", state.strandCount, state.verticesPerStrand)
	}
}

// With full velocity retention and no shape matching, a falling vertex follows
// the closed form p_n = p0 + n(n+1)/2 * g * dt^2 under Verlet integration.
func TestIntegrateFreeFallClosedForm(t *testing.T) {
	geom, _, _, _ := BuildStrandGrid(1, 1, 4, 0.1, 0.05)
	cfg := DefaultConfig()
	cfg.Damping = 1
	cfg.Stiffness = 0
	cfg.Gravity = [3]float32{0, -10, 0}
	p := testParams(cfg, 0.1)

	const frames = 10
	start := geom.Initial[2][1]
	for range frames {
		integrateGlobalShapeStrand(geom.Current, geom.Previous, geom.Initial, p, 0, 4)
	}

	gStep := float64(-10 * 0.1 * 0.1)
	want := float64(start) + float64(frames*(frames+1))/2*gStep
	got := float64(geom.Current[2][1])
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("vertex height after %d frames: got %v, want %v", frames, got, want)
	}

	// Root never moves.
	if geom.Current[0] != geom.Initial[0] {
		t.Errorf("root moved: got %v, want %v", geom.Current[0], geom.Initial[0])
	}
}

func TestIntegrateRootFollowsModelTransform(t *testing.T) {
	geom, _, _, _ := BuildStrandGrid(1, 1, 3, 0.1, 0.05)
	cfg := DefaultConfig()
	p := testParams(cfg, 1.0/60)
	common.BuildModelMatrix(p.model, 2, 1, -3, 0, 0, 0, 1, 1, 1)

	integrateGlobalShapeStrand(geom.Current, geom.Previous, geom.Initial, p, 0, 3)

	root := geom.Initial[0]
	want := [4]float32{root[0] + 2, root[1] + 1, root[2] - 3, root[3]}
	for i := range 3 {
		if math.Abs(float64(geom.Current[0][i]-want[i])) > 1e-5 {
			t.Fatalf("root: got %v, want %v", geom.Current[0], want)
		}
	}
}

func TestIntegratePreviousGetsPreIntegrationCurrent(t *testing.T) {
	geom, _, _, _ := BuildStrandGrid(1, 1, 3, 0.1, 0.05)
	cfg := DefaultConfig()
	cfg.Gravity = [3]float32{0, -10, 0}
	p := testParams(cfg, 0.1)

	before := make([][4]float32, len(geom.Current))
	copy(before, geom.Current)

	integrateGlobalShapeStrand(geom.Current, geom.Previous, geom.Initial, p, 0, 3)

	for i := range before {
		if geom.Previous[i] != before[i] {
			t.Errorf("previous[%d]: got %v, want pre-integration %v", i, geom.Previous[i], before[i])
		}
	}
}

func TestStiffnessFalloff(t *testing.T) {
	tests := []struct {
		t, stiffnessRange, want float32
	}{
		{0, 0.4, 1},
		{0.4, 0.4, 1},
		{0.7, 0.4, 0.5},
		{1, 0.4, 0},
		{0.5, 1, 1},
		{1, 0, 0},
	}
	for _, tt := range tests {
		got := stiffnessFalloff(tt.t, tt.stiffnessRange)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("falloff(%v, %v): got %v, want %v", tt.t, tt.stiffnessRange, got, tt.want)
		}
	}
}

// A fully stiff strand at rest is a fixed point of the whole pipeline: every
// frame reproduces the rest pose exactly and leaves the rotation chain at
// identity.
func TestNullFrameIdempotence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stiffness = 1
	cfg.StiffnessRange = 1
	cfg.Damping = 0
	cfg.Gravity = [3]float32{0, -9.81, 0}

	sim, geom := newTestSim(t, cfg, 6)

	rest := make([][4]float32, len(geom.Initial))
	copy(rest, geom.Initial)

	for range 5 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
			t.Fatalf("StepFrame: %v", err)
		}
	}

	for i := range rest {
		for c := range 3 {
			if math.Abs(float64(geom.Current[i][c]-rest[i][c])) > 1e-5 {
				t.Fatalf("vertex %d drifted: got %v, want %v", i, geom.Current[i], rest[i])
			}
		}
	}
}

// The rotation chain must stay at unit length no matter how turbulent the
// motion gets.
func TestRotationChainStaysUnit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stiffness = 0.2
	cfg.Damping = 0.95
	cfg.Gravity = [3]float32{3, -9.81, 1}
	cfg.EnableLengthWind = true
	cfg.WindMagnitude = 5
	sim, _ := newTestSim(t, cfg, 8)

	for range 30 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
			t.Fatalf("StepFrame: %v", err)
		}
	}

	s := sim.(*simulator)
	backend := s.backend.(*cpuSimulatorBackend)
	for i, q := range backend.state.globalRotations {
		if l := common.QuatLength(q); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("global rotation %d has norm %v", i, l)
		}
	}
	for i, q := range backend.state.localRotations {
		if l := common.QuatLength(q); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("local rotation %d has norm %v", i, l)
		}
	}
}

// With the length stage enabled every edge returns to its rest length after
// the constraint pass, regardless of what integration did.
func TestLengthConstraintRestoresRestLengths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stiffness = 0
	cfg.Damping = 1
	cfg.EnableLengthWind = true
	sim, geom := newTestSim(t, cfg, 6)

	for range 10 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 30}); err != nil {
			t.Fatalf("StepFrame: %v", err)
		}
	}

	for i := range 5 {
		edge := common.Sub3(v3(geom.Current[i+1]), v3(geom.Current[i]))
		if l := common.Length3(edge); math.Abs(float64(l-0.05)) > 1e-4 {
			t.Errorf("edge %d length: got %v, want 0.05", i, l)
		}
	}
}

func TestCollisionPushesVerticesOut(t *testing.T) {
	capsule := Capsule{
		PointA: [3]float32{0, -0.1, 0},
		PointB: [3]float32{0, -0.2, 0},
		Radius: 0.04,
	}
	cfg := DefaultConfig()
	cfg.Stiffness = 1
	cfg.StiffnessRange = 1
	cfg.Damping = 0
	sim, geom := newTestSim(t, cfg, 8, WithCollider(capsule))

	if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatalf("StepFrame: %v", err)
	}

	for i := range geom.Current {
		p := v3(geom.Current[i])
		closest := capsule.ClosestPoint(p)
		if dist := common.Length3(common.Sub3(p, closest)); dist < capsule.Radius-1e-5 {
			t.Errorf("vertex %d still inside capsule: distance %v", i, dist)
		}
	}
}

func TestTangentsFollowEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stiffness = 1
	cfg.StiffnessRange = 1
	cfg.Damping = 0
	sim, geom := newTestSim(t, cfg, 4)

	if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatalf("StepFrame: %v", err)
	}

	// A straight vertical strand at rest has -Y tangents everywhere, with the
	// last vertex inheriting the previous edge.
	for i := range geom.Tangents {
		want := [4]float32{0, -1, 0, 0}
		for c := range 3 {
			if math.Abs(float64(geom.Tangents[i][c]-want[c])) > 1e-5 {
				t.Fatalf("tangent %d: got %v, want %v", i, geom.Tangents[i], want)
			}
		}
	}
}

// The frame rotation seeds the root of the rotation chain, so a rotated object
// swings its strands toward the rotated reference directions.
func TestFrameRotationSteersStrand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stiffness = 0
	cfg.Damping = 0
	cfg.Gravity = [3]float32{}
	sim, geom := newTestSim(t, cfg, 4)

	// Quarter turn taking the rest direction (-Y) to +X.
	rot := common.QuatFromTo([3]float32{0, -1, 0}, [3]float32{1, 0, 0})
	for range 20 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60, Rotation: rot}); err != nil {
			t.Fatalf("StepFrame: %v", err)
		}
	}

	tip := geom.Current[3]
	if tip[0] <= 0 {
		t.Errorf("tip did not swing toward +X: %v", tip)
	}
	if tip[1] <= geom.Initial[3][1] {
		t.Errorf("tip did not rise from rest: got y %v, rest y %v", tip[1], geom.Initial[3][1])
	}
}

// While paused the pipeline must not touch any state.
func TestPausedFrameMutatesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = [3]float32{0, -100, 0}
	sim, geom := newTestSim(t, cfg, 5)

	current := make([][4]float32, len(geom.Current))
	previous := make([][4]float32, len(geom.Previous))
	copy(current, geom.Current)
	copy(previous, geom.Previous)

	sim.SetPaused(true)
	if !sim.Paused() {
		t.Fatal("simulator did not report paused")
	}
	for range 3 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
			t.Fatalf("StepFrame: %v", err)
		}
	}

	for i := range current {
		if geom.Current[i] != current[i] || geom.Previous[i] != previous[i] {
			t.Fatalf("vertex %d mutated while paused", i)
		}
	}

	// Resuming picks the simulation back up.
	sim.SetPaused(false)
	if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatalf("StepFrame: %v", err)
	}
	if geom.Current[4] == current[4] {
		t.Error("simulation did not resume after unpause")
	}
}

// newHorizontalStrandSim builds a CPU simulator over one horizontal strand of
// four vertices with unit rest lengths and +X reference vectors.
func newHorizontalStrandSim(t *testing.T, cfg Config) (Simulator, *Geometry) {
	t.Helper()
	geom := NewGeometry([][4]float32{{0, 0, 0, 1}, {1, 0, 0, 1}, {2, 0, 0, 1}, {3, 0, 0, 1}})
	restLengths := []float32{1, 1, 1, 0}
	refVectors := [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}
	sim := NewSimulator(BackendTypeCPU, WithConfig(cfg), WithWorkers(1))
	if err := sim.Initialize(geom, restLengths, refVectors, []uint32{0}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(sim.Release)
	return sim, geom
}

// A damped, stiffened strand must sag strictly less under gravity than a fully
// unconstrained one, and end up strictly closer to the rest pose.
func TestStiffnessAndDampingRestrainSag(t *testing.T) {
	stiff := DefaultConfig()
	stiff.Damping = 0.5
	stiff.Stiffness = 0.8
	stiff.StiffnessRange = 0.5

	loose := DefaultConfig()
	loose.Damping = 0
	loose.Stiffness = 0

	simStiff, geomStiff := newHorizontalStrandSim(t, stiff)
	simLoose, geomLoose := newHorizontalStrandSim(t, loose)

	ctx := FrameContext{DeltaTime: 1.0 / 60}
	if err := simStiff.StepFrame(ctx); err != nil {
		t.Fatal(err)
	}
	if err := simLoose.StepFrame(ctx); err != nil {
		t.Fatal(err)
	}

	restTip := [3]float32{3, 0, 0}
	dropStiff := float64(-geomStiff.Current[3][1])
	dropLoose := float64(-geomLoose.Current[3][1])
	if dropStiff <= 0 {
		t.Fatalf("stiff tip did not sag at all: drop %v", dropStiff)
	}
	if dropStiff >= dropLoose {
		t.Errorf("stiff tip sagged %v, not strictly less than unconstrained %v", dropStiff, dropLoose)
	}

	distStiff := common.Length3(common.Sub3(v3(geomStiff.Current[3]), restTip))
	distLoose := common.Length3(common.Sub3(v3(geomLoose.Current[3]), restTip))
	if distStiff >= distLoose {
		t.Errorf("stiff tip distance to rest %v, not strictly closer than %v", distStiff, distLoose)
	}
}

func TestZeroStrands(t *testing.T) {
	sim := NewSimulator(BackendTypeCPU)
	if err := sim.Initialize(NewGeometry(nil), nil, nil, nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer sim.Release()

	for range 2 {
		if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
			t.Fatalf("StepFrame on empty simulation: %v", err)
		}
	}
}

func TestDebugVectorsGatedByReadback(t *testing.T) {
	cfg := DefaultConfig()
	sim, _ := newTestSim(t, cfg, 4)
	if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatal(err)
	}
	if got := sim.DebugVectors(); got != nil {
		t.Errorf("debug vectors returned without readback enabled: %d entries", len(got))
	}

	simDbg, geom := newTestSim(t, cfg, 4, WithDebugReadback(true))
	if err := simDbg.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatal(err)
	}
	if got := simDbg.DebugVectors(); len(got) != geom.VertexCount() {
		t.Errorf("debug vector count: got %d, want %d", len(got), geom.VertexCount())
	}
}

func TestComputationTimeRecorded(t *testing.T) {
	sim, _ := newTestSim(t, DefaultConfig(), 8)
	if err := sim.StepFrame(FrameContext{DeltaTime: 1.0 / 60}); err != nil {
		t.Fatal(err)
	}
	if sim.ComputationTime() < 0 {
		t.Errorf("computation time negative: %v", sim.ComputationTime())
	}
}

func TestInitializeErrors(t *testing.T) {
	t.Run("nil geometry", func(t *testing.T) {
		sim := NewSimulator(BackendTypeCPU)
		if err := sim.Initialize(nil, nil, nil, nil); !errors.Is(err, ErrMissingGeometry) {
			t.Errorf("got %v, want ErrMissingGeometry", err)
		}
	})

	t.Run("invalid offsets", func(t *testing.T) {
		geom, restLengths, refVectors, _ := BuildStrandGrid(2, 1, 4, 0.1, 0.05)
		sim := NewSimulator(BackendTypeCPU)
		err := sim.Initialize(geom, restLengths, refVectors, []uint32{0, 3})
		if !errors.Is(err, ErrInvalidOffsets) {
			t.Errorf("got %v, want ErrInvalidOffsets", err)
		}
	})

	t.Run("mismatched rest data", func(t *testing.T) {
		geom, restLengths, refVectors, offsets := BuildStrandGrid(1, 1, 4, 0.1, 0.05)
		sim := NewSimulator(BackendTypeCPU)
		err := sim.Initialize(geom, restLengths[:2], refVectors, offsets)
		if !errors.Is(err, ErrMissingGeometry) {
			t.Errorf("got %v, want ErrMissingGeometry", err)
		}
	})

	t.Run("step before initialize", func(t *testing.T) {
		sim := NewSimulator(BackendTypeCPU)
		if err := sim.StepFrame(FrameContext{}); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("got %v, want ErrNotInitialized", err)
		}
	})
}
