package hair

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/strands-go/common"
	"github.com/Carmen-Shannon/strands-go/engine/renderer"
	"github.com/Carmen-Shannon/strands-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/strands-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/strands-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/hair_sim.wgsl
var hairSimSource string

// Bind group 0 binding indices, matching the shader module declarations.
const (
	bindingParams           = 0
	bindingPositions        = 1
	bindingPositionsPrev    = 2
	bindingPositionsInitial = 3
	bindingRestLengths      = 4
	bindingRefVectors       = 5
	bindingStrandOffsets    = 6
	bindingGlobalRotations  = 7
	bindingLocalRotations   = 8
	bindingTangents         = 9
	bindingDebugVectors     = 10
	bindingCollider         = 11
)

const (
	shaderKeyHairSim  = "hair_sim"
	pipelineKeyPrefix = "hair_sim/"
)

// gpuSimulatorBackend runs the constraint kernels as WGSL compute shaders. All
// five kernels live in one shader module and share one bind group; the host
// dispatches them as separate passes within a single batched frame submission,
// which gives the required barrier between stages.
type gpuSimulatorBackend struct {
	cfg Config

	r            renderer.Renderer
	ownsRenderer bool

	sh       shader.Shader
	kernels  KernelSet
	provider bind_group_provider.BindGroupProvider

	geom  *Geometry
	state *simState

	identity []float32
	frame    uint32
	debug    [][3]float32
}

var _ simulatorBackend = &gpuSimulatorBackend{}

// newGPUSimulatorBackend creates the GPU backend. When r is nil the backend
// creates and owns its own headless renderer at initialize.
func newGPUSimulatorBackend(cfg Config, r renderer.Renderer) *gpuSimulatorBackend {
	return &gpuSimulatorBackend{
		cfg: cfg,
		r:   r,
	}
}

func (b *gpuSimulatorBackend) initialize(geom *Geometry, state *simState) error {
	b.geom = geom
	b.state = state
	b.identity = make([]float32, 16)
	common.Identity(b.identity)

	if b.r == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAllocation, err)
		}
		b.r = r
		b.ownsRenderer = true
	}

	b.sh = shader.NewShader(shaderKeyHairSim, shader.ShaderTypeCompute, hairSimSource)
	kernels, err := ResolveKernels(b.sh)
	if err != nil {
		return err
	}
	b.kernels = kernels

	pipelines := make([]pipeline.Pipeline, 0, 5)
	for _, entry := range []string{
		kernels.IntegrateGlobalShape,
		kernels.LocalShape,
		kernels.LengthWind,
		kernels.CollisionTangents,
		kernels.Skip,
	} {
		pipelines = append(pipelines, pipeline.NewPipeline(
			pipelineKeyPrefix+entry,
			pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(b.sh),
			pipeline.WithEntryPoint(entry),
		))
	}
	if err := b.r.RegisterPipelines(pipelines...); err != nil {
		return err
	}

	if err := b.initBuffers(); err != nil {
		return err
	}
	return b.uploadState()
}

// initBuffers creates the bind group with per-binding sizes derived from the
// topology. Runtime-sized arrays get explicit sizes; the two uniforms keep the
// MinBindingSize the shader parser derived from the WGSL structs. Buffers read
// back to the host additionally carry CopySrc.
func (b *gpuSimulatorBackend) initBuffers() error {
	vertexBytes := uint64(max(b.state.vertexCount, 1)) * 16
	scalarBytes := uint64(max(b.state.vertexCount, 1)) * 4
	offsetBytes := uint64(max(b.state.strandCount, 1)) * 4

	sizeOverrides := map[int]uint64{
		bindingPositions:        vertexBytes,
		bindingPositionsPrev:    vertexBytes,
		bindingPositionsInitial: vertexBytes,
		bindingRestLengths:      scalarBytes,
		bindingRefVectors:       vertexBytes,
		bindingStrandOffsets:    offsetBytes,
		bindingGlobalRotations:  vertexBytes,
		bindingLocalRotations:   vertexBytes,
		bindingTangents:         vertexBytes,
		bindingDebugVectors:     vertexBytes,
	}
	usageOverrides := map[int]wgpu.BufferUsage{
		bindingPositions:    wgpu.BufferUsageCopySrc,
		bindingTangents:     wgpu.BufferUsageCopySrc,
		bindingDebugVectors: wgpu.BufferUsageCopySrc,
	}

	b.provider = bind_group_provider.NewBindGroupProvider("hair sim")
	if err := b.r.InitBindGroup(b.provider, b.sh.BindGroupLayoutDescriptor(0), usageOverrides, sizeOverrides); err != nil {
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	return nil
}

// uploadState writes the seeded host state verbatim: rest data, the offset
// table, identity rotation chains, the initial Verlet pair, and the collider.
func (b *gpuSimulatorBackend) uploadState() error {
	if b.state.vertexCount == 0 {
		return nil
	}

	capsule := b.state.collider.ToGPU()
	writes := []bind_group_provider.BufferWrite{
		{Provider: b.provider, Binding: bindingPositions, Data: common.SliceToBytes(b.geom.Current)},
		{Provider: b.provider, Binding: bindingPositionsPrev, Data: common.SliceToBytes(b.geom.Previous)},
		{Provider: b.provider, Binding: bindingPositionsInitial, Data: common.SliceToBytes(b.geom.Initial)},
		{Provider: b.provider, Binding: bindingRestLengths, Data: common.SliceToBytes(b.state.restLengths)},
		{Provider: b.provider, Binding: bindingRefVectors, Data: common.SliceToBytes(b.state.refVectors)},
		{Provider: b.provider, Binding: bindingStrandOffsets, Data: common.SliceToBytes(b.state.offsets)},
		{Provider: b.provider, Binding: bindingGlobalRotations, Data: common.SliceToBytes(b.state.globalRotations)},
		{Provider: b.provider, Binding: bindingLocalRotations, Data: common.SliceToBytes(b.state.localRotations)},
		{Provider: b.provider, Binding: bindingCollider, Data: capsule.Marshal()},
	}
	b.r.WriteBuffers(writes)
	return nil
}

func (b *gpuSimulatorBackend) stepFrame(ctx FrameContext, paused bool) error {
	params := b.buildParams(ctx)
	b.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: b.provider, Binding: bindingParams, Data: params.Marshal()},
	})

	if err := b.r.BeginComputeFrame(); err != nil {
		return err
	}
	groups := [3]uint32{DispatchGroupCount(uint32(b.state.strandCount)), 1, 1}
	if groups[0] > 0 {
		if paused {
			b.r.DispatchCompute(pipelineKeyPrefix+b.kernels.Skip, b.provider, groups)
		} else {
			b.r.DispatchCompute(pipelineKeyPrefix+b.kernels.IntegrateGlobalShape, b.provider, groups)
			b.r.DispatchCompute(pipelineKeyPrefix+b.kernels.LocalShape, b.provider, groups)
			if b.cfg.EnableLengthWind {
				b.r.DispatchCompute(pipelineKeyPrefix+b.kernels.LengthWind, b.provider, groups)
			}
			if b.cfg.EnableCollision {
				b.r.DispatchCompute(pipelineKeyPrefix+b.kernels.CollisionTangents, b.provider, groups)
			}
		}
	}
	b.r.EndComputeFrame()

	if b.cfg.DebugReadback && b.state.vertexCount > 0 {
		if err := b.readback(); err != nil {
			return err
		}
	}

	b.frame++
	return nil
}

// buildParams assembles the per-frame uniform from the config and frame context.
func (b *gpuSimulatorBackend) buildParams(ctx FrameContext) GPUSimParams {
	model := ctx.Model
	if model == nil {
		model = b.identity
	}
	var p GPUSimParams
	copy(p.Model[:], model)
	p.ModelRotation = normalizeRotation(ctx.Rotation)
	p.Gravity = [4]float32{b.cfg.Gravity[0], b.cfg.Gravity[1], b.cfg.Gravity[2], 0}
	p.Wind = [4]float32{b.cfg.WindDirection[0], b.cfg.WindDirection[1], b.cfg.WindDirection[2], b.cfg.WindMagnitude}
	p.DeltaTime = ctx.DeltaTime
	p.Damping = b.cfg.Damping
	p.Stiffness = b.cfg.Stiffness
	p.StiffnessRange = b.cfg.StiffnessRange
	p.StrandCount = uint32(b.state.strandCount)
	p.VerticesPerStrand = uint32(b.state.verticesPerStrand)
	p.Frame = b.frame
	return p
}

// readback blocks on the GPU and copies the diagnostic vectors, positions, and
// tangents back to the host. Positions and tangents land in the geometry
// provider for downstream consumers.
func (b *gpuSimulatorBackend) readback() error {
	size := uint64(b.state.vertexCount) * 16

	debugData, err := b.r.ReadBuffer(b.provider.Buffer(bindingDebugVectors), size)
	if err != nil {
		return err
	}
	if b.debug == nil {
		b.debug = make([][3]float32, b.state.vertexCount)
	}
	for i := range b.debug {
		b.debug[i] = [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(debugData[i*16:])),
			math.Float32frombits(binary.LittleEndian.Uint32(debugData[i*16+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(debugData[i*16+8:])),
		}
	}

	posData, err := b.r.ReadBuffer(b.provider.Buffer(bindingPositions), size)
	if err != nil {
		return err
	}
	unpackVec4(posData, b.geom.Current)

	tanData, err := b.r.ReadBuffer(b.provider.Buffer(bindingTangents), size)
	if err != nil {
		return err
	}
	unpackVec4(tanData, b.geom.Tangents)
	return nil
}

func unpackVec4(data []byte, out [][4]float32) {
	for i := range out {
		for c := range 4 {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*16+c*4:]))
		}
	}
}

func (b *gpuSimulatorBackend) debugVectors() [][3]float32 {
	return b.debug
}

func (b *gpuSimulatorBackend) release() {
	if b.provider != nil {
		b.provider.Release()
		b.provider = nil
	}
	if b.ownsRenderer && b.r != nil {
		b.r.Release()
	}
	b.r = nil
	b.geom = nil
	b.state = nil
}
