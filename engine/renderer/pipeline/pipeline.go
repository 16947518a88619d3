package pipeline

import (
	"github.com/Carmen-Shannon/strands-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies the kind of GPU pipeline. The simulation only builds
// compute pipelines.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline targeting a single entry point.
	PipelineTypeCompute PipelineType = iota
)

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU compute pipeline object and the shader + entry point it targets.
type pipeline struct {
	// pipelineType indicates the type of pipeline this is
	pipelineType PipelineType
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// computeShader is required to be set before initializing the pipeline. Several pipelines
	// may share one shader module, each targeting a different entry point.
	computeShader shader.Shader

	// entryPoint is the compute entry point function name within the shader module.
	// When empty the shader's first parsed entry point is used.
	entryPoint string

	// computePipeline is the created GPU pipeline, nil until registered with a renderer
	computePipeline *wgpu.ComputePipeline
}

// Pipeline defines the interface for a GPU compute pipeline, pairing a compute shader
// module with a specific entry point. The underlying wgpu object is created by the
// renderer during registration.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// EntryPoint returns the compute entry point this pipeline targets. Falls back to the
	// shader's first parsed entry point when none was set explicitly.
	//
	// Returns:
	//   - string: the entry point function name, or empty string if unresolvable
	EntryPoint() string

	// Pipeline returns the underlying *wgpu.ComputePipeline, or nil if not yet created.
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the underlying pipeline object
	Pipeline() *wgpu.ComputePipeline

	// SetComputePipeline sets the compute pipeline
	//
	// Parameters:
	//   - p: the WebGPU compute pipeline to set
	SetComputePipeline(p *wgpu.ComputePipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface. A PipelineType must be specified and provided upon creation.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) EntryPoint() string {
	if p.entryPoint != "" {
		return p.entryPoint
	}
	if p.computeShader != nil {
		if eps := p.computeShader.EntryPoints(); len(eps) > 0 {
			return eps[0]
		}
	}
	return ""
}

func (p *pipeline) Pipeline() *wgpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}
