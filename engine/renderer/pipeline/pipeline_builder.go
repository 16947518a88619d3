package pipeline

import (
	"github.com/Carmen-Shannon/strands-go/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithComputeShader sets the compute shader for this pipeline.
//
// Parameters:
//   - s: the compute shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the compute shader for this pipeline
func WithComputeShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeShader = s
	}
}

// WithEntryPoint sets the compute entry point for this pipeline. Use this when the shader
// module declares multiple @compute entry points and the pipeline should target one of them.
//
// Parameters:
//   - entryPoint: the entry point function name within the compute shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry point for this pipeline
func WithEntryPoint(entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.entryPoint = entryPoint
	}
}
