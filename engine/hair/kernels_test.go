package hair

import (
	"testing"

	"github.com/Carmen-Shannon/strands-go/engine/renderer/shader"
)

func TestDispatchGroupCount(t *testing.T) {
	tests := []struct {
		strands uint32
		want    uint32
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{64, 32},
		{65, 33},
		{100000, 50000},
	}
	for _, tt := range tests {
		if got := DispatchGroupCount(tt.strands); got != tt.want {
			t.Errorf("DispatchGroupCount(%d): got %d, want %d", tt.strands, got, tt.want)
		}
	}
}

func TestDispatchGroupCountCoversAllStrands(t *testing.T) {
	for strands := uint32(0); strands < 100; strands++ {
		groups := DispatchGroupCount(strands)
		if groups*StrandsPerGroup < strands {
			t.Errorf("%d strands: %d groups cover only %d threads", strands, groups, groups*StrandsPerGroup)
		}
		if groups > 0 && (groups-1)*StrandsPerGroup >= strands {
			t.Errorf("%d strands: %d groups is one more than needed", strands, groups)
		}
	}
}

// Resolution only needs the parsed source, not a GPU device, so the embedded
// shader module can be validated in a plain unit test.
func TestResolveKernelsEmbeddedSource(t *testing.T) {
	s := shader.NewShader("hair_sim_test", shader.ShaderTypeCompute, hairSimSource)
	kernels, err := ResolveKernels(s)
	if err != nil {
		t.Fatalf("ResolveKernels: %v", err)
	}

	tests := []struct {
		got  string
		want string
	}{
		{kernels.IntegrateGlobalShape, KernelIntegrateGlobalShape},
		{kernels.LocalShape, KernelLocalShape},
		{kernels.LengthWind, KernelLengthWind},
		{kernels.CollisionTangents, KernelCollisionTangents},
		{kernels.Skip, KernelSkip},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("kernel entry: got %q, want %q", tt.got, tt.want)
		}
		if size := s.WorkgroupSize(tt.want); size[0] != StrandsPerGroup {
			t.Errorf("%s workgroup size: got %d, want %d", tt.want, size[0], StrandsPerGroup)
		}
	}
}

func TestResolveKernelsMissingEntry(t *testing.T) {
	s := shader.NewShader("partial", shader.ShaderTypeCompute, `
@compute @workgroup_size(2)
fn cs_integrate_global_shape() {}
`)
	if _, err := ResolveKernels(s); err == nil {
		t.Fatal("expected error for missing entry points")
	}
}

func TestEmbeddedShaderBindGroupLayout(t *testing.T) {
	s := shader.NewShader("hair_sim_layout", shader.ShaderTypeCompute, hairSimSource)
	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 12 {
		t.Fatalf("binding count: got %d, want 12", len(desc.Entries))
	}
	// The params uniform drives the buffer size InitBindGroup allocates.
	if got := desc.Entries[bindingParams].Buffer.MinBindingSize; got != 144 {
		t.Errorf("params min binding size: got %d, want 144", got)
	}
	if got := desc.Entries[bindingCollider].Buffer.MinBindingSize; got != 32 {
		t.Errorf("collider min binding size: got %d, want 32", got)
	}
}
