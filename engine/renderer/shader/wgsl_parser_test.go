package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const multiEntrySource = `
// Simulation parameters.
struct Params {
    transform: mat4x4<f32>,
    scale: vec4<f32>,
    count: u32,
    _pad: u32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read_write> data: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> weights: array<f32>;

@compute @workgroup_size(2)
fn cs_first(@builtin(global_invocation_id) gid: vec3<u32>) {
    data[gid.x] = data[gid.x] * params.scale;
}

@compute @workgroup_size(4, 2)
fn cs_second(@builtin(global_invocation_id) gid: vec3<u32>) {
    data[gid.x] = data[gid.x] + vec4<f32>(weights[gid.x]);
}

@compute
fn cs_default_size() {
}
`

func TestParseComputeEntryPoints(t *testing.T) {
	names, sizes := parseComputeEntryPoints(multiEntrySource)

	want := []string{"cs_first", "cs_second", "cs_default_size"}
	if len(names) != len(want) {
		t.Fatalf("entry point count: got %d, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("entry point %d: got %q, want %q", i, names[i], name)
		}
	}

	tests := []struct {
		entry string
		size  [3]uint32
	}{
		{"cs_first", [3]uint32{2, 1, 1}},
		{"cs_second", [3]uint32{4, 2, 1}},
		{"cs_default_size", [3]uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := sizes[tt.entry]; got != tt.size {
			t.Errorf("workgroup size of %s: got %v, want %v", tt.entry, got, tt.size)
		}
	}
}

func TestShaderEntryPointAccessors(t *testing.T) {
	s := NewShader("multi", ShaderTypeCompute, multiEntrySource)

	if !s.HasEntryPoint("cs_first") || !s.HasEntryPoint("cs_second") {
		t.Error("declared entry points not found")
	}
	if s.HasEntryPoint("cs_missing") {
		t.Error("undeclared entry point reported as present")
	}
	if got := s.WorkgroupSize("cs_missing"); got != [3]uint32{} {
		t.Errorf("workgroup size of unknown entry: got %v, want zero", got)
	}
}

func TestParseBindGroupLayouts(t *testing.T) {
	layouts, varNames := parseBindGroupLayouts(multiEntrySource, wgpu.ShaderStageCompute)

	desc, ok := layouts[0]
	if !ok {
		t.Fatal("group 0 layout missing")
	}
	if len(desc.Entries) != 3 {
		t.Fatalf("entry count: got %d, want 3", len(desc.Entries))
	}

	tests := []struct {
		binding        uint32
		bufferType     wgpu.BufferBindingType
		minBindingSize uint64
		varName        string
	}{
		// mat4x4 (64) + vec4 (16) + u32 + u32 rounds to 96 at align 16.
		{0, wgpu.BufferBindingTypeUniform, 96, "params"},
		// Runtime arrays report the element stride.
		{1, wgpu.BufferBindingTypeStorage, 16, "data"},
		{2, wgpu.BufferBindingTypeReadOnlyStorage, 4, "weights"},
	}
	for i, tt := range tests {
		entry := desc.Entries[i]
		if entry.Binding != tt.binding {
			t.Errorf("entry %d binding: got %d, want %d", i, entry.Binding, tt.binding)
		}
		if entry.Buffer.Type != tt.bufferType {
			t.Errorf("binding %d buffer type: got %v, want %v", tt.binding, entry.Buffer.Type, tt.bufferType)
		}
		if entry.Buffer.MinBindingSize != tt.minBindingSize {
			t.Errorf("binding %d min size: got %d, want %d", tt.binding, entry.Buffer.MinBindingSize, tt.minBindingSize)
		}
		if entry.Visibility != wgpu.ShaderStageCompute {
			t.Errorf("binding %d visibility: got %v, want compute", tt.binding, entry.Visibility)
		}
		if got := varNames[0][int(tt.binding)]; got != tt.varName {
			t.Errorf("binding %d var name: got %q, want %q", tt.binding, got, tt.varName)
		}
	}
}

func TestParseBindGroupLayoutsIgnoresComments(t *testing.T) {
	source := `
// @group(0) @binding(5) var<uniform> ghost: f32;
/* @compute fn cs_ghost() {} */
@group(0) @binding(0) var<storage, read> live: array<u32>;
@compute @workgroup_size(1) fn cs_live() {}
`
	layouts, _ := parseBindGroupLayouts(source, wgpu.ShaderStageCompute)
	if len(layouts[0].Entries) != 1 {
		t.Fatalf("entry count: got %d, want 1", len(layouts[0].Entries))
	}
	names, _ := parseComputeEntryPoints(source)
	if len(names) != 1 || names[0] != "cs_live" {
		t.Errorf("entry points: got %v, want [cs_live]", names)
	}
}

func TestComputeStructSizesNested(t *testing.T) {
	source := `
struct Inner {
    a: vec3<f32>,
    b: f32,
};
struct Outer {
    inner: Inner,
    c: vec2<f32>,
};
`
	structs := parseStructBlocks(stripComments(source))
	sizes := computeStructSizes(structs)

	if got := sizes["Inner"].size; got != 16 {
		t.Errorf("Inner size: got %d, want 16", got)
	}
	if got := sizes["Outer"].size; got != 32 {
		t.Errorf("Outer size: got %d, want 32", got)
	}
}

func TestNewShaderPanicsOnEmptySource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty source")
		}
	}()
	NewShader("empty", ShaderTypeCompute, "")
}
