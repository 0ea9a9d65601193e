package shader

import (
	"errors"
	"slices"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const kernelSource = `//@oxy:multi_compile SIZE_4 SIZE_6
//@oxy:multi_compile PREVIEW _

@group(0) @binding(0) var _Source: texture_2d<f32>;
@group(0) @binding(1) var _Result: texture_storage_2d<rgba32uint, write>;
@group(0) @binding(2) var<uniform> _DestRect: vec4<f32>;
//@oxy:if PREVIEW
@group(0) @binding(3) var _Preview: texture_storage_2d<rgba8unorm, write>;
//@oxy:endif
//@oxy:if SIZE_6
@group(0) @binding(4) var<storage, read> table: array<f32, 125>;
//@oxy:endif

@compute @workgroup_size(8, 4)
fn Main(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

func newKernel(t *testing.T) Shader {
	t.Helper()
	s, err := NewShaderFromSource("kernel", ShaderTypeCompute, kernelSource)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}
	return s
}

func TestResolveKeywords(t *testing.T) {
	tests := []struct {
		name    string
		enabled []string
		want    []string
		wantErr error
	}{
		{"defaults to first entry without placeholder", nil, []string{"SIZE_4"}, nil},
		{"explicit size", []string{"SIZE_6"}, []string{"SIZE_6"}, nil},
		{"both groups", []string{"PREVIEW", "SIZE_6"}, []string{"PREVIEW", "SIZE_6"}, nil},
		{"unknown keywords ignored", []string{"OTHER", "PREVIEW"}, []string{"PREVIEW", "SIZE_4"}, nil},
		{"duplicates collapse", []string{"SIZE_6", "SIZE_6"}, []string{"SIZE_6"}, nil},
		{"placeholder is not a keyword", []string{"_"}, []string{"SIZE_4"}, nil},
		{"two sizes are ambiguous", []string{"SIZE_4", "SIZE_6"}, nil, ErrAmbiguousKeywords},
	}
	s := newKernel(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveKeywords(tt.enabled)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariantReflection(t *testing.T) {
	s := newKernel(t)

	base, err := s.Variant(nil)
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if base.Key() != "kernel[SIZE_4]" {
		t.Errorf("Key = %q", base.Key())
	}
	if base.EntryPoint() != "Main" {
		t.Errorf("EntryPoint = %q, want Main", base.EntryPoint())
	}
	if base.WorkgroupSize() != [3]uint32{8, 4, 1} {
		t.Errorf("WorkgroupSize = %v", base.WorkgroupSize())
	}
	if got := len(base.BindGroupLayoutDescriptors()[0].Entries); got != 3 {
		t.Errorf("base variant has %d bindings, want 3", got)
	}
	if _, ok := base.BindGroupFromVarName(0, "_Preview"); ok {
		t.Error("base variant should not declare _Preview")
	}

	full, err := s.Variant([]string{"SIZE_6", "PREVIEW"})
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	entries := full.BindGroupLayoutDescriptors()[0].Entries
	if len(entries) != 5 {
		t.Fatalf("full variant has %d bindings, want 5", len(entries))
	}
	for i, e := range entries {
		if e.Binding != uint32(i) {
			t.Errorf("entry %d has binding %d, entries must be sorted", i, e.Binding)
		}
		if e.Visibility != wgpu.ShaderStageCompute {
			t.Errorf("binding %d visibility = %v", e.Binding, e.Visibility)
		}
	}
	if entries[1].StorageTexture.Format != wgpu.TextureFormatRGBA32Uint {
		t.Errorf("_Result format = %v", entries[1].StorageTexture.Format)
	}
	if entries[2].Buffer.Type != wgpu.BufferBindingTypeUniform || entries[2].Buffer.MinBindingSize != 16 {
		t.Errorf("_DestRect buffer = %+v", entries[2].Buffer)
	}
	if entries[4].Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage || entries[4].Buffer.MinBindingSize != 500 {
		t.Errorf("table buffer = %+v", entries[4].Buffer)
	}
	if b, ok := full.BindGroupFromVarName(0, "_Preview"); !ok || b != 3 {
		t.Errorf("BindGroupFromVarName(_Preview) = %d, %v", b, ok)
	}
	if full.BindGroupVarName(0, 4) != "table" {
		t.Errorf("BindGroupVarName(0, 4) = %q", full.BindGroupVarName(0, 4))
	}
}

func TestVariantCached(t *testing.T) {
	s := newKernel(t)
	a, err := s.Variant([]string{"PREVIEW"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Variant([]string{"PREVIEW", "SIZE_4", "UNRELATED"})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("equivalent keyword sets should return the cached variant")
	}
}

func TestVariantsEnumeratesCombinations(t *testing.T) {
	variants, err := newKernel(t).Variants()
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	var keys []string
	for _, v := range variants {
		keys = append(keys, v.Key())
	}
	want := []string{
		"kernel[PREVIEW,SIZE_4]",
		"kernel[SIZE_4]",
		"kernel[PREVIEW,SIZE_6]",
		"kernel[SIZE_6]",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestRenderVariantReflection(t *testing.T) {
	const src = `struct VertexInput {
    @location(0) position: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var<uniform> _DestRect: vec4<f32>;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.position * 0.5 + vec2<f32>(0.5);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<u32> {
    return vec4<u32>(0u);
}
`
	vs, err := NewShaderFromSource("raster", ShaderTypeVertex, src)
	if err != nil {
		t.Fatal(err)
	}
	vv, err := vs.Variant(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vv.EntryPoint() != "vs_main" {
		t.Errorf("vertex EntryPoint = %q", vv.EntryPoint())
	}
	layouts := vv.VertexLayouts()
	if len(layouts) != 1 || layouts[0].ArrayStride != 8 || len(layouts[0].Attributes) != 1 {
		t.Fatalf("VertexLayouts = %+v", layouts)
	}
	if layouts[0].Attributes[0].Format != wgpu.VertexFormatFloat32x2 {
		t.Errorf("position format = %v", layouts[0].Attributes[0].Format)
	}

	fs, err := NewShaderFromSource("raster", ShaderTypeFragment, src)
	if err != nil {
		t.Fatal(err)
	}
	fv, err := fs.Variant(nil)
	if err != nil {
		t.Fatal(err)
	}
	if fv.EntryPoint() != "fs_main" {
		t.Errorf("fragment EntryPoint = %q", fv.EntryPoint())
	}
	if fv.WorkgroupSize() != [3]uint32{} {
		t.Errorf("fragment WorkgroupSize = %v", fv.WorkgroupSize())
	}
	if e := fv.BindGroupLayoutDescriptors()[0].Entries[0]; e.Visibility != wgpu.ShaderStageFragment {
		t.Errorf("fragment binding visibility = %v", e.Visibility)
	}
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c\n"
	got := stripComments(src)
	if got != "a \nb  c\n" {
		t.Errorf("stripComments = %q", got)
	}
}
