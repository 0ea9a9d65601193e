package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const rasterSource = `//@oxy:multi_compile PREVIEW _
struct VertexInput {
    @location(0) position: vec2<f32>,
};

@group(0) @binding(0) var<uniform> _DestRect: vec4<f32>;
@group(0) @binding(1) var _Source: texture_2d<f32>;
//@oxy:if PREVIEW
@group(1) @binding(1) var _Preview: texture_storage_2d<rgba8unorm, write>;
//@oxy:endif

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position * _DestRect.xy, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<u32> {
    return vec4<u32>(0u);
}
`

func rasterVariants(t *testing.T, keywords ...string) (shader.Variant, shader.Variant) {
	t.Helper()
	vs, err := shader.NewShaderFromSource("raster", shader.ShaderTypeVertex, rasterSource)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShaderFromSource("raster", shader.ShaderTypeFragment, rasterSource)
	if err != nil {
		t.Fatal(err)
	}
	vv, err := vs.Variant(keywords)
	if err != nil {
		t.Fatal(err)
	}
	fv, err := fs.Variant(keywords)
	if err != nil {
		t.Fatal(err)
	}
	return vv, fv
}

func TestNewPipelineKeyAndVariants(t *testing.T) {
	vv, fv := rasterVariants(t, "PREVIEW")
	p := NewPipeline(PipelineTypeRender, WithVariants(fv, vv), WithColorFormat(wgpu.TextureFormatRGBA32Uint))

	if p.PipelineKey() != "raster[PREVIEW]+raster[PREVIEW]" {
		t.Errorf("PipelineKey = %q", p.PipelineKey())
	}
	if p.Variant(shader.ShaderTypeVertex) != vv || p.Variant(shader.ShaderTypeFragment) != fv {
		t.Error("variants not assigned by stage")
	}
	if p.Variant(shader.ShaderTypeCompute) != nil {
		t.Error("render pipeline has a compute variant")
	}
	if got := p.Variants(); len(got) != 2 || got[0] != vv {
		t.Errorf("Variants = %v, want vertex first", got)
	}
	if p.ColorFormat() != wgpu.TextureFormatRGBA32Uint {
		t.Errorf("ColorFormat = %v", p.ColorFormat())
	}
	if p.BlendState() != nil {
		t.Error("blending should be off by default")
	}
	if p.BindGroupLayout(0) != nil {
		t.Error("unregistered pipeline should have no layouts")
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vv, fv := rasterVariants(t, "PREVIEW")
	merged := MergeBindGroupLayouts(vv, fv)

	g0 := merged[0].Entries
	if len(g0) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(g0))
	}
	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for _, e := range g0 {
		if e.Visibility != both {
			t.Errorf("binding %d visibility = %v, want vertex|fragment", e.Binding, e.Visibility)
		}
	}
	g1 := merged[1].Entries
	if len(g1) != 1 || g1[0].Binding != 1 {
		t.Fatalf("group 1 entries = %+v", g1)
	}
	if g1[0].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("storage target visibility = %v, want fragment only", g1[0].Visibility)
	}

	vvNoPreview, fvNoPreview := rasterVariants(t)
	if _, ok := MergeBindGroupLayouts(vvNoPreview, fvNoPreview)[1]; ok {
		t.Error("variant without PREVIEW should not declare group 1")
	}
}
