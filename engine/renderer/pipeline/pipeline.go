package pipeline

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU pipeline objects and related data for both render and compute pipelines.
type pipeline struct {
	// pipelineType indicates the type of pipeline this is; compute or render
	pipelineType PipelineType
	// pipelineKey is the unique identifier for this pipeline, derived from its variant keys
	pipelineKey string

	// the following variants are used for pipeline creation and material binding, they are required to be set before initializing a pipeline.

	vertexVariant, fragmentVariant, computeVariant shader.Variant

	// renderPipeline is the render pipeline if this is a render pipeline, nil otherwise
	renderPipeline *wgpu.RenderPipeline
	// computePipeline is the compute pipeline if this is a compute pipeline, nil otherwise
	computePipeline *wgpu.ComputePipeline
	// bindGroupLayouts are indexed by group; groups the program does not declare hold an empty layout
	bindGroupLayouts []*wgpu.BindGroupLayout
	// layoutDescriptors are the merged reflected layouts the bind group layouts were created from
	layoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	pipelineLayout    *wgpu.PipelineLayout

	// The following properties configure render pipeline creation. Compute pipelines ignore them.

	colorFormat wgpu.TextureFormat
	cullMode    wgpu.CullMode
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	writeMask   wgpu.ColorWriteMask
	blendState  *wgpu.BlendState
}

// Pipeline defines the interface for a GPU pipeline, encapsulating either a render pipeline
// (vertex + fragment variants) or a compute pipeline (compute variant). One pipeline exists per
// keyword variant, since variants differ in their bind group layouts.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Variant retrieves the program variant associated with the specified stage if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the stage of the variant to retrieve (vertex, fragment, or compute)
	//
	// Returns:
	//   - shader.Variant: the variant for the stage, or nil if not set
	Variant(shaderType shader.ShaderType) shader.Variant

	// Variants returns the variants of every stage, compute first for compute pipelines and
	// vertex then fragment for render pipelines.
	//
	// Returns:
	//   - []shader.Variant: the stage variants
	Variants() []shader.Variant

	// Pipeline returns the underlying pipeline object, either *wgpu.RenderPipeline or *wgpu.ComputePipeline
	// Note: The caller is responsible for type asserting the returned value as either pipeline type.
	//
	// Returns:
	//   - any: the underlying pipeline object.
	Pipeline() any

	// LayoutDescriptors returns the bind group layouts of all stages merged per group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
	LayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayout returns the created layout of a group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil if the pipeline has not been registered
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// ColorFormat returns the colour attachment format of a render pipeline.
	//
	// Returns:
	//   - wgpu.TextureFormat: the attachment format
	ColorFormat() wgpu.TextureFormat

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline (e.g., wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline (e.g., wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil when blending is disabled
	BlendState() *wgpu.BlendState

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline sets the compute pipeline
	//
	// Parameters:
	//   - p: the WebGPU compute pipeline to set
	SetComputePipeline(p *wgpu.ComputePipeline)

	// SetLayouts stores the bind group layouts and pipeline layout created for this pipeline.
	//
	// Parameters:
	//   - groups: the bind group layouts indexed by group
	//   - layout: the pipeline layout
	SetLayouts(groups []*wgpu.BindGroupLayout, layout *wgpu.PipelineLayout)

	// Release releases the GPU pipeline and its layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface. A PipelineType must be specified and provided upon creation.
// The pipeline key is derived from the variants, so the options must supply them.
//
// Parameters:
//   - pipelineType: the type of pipeline to create (render or compute)
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineType: pipelineType,
		colorFormat:  wgpu.TextureFormatRGBA8Unorm,
		cullMode:     wgpu.CullModeNone,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.pipelineKey = Key(p.Variants()...)
	p.layoutDescriptors = MergeBindGroupLayouts(p.Variants()...)
	return p
}

// Key joins variant keys into a pipeline key.
//
// Parameters:
//   - variants: the stage variants in pipeline order
//
// Returns:
//   - string: the pipeline key
func Key(variants ...shader.Variant) string {
	keys := make([]string, 0, len(variants))
	for _, v := range variants {
		keys = append(keys, v.Key())
	}
	return strings.Join(keys, "+")
}

// MergeBindGroupLayouts merges the reflected layouts of several stages. Bindings declared by more
// than one stage keep the first declaration with the stage visibilities OR-ed together.
//
// Parameters:
//   - variants: the stage variants
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
func MergeBindGroupLayouts(variants ...shader.Variant) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, v := range variants {
		for g, desc := range v.BindGroupLayoutDescriptors() {
			existing := merged[g]
			for _, e := range desc.Entries {
				found := false
				for i := range existing.Entries {
					if existing.Entries[i].Binding == e.Binding {
						existing.Entries[i].Visibility |= e.Visibility
						found = true
						break
					}
				}
				if !found {
					existing.Entries = append(existing.Entries, e)
				}
			}
			merged[g] = existing
		}
	}
	return merged
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Variant(shaderType shader.ShaderType) shader.Variant {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexVariant
	case shader.ShaderTypeFragment:
		return p.fragmentVariant
	case shader.ShaderTypeCompute:
		return p.computeVariant
	default:
		return nil
	}
}

func (p *pipeline) Variants() []shader.Variant {
	var out []shader.Variant
	switch p.pipelineType {
	case PipelineTypeCompute:
		if p.computeVariant != nil {
			out = append(out, p.computeVariant)
		}
	case PipelineTypeRender:
		if p.vertexVariant != nil {
			out = append(out, p.vertexVariant)
		}
		if p.fragmentVariant != nil {
			out = append(out, p.fragmentVariant)
		}
	}
	return out
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) LayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.layoutDescriptors
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) SetLayouts(groups []*wgpu.BindGroupLayout, layout *wgpu.PipelineLayout) {
	p.bindGroupLayouts = groups
	p.pipelineLayout = layout
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
