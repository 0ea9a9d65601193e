package material

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// ErrNoProgram is returned when a material has neither a compute shader nor a vertex and fragment pair.
var ErrNoProgram = errors.New("material: no program assigned")

// material is the implementation of the Material interface.
type material struct {
	name string

	computeShader  shader.Shader
	vertexShader   shader.Shader
	fragmentShader shader.Shader

	keywords   map[string]bool
	properties *PropertyBlock

	// providers hold the GPU resources the renderer created for this material, keyed by
	// pipeline key, since each keyword variant has its own bind group layout.
	providers map[string]bind_group_provider.BindGroupProvider
}

// Material pairs a program with the keyword state and property values used to run it.
//
// A material is either a compute material (one compute shader) or a raster material (a vertex
// and fragment shader). Keywords select the program variant; properties are bound by name to
// the variables the variant declares. GPU resources for each variant are created lazily by the
// renderer and stored back on the material through SetBindGroupProvider.
type Material interface {
	// Name retrieves the material identifier, used in GPU debug labels.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// IsCompute reports whether the material runs a compute shader.
	//
	// Returns:
	//   - bool: true for compute materials, false for raster materials
	IsCompute() bool

	// Shader retrieves the shader assigned to a stage.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if the stage is unassigned
	Shader(shaderType shader.ShaderType) shader.Shader

	// EnableKeyword turns a keyword on.
	//
	// Parameters:
	//   - kw: the keyword name
	EnableKeyword(kw string)

	// DisableKeyword turns a keyword off.
	//
	// Parameters:
	//   - kw: the keyword name
	DisableKeyword(kw string)

	// SetKeyword enables or disables a keyword.
	//
	// Parameters:
	//   - kw: the keyword name
	//   - enabled: the desired state
	SetKeyword(kw string, enabled bool)

	// IsKeywordEnabled reports whether a keyword is on for this material.
	//
	// Parameters:
	//   - kw: the keyword name
	//
	// Returns:
	//   - bool: true if the keyword is enabled
	IsKeywordEnabled(kw string) bool

	// EnabledKeywords returns the enabled keywords in sorted order.
	//
	// Returns:
	//   - []string: the enabled keywords
	EnabledKeywords() []string

	// ResolveVariants selects the program variant of every stage from the material keywords
	// combined with the given global keywords.
	//
	// Parameters:
	//   - global: keywords enabled for every material, may be nil
	//
	// Returns:
	//   - []shader.Variant: the compute variant, or the vertex and fragment variants in that order
	//   - error: ErrNoProgram, or an error from keyword resolution
	ResolveVariants(global []string) ([]shader.Variant, error)

	// Properties returns the material's property block.
	//
	// Returns:
	//   - *PropertyBlock: the block holding the material's bound values
	Properties() *PropertyBlock

	// SetTexture binds a texture to the named program variable.
	SetTexture(name string, tex texture.Texture)

	// SetFloatArray binds a float array to the named program variable.
	SetFloatArray(name string, values []float32)

	// SetVector binds a vec4 to the named program variable.
	SetVector(name string, v [4]float32)

	// SetInt binds an integer to the named program variable.
	SetInt(name string, v int32)

	// BindGroupProvider retrieves the GPU resources created for a pipeline key.
	//
	// Parameters:
	//   - pipelineKey: the key of the variant pipeline
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil if not yet created
	BindGroupProvider(pipelineKey string) bind_group_provider.BindGroupProvider

	// SetBindGroupProvider stores the GPU resources created for a pipeline key.
	//
	// Parameters:
	//   - pipelineKey: the key of the variant pipeline
	//   - provider: the provider holding the GPU resources
	SetBindGroupProvider(pipelineKey string, provider bind_group_provider.BindGroupProvider)

	// Release releases every bind group provider held by the material. Bound textures are not
	// owned by the material and are left untouched.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		keywords:   make(map[string]bool),
		properties: NewPropertyBlock(),
		providers:  make(map[string]bind_group_provider.BindGroupProvider),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) IsCompute() bool {
	return m.computeShader != nil
}

func (m *material) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeCompute:
		return m.computeShader
	case shader.ShaderTypeVertex:
		return m.vertexShader
	case shader.ShaderTypeFragment:
		return m.fragmentShader
	default:
		return nil
	}
}

func (m *material) EnableKeyword(kw string) {
	m.keywords[kw] = true
}

func (m *material) DisableKeyword(kw string) {
	delete(m.keywords, kw)
}

func (m *material) SetKeyword(kw string, enabled bool) {
	if enabled {
		m.EnableKeyword(kw)
		return
	}
	m.DisableKeyword(kw)
}

func (m *material) IsKeywordEnabled(kw string) bool {
	return m.keywords[kw]
}

func (m *material) EnabledKeywords() []string {
	out := make([]string, 0, len(m.keywords))
	for kw := range m.keywords {
		out = append(out, kw)
	}
	slices.Sort(out)
	return out
}

func (m *material) ResolveVariants(global []string) ([]shader.Variant, error) {
	enabled := append(m.EnabledKeywords(), global...)

	var stages []shader.Shader
	switch {
	case m.computeShader != nil:
		stages = []shader.Shader{m.computeShader}
	case m.vertexShader != nil && m.fragmentShader != nil:
		stages = []shader.Shader{m.vertexShader, m.fragmentShader}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoProgram, m.name)
	}

	variants := make([]shader.Variant, 0, len(stages))
	for _, s := range stages {
		v, err := s.Variant(enabled)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", m.name, err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func (m *material) Properties() *PropertyBlock {
	return m.properties
}

func (m *material) SetTexture(name string, tex texture.Texture) {
	m.properties.SetTexture(name, tex)
}

func (m *material) SetFloatArray(name string, values []float32) {
	m.properties.SetFloatArray(name, values)
}

func (m *material) SetVector(name string, v [4]float32) {
	m.properties.SetVector(name, v)
}

func (m *material) SetInt(name string, v int32) {
	m.properties.SetInt(name, v)
}

func (m *material) BindGroupProvider(pipelineKey string) bind_group_provider.BindGroupProvider {
	return m.providers[pipelineKey]
}

func (m *material) SetBindGroupProvider(pipelineKey string, provider bind_group_provider.BindGroupProvider) {
	if old, ok := m.providers[pipelineKey]; ok && old != provider {
		old.Release()
	}
	m.providers[pipelineKey] = provider
}

func (m *material) Release() {
	for key, p := range m.providers {
		p.Release()
		delete(m.providers, key)
	}
}
