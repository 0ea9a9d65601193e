package shader

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is reflected for.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment stage of a render pipeline, paired with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// ErrAmbiguousKeywords is returned when more than one keyword of a multi_compile group is enabled.
var ErrAmbiguousKeywords = errors.New("shader: more than one keyword enabled in a multi_compile group")

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	groups     []KeywordGroup

	pp PreProcessor

	mu       sync.Mutex
	variants map[string]*variant
}

// Shader is a WGSL program reflected for one pipeline stage. Its @oxy:multi_compile groups make
// it a family of variants; each variant is pre-processed and reflected on first use.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the raw WGSL source before pre-processing.
	//
	// Returns:
	//   - string: the WGSL source with @oxy: directives intact
	Source() string

	// ShaderType returns the stage the shader is reflected for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// KeywordGroups returns the declared multi_compile groups in source order.
	//
	// Returns:
	//   - []KeywordGroup: the keyword groups
	KeywordGroups() []KeywordGroup

	// HasKeyword reports whether any multi_compile group declares kw.
	//
	// Parameters:
	//   - kw: the keyword name
	//
	// Returns:
	//   - bool: true if kw selects between variants of this shader
	HasKeyword(kw string) bool

	// ResolveKeywords reduces a set of enabled keywords to the one active keyword of each group.
	// Keywords not declared by the shader are ignored. A group with none of its keywords enabled
	// falls back to no keyword when it declares "_", otherwise to its first keyword.
	//
	// Parameters:
	//   - enabled: the enabled keywords, in any order
	//
	// Returns:
	//   - []string: the sorted active keywords
	//   - error: ErrAmbiguousKeywords if two keywords of one group are enabled
	ResolveKeywords(enabled []string) ([]string, error)

	// Variant returns the processed and reflected variant selected by the enabled keywords.
	// Variants are cached per active keyword set.
	//
	// Parameters:
	//   - enabled: the enabled keywords
	//
	// Returns:
	//   - Variant: the variant
	//   - error: an error if the keywords are ambiguous or pre-processing fails
	Variant(enabled []string) (Variant, error)

	// Variants returns every variant of the shader: one per combination of one entry per group.
	//
	// Returns:
	//   - []Variant: all variants in a deterministic order
	//   - error: the first pre-processing error
	Variants() ([]Variant, error)
}

var _ Shader = &shader{}

// NewShader creates a Shader from a WGSL file. Read and directive errors panic, as shaders are
// part of the program assets and cannot be recovered from at runtime.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the pipeline stage to reflect
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the new shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource creates a Shader from WGSL source held in memory, typically embedded.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage to reflect
//   - source: the WGSL source with @oxy: directives
//
// Returns:
//   - Shader: the new shader
//   - error: an error if a directive is malformed
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	pp := NewPreProcessor()
	groups, err := pp.Scan(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		groups:     groups,
		pp:         pp,
		variants:   make(map[string]*variant),
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) KeywordGroups() []KeywordGroup {
	return s.groups
}

func (s *shader) HasKeyword(kw string) bool {
	if kw == NoKeyword {
		return false
	}
	for _, g := range s.groups {
		if g.Contains(kw) {
			return true
		}
	}
	return false
}

func (s *shader) ResolveKeywords(enabled []string) ([]string, error) {
	active := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		chosen := ""
		for _, kw := range enabled {
			if kw == NoKeyword || !g.Contains(kw) || kw == chosen {
				continue
			}
			if chosen != "" {
				return nil, fmt.Errorf("%w: %s and %s in {%s}", ErrAmbiguousKeywords, chosen, kw, strings.Join(g, " "))
			}
			chosen = kw
		}
		if chosen == "" && !g.Contains(NoKeyword) {
			chosen = g[0]
		}
		if chosen != "" {
			active = append(active, chosen)
		}
	}
	slices.Sort(active)
	return slices.Compact(active), nil
}

func (s *shader) Variant(enabled []string) (Variant, error) {
	active, err := s.ResolveKeywords(enabled)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", s.key, err)
	}
	return s.variant(active)
}

func (s *shader) Variants() ([]Variant, error) {
	combos := [][]string{{}}
	for _, g := range s.groups {
		next := make([][]string, 0, len(combos)*len(g))
		for _, c := range combos {
			for _, kw := range g {
				combo := slices.Clone(c)
				if kw != NoKeyword {
					combo = append(combo, kw)
				}
				next = append(next, combo)
			}
		}
		combos = next
	}

	out := make([]Variant, 0, len(combos))
	for _, c := range combos {
		slices.Sort(c)
		v, err := s.variant(slices.Compact(c))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// variant returns the cached variant for a resolved, sorted keyword list, building it on a miss.
func (s *shader) variant(active []string) (*variant, error) {
	key := VariantKey(s.key, active)

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variants[key]; ok {
		return v, nil
	}

	enabled := make(map[string]bool, len(active))
	for _, kw := range active {
		enabled[kw] = true
	}
	processed, err := s.pp.Process(s.source, enabled)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	v := &variant{
		key:        key,
		keywords:   active,
		source:     processed,
		shaderType: s.shaderType,
		reflection: reflect(processed, s.shaderType),
	}
	s.variants[key] = v
	return v, nil
}

// VariantKey formats the cache key of a variant as key[KW1,KW2].
//
// Parameters:
//   - key: the shader key
//   - active: the sorted active keywords
//
// Returns:
//   - string: the variant key
func VariantKey(key string, active []string) string {
	return key + "[" + strings.Join(active, ",") + "]"
}

// variant is the implementation of the Variant interface.
type variant struct {
	key        string
	keywords   []string
	source     string
	shaderType ShaderType
	reflection
}

// Variant is one keyword combination of a Shader, pre-processed and reflected. Everything the
// renderer needs to build a pipeline for it is derived from the processed source.
type Variant interface {
	// Key returns the variant key in the form shader[KW1,KW2].
	Key() string

	// Keywords returns the sorted active keywords of the variant.
	Keywords() []string

	// Source returns the processed WGSL source.
	Source() string

	// ShaderType returns the stage the variant is reflected for.
	ShaderType() ShaderType

	// EntryPoint returns the entry point for the shader's stage, or "" if the source has none.
	EntryPoint() string

	// WorkgroupSize returns the workgroup size of compute variants, [0, 0, 0] for other stages.
	WorkgroupSize() [3]uint32

	// VertexLayouts returns the vertex buffer layouts of vertex variants in declaration order.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the reflected bind group layouts keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at a group and binding, or "".
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName returns the binding of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames returns every declared variable keyed by group and binding.
	BindGroupVarNames() map[int]map[int]string

	// Module returns the descriptor for creating the GPU shader module.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Variant = &variant{}

func (v *variant) Key() string {
	return v.key
}

func (v *variant) Keywords() []string {
	return v.keywords
}

func (v *variant) Source() string {
	return v.source
}

func (v *variant) ShaderType() ShaderType {
	return v.shaderType
}

func (v *variant) EntryPoint() string {
	return v.entryPoint
}

func (v *variant) WorkgroupSize() [3]uint32 {
	return v.workgroupSize
}

func (v *variant) VertexLayouts() []wgpu.VertexBufferLayout {
	return v.vertexLayouts
}

func (v *variant) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return v.bindGroupLayouts
}

func (v *variant) BindGroupVarName(group, binding int) string {
	return v.varNames[group][binding]
}

func (v *variant) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range v.varNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (v *variant) BindGroupVarNames() map[int]map[int]string {
	return v.varNames
}

func (v *variant) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: v.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: v.source,
		},
	}
}
