package bind_group_provider

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Binding addresses one @group/@binding slot of a program.
type Binding struct {
	Group   int
	Binding int
}

func (b Binding) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d)", b.Group, b.Binding)
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources owned by the provider. They are populated
	// by the Renderer, not by user-creation.

	// bindGroups holds one bind group per group index.
	bindGroups map[int]*wgpu.BindGroup
	// bindGroupKeys identify the resources each bind group was created from, so the renderer
	// rebuilds a group only when a bound texture or buffer changes.
	bindGroupKeys map[int]string
	// buffers holds the uniform and storage buffers keyed by slot.
	buffers map[Binding]*wgpu.Buffer
	// bufferSizes holds the allocated size of each buffer.
	bufferSizes map[Binding]uint64
	// samplers holds the samplers keyed by slot.
	samplers map[Binding]*wgpu.Sampler

	// vertexBuffer is the GPU vertex buffer for mesh providers, or nil.
	vertexBuffer *wgpu.Buffer
	// vertexCount is the number of vertices drawn from vertexBuffer.
	vertexCount int
}

// BindGroupProvider holds the GPU resources backing one program variant of a material, or the
// vertex buffer of a mesh. Texture views are not held here: they belong to the textures that
// are bound, and the provider only records which ones each bind group was built from.
//
// Usage pattern:
//  1. Renderer resolves a material variant and looks up its provider by pipeline key
//  2. Renderer creates or resizes buffers for buffer-backed properties and writes their bytes
//  3. Renderer rebuilds a group's bind group when BindGroupKey no longer matches the bound resources
//  4. Renderer sets BindGroup(g) on the pass for every group of the variant
type BindGroupProvider interface {
	// Release releases every buffer, sampler, bind group and vertex buffer held by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the bind group created for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup(group int) *wgpu.BindGroup

	// BindGroupKey returns the resource key the group's bind group was created from.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - string: the key, or "" if the group has no bind group
	BindGroupKey(group int) string

	// SetBindGroup stores a bind group for a group index, releasing the one it replaces.
	//
	// Parameters:
	//   - group: the bind group index
	//   - bg: the created bind group
	//   - key: the resource key the bind group was created from
	SetBindGroup(group int, bg *wgpu.BindGroup, key string)

	// Buffer returns the buffer created for a slot.
	//
	// Parameters:
	//   - b: the slot
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(b Binding) *wgpu.Buffer

	// BufferSize returns the allocated size of the buffer at a slot, 0 if there is none.
	//
	// Parameters:
	//   - b: the slot
	//
	// Returns:
	//   - uint64: the size in bytes
	BufferSize(b Binding) uint64

	// SetBuffer stores a buffer for a slot, releasing the one it replaces.
	//
	// Parameters:
	//   - b: the slot
	//   - buf: the created buffer
	//   - size: the allocated size of buf in bytes
	SetBuffer(b Binding, buf *wgpu.Buffer, size uint64)

	// Sampler returns the sampler created for a slot.
	//
	// Parameters:
	//   - b: the slot
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(b Binding) *wgpu.Sampler

	// SetSampler stores a sampler for a slot, releasing the one it replaces.
	//
	// Parameters:
	//   - b: the slot
	//   - s: the sampler
	SetSampler(b Binding, s *wgpu.Sampler)

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// VertexCount returns the number of vertices for draw calls.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// SetVertexBuffer stores the GPU vertex buffer created by InitMeshBuffers.
	//
	// Parameters:
	//   - buf: the created vertex buffer
	//   - count: the number of vertices in buf
	SetVertexBuffer(buf *wgpu.Buffer, count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for every GPU object the renderer creates for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:         label,
		bindGroups:    make(map[int]*wgpu.BindGroup),
		bindGroupKeys: make(map[int]string),
		buffers:       make(map[Binding]*wgpu.Buffer),
		bufferSizes:   make(map[Binding]uint64),
		samplers:      make(map[Binding]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup(group int) *wgpu.BindGroup {
	return p.bindGroups[group]
}

func (p *bindGroupProvider) BindGroupKey(group int) string {
	return p.bindGroupKeys[group]
}

func (p *bindGroupProvider) SetBindGroup(group int, bg *wgpu.BindGroup, key string) {
	if old := p.bindGroups[group]; old != nil && old != bg {
		old.Release()
	}
	if bg == nil {
		delete(p.bindGroups, group)
		delete(p.bindGroupKeys, group)
		return
	}
	p.bindGroups[group] = bg
	p.bindGroupKeys[group] = key
}

func (p *bindGroupProvider) Buffer(b Binding) *wgpu.Buffer {
	return p.buffers[b]
}

func (p *bindGroupProvider) BufferSize(b Binding) uint64 {
	return p.bufferSizes[b]
}

func (p *bindGroupProvider) SetBuffer(b Binding, buf *wgpu.Buffer, size uint64) {
	if old := p.buffers[b]; old != nil && old != buf {
		old.Release()
	}
	if buf == nil {
		delete(p.buffers, b)
		delete(p.bufferSizes, b)
		return
	}
	p.buffers[b] = buf
	p.bufferSizes[b] = size
}

func (p *bindGroupProvider) Sampler(b Binding) *wgpu.Sampler {
	return p.samplers[b]
}

func (p *bindGroupProvider) SetSampler(b Binding, s *wgpu.Sampler) {
	if old := p.samplers[b]; old != nil && old != s {
		old.Release()
	}
	if s == nil {
		delete(p.samplers, b)
		return
	}
	p.samplers[b] = s
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer, count int) {
	if p.vertexBuffer != nil && p.vertexBuffer != buf {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer = buf
	p.vertexCount = count
}

func (p *bindGroupProvider) Release() {
	// Bind groups reference the buffers, so they go first.
	for g, bg := range p.bindGroups {
		bg.Release()
		delete(p.bindGroups, g)
		delete(p.bindGroupKeys, g)
	}
	for b, s := range p.samplers {
		s.Release()
		delete(p.samplers, b)
	}
	for b, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, b)
		delete(p.bufferSizes, b)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
		p.vertexCount = 0
	}
}
