package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets a buffer for a slot. The provider takes ownership and releases it.
//
// Parameters:
//   - b: the slot for this buffer
//   - buf: the buffer to associate with the slot
//   - size: the allocated size of buf in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified slot
func WithBuffer(b Binding, buf *wgpu.Buffer, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[b] = buf
		p.bufferSizes[b] = size
	}
}

// WithSampler sets a sampler for a slot. The provider takes ownership and releases it.
//
// Parameters:
//   - b: the slot for this sampler
//   - s: the sampler to associate with the slot
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the specified slot
func WithSampler(b Binding, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[b] = s
	}
}
