package command_buffer

import "sync"

// Pool recycles command buffers so per-call recording does not allocate once warm.
type Pool struct {
	pool sync.Pool
}

// NewPool creates an empty Pool.
//
// Returns:
//   - *Pool: the pool
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &commandBuffer{}
			},
		},
	}
}

// Get returns an empty command buffer with the given name.
//
// Parameters:
//   - name: the buffer name
//
// Returns:
//   - CommandBuffer: an empty buffer
func (p *Pool) Get(name string) CommandBuffer {
	cb := p.pool.Get().(*commandBuffer)
	cb.name = name
	return cb
}

// Put clears cb and returns it to the pool. Buffers not created by this package are ignored.
//
// Parameters:
//   - cb: the buffer to recycle
func (p *Pool) Put(cb CommandBuffer) {
	impl, ok := cb.(*commandBuffer)
	if !ok || impl == nil {
		return
	}
	impl.Clear()
	p.pool.Put(impl)
}
