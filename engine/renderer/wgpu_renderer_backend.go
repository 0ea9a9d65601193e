package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	capabilities  Capabilities
	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)

	// encoder and pass hold the open command encoder and render pass of ExecuteCommandBuffer
	// or of a presented frame.
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder

	// frameSurface and frameView hold the acquired swapchain texture until Present.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// Capabilities returns what the device supports, evaluated once at device creation.
	Capabilities() Capabilities

	// HasSurface reports whether the backend was created with a window surface.
	HasSurface() bool

	// SurfaceFormat returns the format of the configured surface.
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the shader modules, bind group layouts, pipeline layout and
	// render pipeline of a pipeline and stores them on it.
	//
	// Parameters:
	//   - p: the pipeline holding the vertex and fragment variants
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the shader module, bind group layouts, pipeline layout and
	// compute pipeline of a pipeline and stores them on it.
	//
	// Parameters:
	//   - p: the pipeline holding the compute variant
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// CreateTexture allocates a texture and its default view.
	//
	// Parameters:
	//   - desc: a validated descriptor
	//
	// Returns:
	//   - texture.Texture: the texture
	//   - error: an error if the format is unsupported or creation fails
	CreateTexture(desc texture.Descriptor) (texture.Texture, error)

	// WriteTexture uploads tightly packed block rows into a texture.
	//
	// Parameters:
	//   - t: the destination texture
	//   - data: the block rows
	//
	// Returns:
	//   - error: an error if data is too short or t is not a WebGPU texture
	WriteTexture(t texture.Texture, data []byte) error

	// InitMeshBuffers creates the vertex buffer of a mesh and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the vertex buffer on
	//   - vertexData: the raw vertex bytes
	//   - vertexCount: the number of vertices in vertexData
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// BindMaterial resolves every binding of the pipeline through lookup and refreshes the
	// buffers and bind groups stored on the provider.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - provider: the material's provider for p
	//   - lookup: resolves the property bound to a program variable
	//
	// Returns:
	//   - error: ErrUnboundProperty, or an error if a GPU object could not be created
	BindMaterial(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, lookup propertyLookup) error

	// DispatchCompute encodes one compute pass and submits it.
	//
	// Parameters:
	//   - p: the registered compute pipeline
	//   - provider: the provider holding the bind groups
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: an error if encoding fails
	DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// BeginCommands creates the command encoder for one command buffer.
	//
	// Parameters:
	//   - label: the debug label of the encoder
	//
	// Returns:
	//   - error: an error if the encoder could not be created or one is already open
	BeginCommands(label string) error

	// BeginRenderPass begins a render pass on a render texture. The target is cleared.
	//
	// Parameters:
	//   - target: the colour attachment
	//
	// Returns:
	//   - error: an error if no encoder is open or the target is unusable
	BeginRenderPass(target texture.Texture) error

	// SetViewport restricts rasterization of the open pass to a rectangle.
	//
	// Parameters:
	//   - vp: the viewport in pixels
	SetViewport(vp command_buffer.Viewport)

	// DrawCall draws a mesh with a pipeline in the open pass. A nil mesh draws three vertices
	// generated by the vertex program.
	//
	// Parameters:
	//   - p: the registered render pipeline
	//   - provider: the provider holding the bind groups
	//   - mesh: the provider holding the vertex buffer, or nil
	DrawCall(p pipeline.Pipeline, provider, mesh bind_group_provider.BindGroupProvider)

	// EndRenderPass ends the open pass.
	EndRenderPass()

	// EndCommands finishes the command encoder and submits it, or discards it.
	//
	// Parameters:
	//   - submit: false to discard the recorded commands
	//
	// Returns:
	//   - error: an error if finishing the encoder fails
	EndCommands(submit bool) error

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// a render pass on it. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the frame pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// CopyTexture copies src into dst following planCopy.
	CopyTexture(src, dst texture.Texture) error

	// ReadTexture copies a texture into a mappable buffer and returns its unpadded rows.
	ReadTexture(t texture.Texture) ([]byte, error)

	// WaitIdle blocks until the queue has drained.
	WaitIdle()

	// Release releases the device, adapter, surface and instance.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	// Request exactly what the adapter supports, so downlevel adapters without compute still
	// get a device and fall back to the raster path.
	supported := a.GetLimits()
	w.capabilities = Capabilities{
		ComputeShaders:      supported.Limits.MaxComputeWorkgroupsPerDimension > 0 && supported.Limits.MaxComputeInvocationsPerWorkgroup > 0,
		ASTCTextures:        a.HasFeature(wgpu.FeatureNameTextureCompressionASTC),
		MaxTextureDimension: int(supported.Limits.MaxTextureDimension2D),
	}
	var features []wgpu.FeatureName
	if w.capabilities.ASTCTextures {
		features = append(features, wgpu.FeatureNameTextureCompressionASTC)
	}

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Main Device",
		RequiredFeatures: features,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: supported.Limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w
}

func (b *wgpuRendererBackendImpl) Capabilities() Capabilities {
	return b.capabilities
}

func (b *wgpuRendererBackendImpl) HasSurface() bool {
	return b.surface != nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return
	}
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// createLayouts creates one bind group layout per group index up to the highest declared group.
// Groups the program does not declare get an empty layout.
func (b *wgpuRendererBackendImpl) createLayouts(p pipeline.Pipeline) ([]*wgpu.BindGroupLayout, *wgpu.PipelineLayout, error) {
	descriptors := p.LayoutDescriptors()
	layouts := make([]*wgpu.BindGroupLayout, groupCount(p))
	release := func() {
		for _, l := range layouts {
			if l != nil {
				l.Release()
			}
		}
	}
	for g := range layouts {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		layouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		release()
		return nil, nil, err
	}
	return layouts, pipelineLayout, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexVariant := p.Variant(shader.ShaderTypeVertex)
	fragmentVariant := p.Variant(shader.ShaderTypeFragment)
	if vertexVariant == nil || fragmentVariant == nil {
		return errors.New("both vertex and fragment variants must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(vertexVariant.Module())
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentVariant.Module())
	if err != nil {
		return err
	}
	defer fs.Release()

	layouts, pipelineLayout, err := b.createLayouts(p)
	if err != nil {
		return err
	}
	p.SetLayouts(layouts, pipelineLayout)

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexVariant.EntryPoint(),
			Buffers:    vertexVariant.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentVariant.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.ColorFormat(),
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeVariant := p.Variant(shader.ShaderTypeCompute)
	if computeVariant == nil {
		return errors.New("compute variant must be set to create a compute pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateShaderModule(computeVariant.Module())
	if err != nil {
		return err
	}
	defer s.Release()

	layouts, pipelineLayout, err := b.createLayouts(p)
	if err != nil {
		return err
	}
	p.SetLayouts(layouts, pipelineLayout)

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeVariant.EntryPoint(),
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) == 0 {
		return nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            provider.Label() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, vertexData)
	provider.SetVertexBuffer(buf, vertexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	computePipeline, ok := p.Pipeline().(*wgpu.ComputePipeline)
	if !ok || computePipeline == nil {
		return fmt.Errorf("%w: %s is not a registered compute pipeline", ErrPipelineNotFound, p.PipelineKey())
	}

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: p.PipelineKey()})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	for g := 0; g < groupCount(p); g++ {
		pass.SetBindGroup(uint32(g), provider.BindGroup(g), nil)
	}
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) BeginCommands(label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder != nil {
		return errors.New("a command encoder is already open")
	}
	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return err
	}
	b.encoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) BeginRenderPass(target texture.Texture) error {
	wt, err := asWGPUTexture(target)
	if err != nil {
		return err
	}
	if target.Kind() != texture.KindRenderTexture || target.Format().IsCompressed() {
		return fmt.Errorf("renderer: %q is not a render texture", target.Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return errors.New("no command encoder is open")
	}
	b.pass = b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: target.Label(),
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       wt.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) SetViewport(vp command_buffer.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return
	}
	b.pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, provider, mesh bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	renderPipeline, ok := p.Pipeline().(*wgpu.RenderPipeline)
	if !ok || renderPipeline == nil || b.pass == nil {
		return
	}
	b.pass.SetPipeline(renderPipeline)
	for g := 0; g < groupCount(p); g++ {
		b.pass.SetBindGroup(uint32(g), provider.BindGroup(g), nil)
	}

	if mesh == nil || mesh.VertexBuffer() == nil {
		b.pass.Draw(3, 1, 0, 0)
		return
	}
	b.pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.pass.Draw(uint32(mesh.VertexCount()), 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndRenderPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil
}

func (b *wgpuRendererBackendImpl) EndCommands(submit bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return nil
	}
	defer func() {
		b.encoder.Release()
		b.encoder = nil
	}()
	if !submit {
		return nil
	}

	commandBuffer, err := b.encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return ErrNoSurface
	}
	// A frame surface still held means the previous frame was never presented.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.encoder != nil {
		return errors.New("a command encoder is already open")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
	})
	b.encoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.EndRenderPass()
	if err := b.EndCommands(true); err != nil {
		b.mu.Lock()
		b.releaseFrameLocked()
		b.mu.Unlock()
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameLocked()
}

func (b *wgpuRendererBackendImpl) releaseFrameLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) WaitIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.device.Poll(true, nil)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameLocked()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
