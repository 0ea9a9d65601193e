package renderer

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-astc/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/blit.wgsl
var blitSource string

// randomWriteGroup is the bind group random-write targets of raster programs are declared in.
// Slot N of SetRandomWriteTarget binds to @group(1) @binding(N).
const randomWriteGroup = 1

var (
	// ErrPipelineNotFound is returned when a material has no program for the requested pipeline
	// type, or its variant lacks the stage entry point.
	ErrPipelineNotFound = errors.New("renderer: pipeline not found")

	// ErrTextureReleased is returned when a released texture is used.
	ErrTextureReleased = errors.New("renderer: texture already released")

	// ErrUnboundProperty is returned when a program variable has no property bound to its name.
	ErrUnboundProperty = errors.New("renderer: program variable has no bound property")

	// ErrIncompatibleCopy is returned by CopyTexture for textures whose blocks cannot be copied.
	ErrIncompatibleCopy = errors.New("renderer: incompatible texture copy")

	// ErrNoRenderTarget is returned when a command buffer draws before setting a render target.
	ErrNoRenderTarget = errors.New("renderer: draw without a render target")

	// ErrNoSurface is returned by PresentTexture on a headless renderer.
	ErrNoSurface = errors.New("renderer: no window surface")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	// pipelineCache holds registered pipelines by cache key: the pipeline key for compute
	// pipelines, the pipeline key and colour format for render pipelines.
	pipelineCache map[string]pipeline.Pipeline
	// meshes holds the vertex buffers created for command buffer meshes.
	meshes map[*command_buffer.Mesh]bind_group_provider.BindGroupProvider

	backendType RendererBackendType
	backend     RendererBackend

	// globalKeywords and globals are set by command buffers and persist between executions.
	globalKeywords map[string]bool
	globals        *material.PropertyBlock

	blit          material.Material
	width, height int

	// Pre-creation config collected from builder options
	window               window.Window
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	colorSpace           ColorSpace
	shaderValidation     bool
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API that runs materials on the GPU. The Renderer resolves the program
// variant of a material from its keywords, creates and caches one pipeline per variant, binds
// material properties to program variables by name and executes compute dispatches and recorded
// command buffers. Textures are created through the Renderer and released by their owner.
type Renderer interface {
	// Capabilities returns what the active device supports.
	//
	// Returns:
	//   - Capabilities: the device capabilities
	Capabilities() Capabilities

	// ColorSpace returns the colour space the renderer was configured with.
	//
	// Returns:
	//   - ColorSpace: the colour space
	ColorSpace() ColorSpace

	// Pipeline retrieves the cached Pipeline associated with the given cache key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the cache key of the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of cache keys to their Pipelines
	Pipelines() map[string]pipeline.Pipeline

	// CreateTexture allocates a texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - texture.Texture: the texture, owned by the caller
	//   - error: texture.ErrInvalidDescriptor, or a device error
	CreateTexture(desc texture.Descriptor) (texture.Texture, error)

	// UploadTexture creates a sampled RGBA8 texture from staging data. In the linear colour
	// space the texture is sRGB so that programs sample linear values.
	//
	// Parameters:
	//   - data: the pixels to upload
	//
	// Returns:
	//   - texture.Texture: the texture, owned by the caller
	//   - error: an error if creation fails
	UploadTexture(data common.TextureStagingData) (texture.Texture, error)

	// UploadImage converts an image to RGBA8 and uploads it with UploadTexture.
	//
	// Parameters:
	//   - name: the texture label
	//   - img: the image to upload
	//
	// Returns:
	//   - texture.Texture: the texture, owned by the caller
	//   - error: an error if creation fails
	UploadImage(name string, img image.Image) (texture.Texture, error)

	// PrepareMaterial creates the pipelines of every keyword variant of a material ahead of
	// use, so program errors surface before the first dispatch.
	//
	// Parameters:
	//   - m: the material
	//   - target: the colour format raster variants render into, ignored for compute materials
	//
	// Returns:
	//   - error: an error for the first variant that fails
	PrepareMaterial(m material.Material, target texture.Format) error

	// InitMeshBuffers uploads the vertices of a mesh. Meshes drawn without calling it are
	// uploaded on first use.
	//
	// Parameters:
	//   - mesh: the mesh to upload
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(mesh *command_buffer.Mesh) error

	// Dispatch runs a compute material over a grid of workgroups and submits it immediately.
	//
	// Parameters:
	//   - m: the compute material
	//   - workGroupCount: the number of workgroups in x, y and z
	//
	// Returns:
	//   - error: ErrPipelineNotFound for raster materials, ErrUnboundProperty, or a device error
	Dispatch(m material.Material, workGroupCount [3]uint32) error

	// ExecuteCommandBuffer encodes the recorded commands into one submission.
	//
	// Parameters:
	//   - cb: the command buffer
	//
	// Returns:
	//   - error: the first error encountered; nothing is submitted in that case
	ExecuteCommandBuffer(cb command_buffer.CommandBuffer) error

	// CopyTexture copies every block of src into dst. A texture of the same format is copied
	// into the top-left corner of a dst at least as large; otherwise each texel of an uncompressed src must have the size of one block of
	// dst and the block grids must match, which is how RGBA32Uint texels become ASTC blocks.
	//
	// Parameters:
	//   - src: the source texture
	//   - dst: the destination texture
	//
	// Returns:
	//   - error: ErrIncompatibleCopy, ErrTextureReleased, or a device error
	CopyTexture(src, dst texture.Texture) error

	// ReadTexture copies a texture back to the CPU and waits for the copy.
	//
	// Parameters:
	//   - t: the texture to read
	//
	// Returns:
	//   - []byte: the tightly packed rows of blocks
	//   - error: an error if the copy or the mapping fails
	ReadTexture(t texture.Texture) ([]byte, error)

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle()

	// PresentTexture draws a texture letterboxed onto the window surface and presents it.
	//
	// Parameters:
	//   - t: the texture to show
	//
	// Returns:
	//   - error: ErrNoSurface on a headless renderer, or an error from the draw
	PresentTexture(t texture.Texture) error

	// Resize configures the window surface for a new size.
	// This should be called when re-sizing the window.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Release frees every pipeline, mesh buffer and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type. The device is
// requested immediately; construction panics if no adapter or device is available.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		pipelineCache:  make(map[string]pipeline.Pipeline),
		meshes:         make(map[*command_buffer.Mesh]bind_group_provider.BindGroupProvider),
		backendType:    backendType,
		globalKeywords: make(map[string]bool),
		globals:        material.NewPropertyBlock(),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var surfaceDescriptor *wgpu.SurfaceDescriptor
	if r.window != nil {
		surfaceDescriptor = r.window.SurfaceDescriptor()
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.window != nil {
		r.Resize(r.window.Width(), r.window.Height())
	}

	caps := r.backend.Capabilities()
	common.Logger().Info("renderer ready",
		"compute", caps.ComputeShaders,
		"astc", caps.ASTCTextures,
		"maxTexture", caps.MaxTextureDimension,
		"colorSpace", r.colorSpace.String(),
		"headless", r.window == nil,
	)
	return r
}

func (r *renderer) Capabilities() Capabilities {
	return r.backend.Capabilities()
}

func (r *renderer) ColorSpace() ColorSpace {
	return r.colorSpace
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) CreateTexture(desc texture.Descriptor) (texture.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return r.backend.CreateTexture(desc)
}

func (r *renderer) UploadTexture(data common.TextureStagingData) (texture.Texture, error) {
	format := texture.FormatRGBA8UnormSrgb
	if r.colorSpace == ColorSpaceGamma {
		format = texture.FormatRGBA8Unorm
	}
	t, err := r.CreateTexture(texture.Descriptor{
		Label:  data.Name,
		Width:  int(data.Width),
		Height: int(data.Height),
		Format: format,
		Kind:   texture.KindTexture2D,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", data.Name, err)
	}
	if err := r.backend.WriteTexture(t, data.Pixels); err != nil {
		t.Release()
		return nil, fmt.Errorf("upload %s: %w", data.Name, err)
	}
	return t, nil
}

func (r *renderer) UploadImage(name string, img image.Image) (texture.Texture, error) {
	return r.UploadTexture(*common.FromImage(name, img))
}

func (r *renderer) PrepareMaterial(m material.Material, target texture.Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.IsCompute() {
		variants, err := m.Shader(shader.ShaderTypeCompute).Variants()
		if err != nil {
			return fmt.Errorf("prepare %s: %w", m.Name(), err)
		}
		for _, v := range variants {
			if _, _, err := r.registerLocked(pipeline.PipelineTypeCompute, wgpu.TextureFormatUndefined, v); err != nil {
				return fmt.Errorf("prepare %s: %w", m.Name(), err)
			}
		}
		return nil
	}

	vs, fs := m.Shader(shader.ShaderTypeVertex), m.Shader(shader.ShaderTypeFragment)
	if vs == nil || fs == nil {
		return fmt.Errorf("prepare %s: %w", m.Name(), material.ErrNoProgram)
	}
	vertexVariants, err := vs.Variants()
	if err != nil {
		return fmt.Errorf("prepare %s: %w", m.Name(), err)
	}
	format := wgpuTextureFormat(target)
	for _, vv := range vertexVariants {
		fv, err := fs.Variant(vv.Keywords())
		if err != nil {
			return fmt.Errorf("prepare %s: %w", m.Name(), err)
		}
		if _, _, err := r.registerLocked(pipeline.PipelineTypeRender, format, vv, fv); err != nil {
			return fmt.Errorf("prepare %s: %w", m.Name(), err)
		}
	}
	return nil
}

func (r *renderer) InitMeshBuffers(mesh *command_buffer.Mesh) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.meshProviderLocked(mesh)
	return err
}

func (r *renderer) Dispatch(m material.Material, workGroupCount [3]uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !m.IsCompute() {
		return fmt.Errorf("%w: %s is not a compute material", ErrPipelineNotFound, m.Name())
	}
	p, cacheKey, err := r.pipelineForLocked(m, wgpu.TextureFormatUndefined)
	if err != nil {
		return err
	}
	provider, err := r.bindLocked(p, cacheKey, m, nil)
	if err != nil {
		return err
	}
	return r.backend.DispatchCompute(p, provider, workGroupCount)
}

func (r *renderer) ExecuteCommandBuffer(cb command_buffer.CommandBuffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginCommands(cb.Name()); err != nil {
		return err
	}
	if err := r.encodeLocked(cb); err != nil {
		r.backend.EndCommands(false)
		return fmt.Errorf("command buffer %q: %w", cb.Name(), err)
	}
	return r.backend.EndCommands(true)
}

// encodeLocked walks the recorded commands. The render pass for a target begins lazily at its
// first draw and ends when the target changes or the buffer ends.
func (r *renderer) encodeLocked(cb command_buffer.CommandBuffer) error {
	var (
		target      texture.Texture
		viewport    *command_buffer.Viewport
		randomWrite = make(map[int]texture.Texture)
		passOpen    bool
	)
	defer func() {
		if passOpen {
			r.backend.EndRenderPass()
		}
	}()

	for _, c := range cb.Commands() {
		switch c.Type {
		case command_buffer.CommandSetRenderTarget:
			if passOpen {
				r.backend.EndRenderPass()
				passOpen = false
			}
			target, viewport = c.Target, nil
		case command_buffer.CommandSetViewport:
			vp := c.Viewport
			viewport = &vp
			if passOpen {
				r.backend.SetViewport(vp)
			}
		case command_buffer.CommandSetRandomWriteTarget:
			randomWrite[c.Slot] = c.Target
		case command_buffer.CommandClearRandomWriteTargets:
			clear(randomWrite)
		case command_buffer.CommandEnableKeyword:
			r.globalKeywords[c.Name] = true
		case command_buffer.CommandDisableKeyword:
			delete(r.globalKeywords, c.Name)
		case command_buffer.CommandSetGlobalVector:
			r.globals.SetVector(c.Name, c.Vector)
		case command_buffer.CommandSetGlobalTexture:
			r.globals.SetTexture(c.Name, c.Target)
		case command_buffer.CommandSetGlobalInt:
			r.globals.SetInt(c.Name, c.Int)
		case command_buffer.CommandSetGlobalFloatArray:
			r.globals.SetFloatArray(c.Name, c.Floats)
		case command_buffer.CommandDrawMesh:
			if target == nil {
				return ErrNoRenderTarget
			}
			if c.Material.IsCompute() {
				return fmt.Errorf("%w: %s is not a raster material", ErrPipelineNotFound, c.Material.Name())
			}
			p, cacheKey, err := r.pipelineForLocked(c.Material, wgpuTextureFormat(target.Format()))
			if err != nil {
				return err
			}
			provider, err := r.bindLocked(p, cacheKey, c.Material, randomWrite)
			if err != nil {
				return err
			}
			meshProvider, err := r.meshProviderLocked(c.Mesh)
			if err != nil {
				return err
			}
			if !passOpen {
				if err := r.backend.BeginRenderPass(target); err != nil {
					return err
				}
				passOpen = true
				if viewport != nil {
					r.backend.SetViewport(*viewport)
				}
			}
			r.backend.DrawCall(p, provider, meshProvider)
		}
	}
	return nil
}

func (r *renderer) CopyTexture(src, dst texture.Texture) error {
	if src.Released() || dst.Released() {
		return ErrTextureReleased
	}
	return r.backend.CopyTexture(src, dst)
}

func (r *renderer) ReadTexture(t texture.Texture) ([]byte, error) {
	if t.Released() {
		return nil, ErrTextureReleased
	}
	return r.backend.ReadTexture(t)
}

func (r *renderer) WaitIdle() {
	r.backend.WaitIdle()
}

func (r *renderer) PresentTexture(t texture.Texture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.backend.HasSurface() {
		return ErrNoSurface
	}
	if t.Released() {
		return ErrTextureReleased
	}
	if r.blit == nil {
		vs, err := shader.NewShaderFromSource("blit", shader.ShaderTypeVertex, blitSource)
		if err != nil {
			return err
		}
		fs, err := shader.NewShaderFromSource("blit", shader.ShaderTypeFragment, blitSource)
		if err != nil {
			return err
		}
		r.blit = material.NewMaterial(material.WithName("blit"), material.WithRasterShaders(vs, fs))
	}
	r.blit.SetTexture("_MainTex", t)
	r.blit.SetVector("_ViewRect", letterbox(t.Width(), t.Height(), r.width, r.height))

	p, cacheKey, err := r.pipelineForLocked(r.blit, r.backend.SurfaceFormat())
	if err != nil {
		return err
	}
	provider, err := r.bindLocked(p, cacheKey, r.blit, nil)
	if err != nil {
		return err
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.backend.DrawCall(p, provider, nil)
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 || !r.backend.HasSurface() {
		return
	}
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.blit != nil {
		r.blit.Release()
		r.blit = nil
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	for mesh, provider := range r.meshes {
		provider.Release()
		delete(r.meshes, mesh)
	}
	r.backend.Release()
}

// pipelineForLocked resolves the variants of a material against the global keywords and
// returns the registered pipeline, creating it on first use.
func (r *renderer) pipelineForLocked(m material.Material, format wgpu.TextureFormat) (pipeline.Pipeline, string, error) {
	variants, err := m.ResolveVariants(r.globalKeywordListLocked())
	if err != nil {
		return nil, "", err
	}
	pipelineType := pipeline.PipelineTypeRender
	if m.IsCompute() {
		pipelineType = pipeline.PipelineTypeCompute
	}
	return r.registerLocked(pipelineType, format, variants...)
}

// registerLocked returns the cached pipeline for the variants, creating the GPU objects when
// the cache key is new.
func (r *renderer) registerLocked(pipelineType pipeline.PipelineType, format wgpu.TextureFormat, variants ...shader.Variant) (pipeline.Pipeline, string, error) {
	cacheKey := pipelineCacheKey(pipelineType, format, variants...)
	if p, ok := r.pipelineCache[cacheKey]; ok {
		return p, cacheKey, nil
	}

	for _, v := range variants {
		if v.EntryPoint() == "" {
			return nil, "", fmt.Errorf("%w: %s has no %s entry point", ErrPipelineNotFound, v.Key(), v.ShaderType())
		}
		if r.shaderValidation {
			if err := shader.Validate(v); err != nil {
				return nil, "", err
			}
		}
	}

	opts := []pipeline.PipelineBuilderOption{pipeline.WithVariants(variants...)}
	if pipelineType == pipeline.PipelineTypeRender {
		opts = append(opts, pipeline.WithColorFormat(format))
	}
	p := pipeline.NewPipeline(pipelineType, opts...)

	var err error
	switch pipelineType {
	case pipeline.PipelineTypeCompute:
		err = r.backend.RegisterComputePipeline(p)
	case pipeline.PipelineTypeRender:
		err = r.backend.RegisterRenderPipeline(p)
	}
	if err != nil {
		p.Release()
		return nil, "", fmt.Errorf("register %s: %w", cacheKey, err)
	}
	r.pipelineCache[cacheKey] = p
	common.Logger().Debug("pipeline registered", "key", cacheKey)
	return p, cacheKey, nil
}

// bindLocked refreshes the bind groups of the material's provider for the pipeline. Raster
// random-write targets take precedence in their group, then material properties, then globals.
func (r *renderer) bindLocked(p pipeline.Pipeline, cacheKey string, m material.Material, randomWrite map[int]texture.Texture) (bind_group_provider.BindGroupProvider, error) {
	provider := m.BindGroupProvider(cacheKey)
	if provider == nil {
		provider = bind_group_provider.NewBindGroupProvider(m.Name() + " " + cacheKey)
		m.SetBindGroupProvider(cacheKey, provider)
	}

	lookup := func(group, binding int, name string) (material.Property, bool) {
		if group == randomWriteGroup {
			if t, ok := randomWrite[binding]; ok && t != nil {
				return material.Property{Kind: material.PropertyTexture, Texture: t}, true
			}
		}
		return material.Resolve(name, m.Properties(), r.globals)
	}
	if err := r.backend.BindMaterial(p, provider, lookup); err != nil {
		return nil, fmt.Errorf("bind %s: %w", m.Name(), err)
	}
	return provider, nil
}

func (r *renderer) meshProviderLocked(mesh *command_buffer.Mesh) (bind_group_provider.BindGroupProvider, error) {
	if mesh == nil {
		return nil, nil
	}
	if provider, ok := r.meshes[mesh]; ok {
		return provider, nil
	}
	provider := bind_group_provider.NewBindGroupProvider(mesh.Label)
	if err := r.backend.InitMeshBuffers(provider, meshVertexBytes(mesh), len(mesh.Positions)); err != nil {
		provider.Release()
		return nil, fmt.Errorf("mesh %s: %w", mesh.Label, err)
	}
	r.meshes[mesh] = provider
	return provider, nil
}

func (r *renderer) globalKeywordListLocked() []string {
	out := make([]string, 0, len(r.globalKeywords))
	for kw := range r.globalKeywords {
		out = append(out, kw)
	}
	slices.Sort(out)
	return out
}

// pipelineCacheKey identifies a pipeline by its variants and, for render pipelines, the colour
// format it renders into.
func pipelineCacheKey(pipelineType pipeline.PipelineType, format wgpu.TextureFormat, variants ...shader.Variant) string {
	key := pipeline.Key(variants...)
	if pipelineType == pipeline.PipelineTypeRender {
		key = fmt.Sprintf("%s@%d", key, uint32(format))
	}
	return key
}

// letterbox returns the fraction of the surface a texture covers when scaled to fit it without
// distortion.
func letterbox(texWidth, texHeight, surfaceWidth, surfaceHeight int) [4]float32 {
	if texWidth <= 0 || texHeight <= 0 || surfaceWidth <= 0 || surfaceHeight <= 0 {
		return [4]float32{1, 1, 0, 0}
	}
	texAspect := float32(texWidth) / float32(texHeight)
	surfaceAspect := float32(surfaceWidth) / float32(surfaceHeight)
	if texAspect > surfaceAspect {
		return [4]float32{1, surfaceAspect / texAspect, 0, 0}
	}
	return [4]float32{texAspect / surfaceAspect, 1, 0, 0}
}

// meshVertexBytes packs the mesh positions as consecutive little-endian vec2<f32>.
func meshVertexBytes(mesh *command_buffer.Mesh) []byte {
	buf := make([]byte, 0, len(mesh.Positions)*8)
	for _, p := range mesh.Positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p[1]))
	}
	return buf
}
