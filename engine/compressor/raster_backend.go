package compressor

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
)

const (
	commandBufferName = "GPU Texture Compress"

	// decodePreviewSlot is the random-write slot of _ResultDecompressed in the raster program.
	decodePreviewSlot = 1
)

// rasterBackend records a full-screen draw into the intermediate, for devices without compute
// shaders. Every fragment of the grid-sized viewport encodes one block.
type rasterBackend struct {
	renderer renderer.Renderer
	material material.Material
	mesh     *command_buffer.Mesh
	pool     *command_buffer.Pool
	srgb     bool
}

var _ Backend = &rasterBackend{}

func newRasterBackend(r renderer.Renderer, program *RasterProgram, srgb bool) (*rasterBackend, error) {
	if program == nil || program.Vertex == nil || program.Fragment == nil {
		return nil, ErrMissingProgram
	}
	if err := checkEntryPoint(program.Vertex, VertexEntryPoint); err != nil {
		return nil, err
	}
	if err := checkEntryPoint(program.Fragment, FragmentEntryPoint); err != nil {
		return nil, err
	}

	b := &rasterBackend{
		renderer: r,
		material: material.NewMaterial(material.WithName("astc compress raster"), material.WithRasterShaders(program.Vertex, program.Fragment)),
		mesh:     fullScreenTriangle(),
		pool:     command_buffer.NewPool(),
		srgb:     srgb,
	}
	if err := r.InitMeshBuffers(b.mesh); err != nil {
		b.material.Release()
		return nil, fmt.Errorf("full-screen triangle: %w", err)
	}
	return b, nil
}

// fullScreenTriangle covers clip space with a single triangle.
func fullScreenTriangle() *command_buffer.Mesh {
	return &command_buffer.Mesh{
		Label:     "full-screen triangle",
		Positions: [][2]float32{{-1, -1}, {-1, 3}, {3, -1}},
	}
}

func (r *rasterBackend) Kind() BackendKind {
	return BackendRaster
}

func (r *rasterBackend) Configure(b astc.BlockSize, preview bool) {
	configureBlockSize(r.material, b, preview)
}

func (r *rasterBackend) Execute(req ExecuteRequest) error {
	preview := req.DecodePreview != nil
	r.Configure(req.BlockSize, preview)

	cb := r.pool.Get(commandBufferName)
	defer r.pool.Put(cb)

	cb.SetRenderTarget(req.Intermediate)
	cb.SetViewport(0, 0, req.Grid.Width, req.Grid.Height)
	if preview {
		cb.SetRandomWriteTarget(decodePreviewSlot, req.DecodePreview)
	}
	if r.srgb {
		cb.EnableKeyword(KeywordSRGB)
	} else {
		cb.DisableKeyword(KeywordSRGB)
	}
	cb.SetGlobalVector(PropDestRect, astc.NewGPUDestRect(req.Source.Width(), req.Source.Height()).Vector())
	cb.SetGlobalTexture(PropSourceTexture, req.Source)
	cb.SetGlobalInt(PropSourceMipLevel, 0)
	cb.DrawMesh(r.mesh, r.material)
	// The source may be released after the call; no global may keep referring to it.
	cb.SetGlobalTexture(PropSourceTexture, nil)
	cb.ClearRandomWriteTargets()
	cb.SetRenderTarget(nil)

	return r.renderer.ExecuteCommandBuffer(cb)
}

func (r *rasterBackend) prepare() error {
	return r.renderer.PrepareMaterial(r.material, IntermediateFormat)
}

func (r *rasterBackend) Release() {
	r.material.Release()
}
