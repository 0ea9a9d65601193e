package compressor

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// computeBackend dispatches the compute program with one workgroup per block.
type computeBackend struct {
	renderer renderer.Renderer
	material material.Material
	srgb     bool
}

var _ Backend = &computeBackend{}

func newComputeBackend(r renderer.Renderer, program shader.Shader, srgb bool) (*computeBackend, error) {
	if program == nil {
		return nil, ErrMissingProgram
	}
	if err := checkEntryPoint(program, ComputeEntryPoint); err != nil {
		return nil, err
	}
	return &computeBackend{
		renderer: r,
		material: material.NewMaterial(material.WithName("astc compress"), material.WithComputeShader(program)),
		srgb:     srgb,
	}, nil
}

// checkEntryPoint verifies that the default variant of a program declares the named entry point.
func checkEntryPoint(program shader.Shader, entryPoint string) error {
	v, err := program.Variant(nil)
	if err != nil {
		return fmt.Errorf("%s: %w", program.Key(), err)
	}
	if v.EntryPoint() != entryPoint {
		return fmt.Errorf("%w: %s has no %s %s", ErrMissingEntryPoint, program.Key(), program.ShaderType(), entryPoint)
	}
	return nil
}

func (c *computeBackend) Kind() BackendKind {
	return BackendCompute
}

func (c *computeBackend) Configure(b astc.BlockSize, preview bool) {
	configureBlockSize(c.material, b, preview)
}

func (c *computeBackend) Execute(req ExecuteRequest) error {
	preview := req.DecodePreview != nil
	c.Configure(req.BlockSize, preview)
	c.material.SetKeyword(KeywordSRGB, c.srgb)

	props := c.material.Properties()
	defer props.Remove(PropSourceTexture)
	defer props.Remove(PropResultDecompressed)

	c.material.SetTexture(PropSourceTexture, req.Source)
	c.material.SetTexture(PropResult, req.Intermediate)
	if preview {
		c.material.SetTexture(PropResultDecompressed, req.DecodePreview)
	}

	w, h := req.Source.Width(), req.Source.Height()
	c.material.SetVector(PropDestRect, astc.NewGPUDestRect(w, h).Vector())
	c.material.SetVector(PropTextureSize, astc.GPUTextureSize{Width: float32(w), Height: float32(h)}.Vector())
	c.material.SetInt(PropSourceMipLevel, 0)

	return c.renderer.Dispatch(c.material, [3]uint32{uint32(req.Grid.Width), uint32(req.Grid.Height), 1})
}

func (c *computeBackend) prepare() error {
	return c.renderer.PrepareMaterial(c.material, texture.FormatUndefined)
}

func (c *computeBackend) Release() {
	c.material.Release()
}
