package engine

import (
	"bytes"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

const (
	blockFill   byte = 0x42
	previewFill byte = 0x80
)

type fakeTexture struct {
	*texture.Handle
	data []byte
}

func (t *fakeTexture) Release() {
	t.MarkReleased()
}

// stride returns the bytes per row of blocks.
func (t *fakeTexture) stride() int {
	return t.Format().RowBytes(t.Width())
}

func (t *fakeTexture) rows() int {
	return common.CeilDiv(t.Height(), t.Format().BlockDim())
}

// fakeRenderer runs the compute path on the CPU. Dispatches fill the result textures with
// constant bytes and copies move rows into the top-left corner of the destination.
type fakeRenderer struct {
	caps     renderer.Capabilities
	textures []*fakeTexture
	released bool
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{caps: renderer.Capabilities{ComputeShaders: true, ASTCTextures: true, MaxTextureDimension: 8192}}
}

func (r *fakeRenderer) newTexture(desc texture.Descriptor) *fakeTexture {
	t := &fakeTexture{Handle: texture.NewHandle(desc)}
	t.data = make([]byte, t.stride()*t.rows())
	r.textures = append(r.textures, t)
	return t
}

func (r *fakeRenderer) live() int {
	n := 0
	for _, t := range r.textures {
		if !t.Released() {
			n++
		}
	}
	return n
}

func (r *fakeRenderer) Capabilities() renderer.Capabilities { return r.caps }

func (r *fakeRenderer) ColorSpace() renderer.ColorSpace { return renderer.ColorSpaceLinear }

func (r *fakeRenderer) Pipeline(string) pipeline.Pipeline { return nil }

func (r *fakeRenderer) Pipelines() map[string]pipeline.Pipeline { return nil }

func (r *fakeRenderer) PrepareMaterial(material.Material, texture.Format) error { return nil }

func (r *fakeRenderer) InitMeshBuffers(*command_buffer.Mesh) error { return nil }

func (r *fakeRenderer) WaitIdle() {}

func (r *fakeRenderer) Resize(int, int) {}

func (r *fakeRenderer) Release() { r.released = true }

func (r *fakeRenderer) ExecuteCommandBuffer(command_buffer.CommandBuffer) error {
	return renderer.ErrPipelineNotFound
}

func (r *fakeRenderer) PresentTexture(texture.Texture) error {
	return renderer.ErrNoSurface
}

func (r *fakeRenderer) CreateTexture(desc texture.Descriptor) (texture.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Format.IsCompressed() && !r.caps.ASTCTextures {
		return nil, fmt.Errorf("%s textures are not supported by the device", desc.Format)
	}
	return r.newTexture(desc), nil
}

func (r *fakeRenderer) UploadTexture(data common.TextureStagingData) (texture.Texture, error) {
	t := r.newTexture(texture.Descriptor{
		Label:  data.Name,
		Width:  int(data.Width),
		Height: int(data.Height),
		Format: texture.FormatRGBA8UnormSrgb,
	})
	copy(t.data, data.Pixels)
	return t, nil
}

func (r *fakeRenderer) UploadImage(name string, img image.Image) (texture.Texture, error) {
	return r.UploadTexture(*common.FromImage(name, img))
}

func (r *fakeRenderer) Dispatch(m material.Material, _ [3]uint32) error {
	props := m.Properties()
	if t, ok := props.Texture(compressor.PropResult).(*fakeTexture); ok {
		t.data = bytes.Repeat([]byte{blockFill}, len(t.data))
	}
	if t, ok := props.Texture(compressor.PropResultDecompressed).(*fakeTexture); ok {
		t.data = bytes.Repeat([]byte{previewFill}, len(t.data))
	}
	return nil
}

func (r *fakeRenderer) CopyTexture(src, dst texture.Texture) error {
	s, d := src.(*fakeTexture), dst.(*fakeTexture)
	if s.Released() || d.Released() {
		return renderer.ErrTextureReleased
	}
	for y := 0; y < s.rows(); y++ {
		copy(d.data[y*d.stride():], s.data[y*s.stride():(y+1)*s.stride()])
	}
	return nil
}

func (r *fakeRenderer) ReadTexture(t texture.Texture) ([]byte, error) {
	if t.Released() {
		return nil, renderer.ErrTextureReleased
	}
	return bytes.Clone(t.(*fakeTexture).data), nil
}
