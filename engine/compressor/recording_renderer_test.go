package compressor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// Marker bytes the simulated programs write, so tests can tell which texture reached the output.
const (
	resultMarker  byte = 0xA5
	previewMarker byte = 0x5C
)

// recordingTexture holds its contents on the CPU so copies can be checked.
type recordingTexture struct {
	*texture.Handle
	owner *recordingRenderer
	data  []byte
}

// stride returns the bytes per row of blocks.
func (t *recordingTexture) stride() int {
	return t.Format().RowBytes(t.Width())
}

func (t *recordingTexture) rows() int {
	return common.CeilDiv(t.Height(), t.Format().BlockDim())
}

// region reports whether the top-left w x h texels of t equal b and every other byte is zero.
func (t *recordingTexture) region(w, h int, b byte) bool {
	inside := t.Format().RowBytes(w)
	for y := 0; y < t.rows(); y++ {
		row := t.data[y*t.stride() : (y+1)*t.stride()]
		for x, v := range row {
			want := byte(0)
			if y < common.CeilDiv(h, t.Format().BlockDim()) && x < inside {
				want = b
			}
			if v != want {
				return false
			}
		}
	}
	return true
}

func (t *recordingTexture) Release() {
	if t.MarkReleased() {
		t.owner.record("release %s", t.Label())
	}
}

// recordingRenderer implements renderer.Renderer on the CPU. It logs every call and simulates
// the compression programs by filling _Result and _ResultDecompressed with marker bytes.
type recordingRenderer struct {
	caps       renderer.Capabilities
	colorSpace renderer.ColorSpace

	events   []string
	textures []*recordingTexture

	// dispatches and draws hold the material keywords seen by each submission.
	dispatches [][]string
	draws      [][]string
	commands   [][]command_buffer.Command
	grids      [][3]uint32
	meshes     []*command_buffer.Mesh
	prepared   []texture.Format

	globalKeywords map[string]bool

	failCreate   func(desc texture.Descriptor) error
	failDispatch error
	failCopy     error
	failMesh     error
	onDispatch   func()
}

var _ renderer.Renderer = &recordingRenderer{}

func newRecordingRenderer(caps renderer.Capabilities) *recordingRenderer {
	return &recordingRenderer{
		caps:           caps,
		colorSpace:     renderer.ColorSpaceLinear,
		globalKeywords: make(map[string]bool),
	}
}

func computeCaps() renderer.Capabilities {
	return renderer.Capabilities{ComputeShaders: true, ASTCTextures: true, MaxTextureDimension: 8192}
}

func rasterCaps() renderer.Capabilities {
	return renderer.Capabilities{ComputeShaders: false, ASTCTextures: true, MaxTextureDimension: 8192}
}

func (r *recordingRenderer) record(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// eventsWithPrefix returns the recorded events starting with prefix.
func (r *recordingRenderer) eventsWithPrefix(prefix string) []string {
	var out []string
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// live returns the textures created and not released, by label.
func (r *recordingRenderer) live() []string {
	var out []string
	for _, t := range r.textures {
		if !t.Released() {
			out = append(out, t.Label())
		}
	}
	return out
}

func (r *recordingRenderer) newTexture(desc texture.Descriptor) *recordingTexture {
	t := &recordingTexture{
		Handle: texture.NewHandle(desc),
		owner:  r,
		data:   make([]byte, desc.Format.RowBytes(desc.Width)*common.CeilDiv(desc.Height, desc.Format.BlockDim())),
	}
	r.textures = append(r.textures, t)
	return t
}

// source creates a sampled RGBA8 source texture of the given size.
func (r *recordingRenderer) source(label string, width, height int) *recordingTexture {
	return r.newTexture(texture.Descriptor{Label: label, Width: width, Height: height, Format: texture.FormatRGBA8UnormSrgb})
}

func (r *recordingRenderer) Capabilities() renderer.Capabilities { return r.caps }

func (r *recordingRenderer) ColorSpace() renderer.ColorSpace { return r.colorSpace }

func (r *recordingRenderer) Pipeline(key string) pipeline.Pipeline { return nil }

func (r *recordingRenderer) Pipelines() map[string]pipeline.Pipeline {
	return map[string]pipeline.Pipeline{}
}

func (r *recordingRenderer) CreateTexture(desc texture.Descriptor) (texture.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if r.failCreate != nil {
		if err := r.failCreate(desc); err != nil {
			return nil, err
		}
	}
	if desc.Format.IsCompressed() && !r.caps.ASTCTextures {
		return nil, fmt.Errorf("%s textures are not supported by the device", desc.Format)
	}
	r.record("create %s %dx%d %s", desc.Label, desc.Width, desc.Height, desc.Format)
	return r.newTexture(desc), nil
}

func (r *recordingRenderer) UploadTexture(data common.TextureStagingData) (texture.Texture, error) {
	return r.source(data.Name, int(data.Width), int(data.Height)), nil
}

func (r *recordingRenderer) UploadImage(name string, img image.Image) (texture.Texture, error) {
	return r.UploadTexture(*common.FromImage(name, img))
}

func (r *recordingRenderer) PrepareMaterial(m material.Material, target texture.Format) error {
	r.prepared = append(r.prepared, target)
	return nil
}

func (r *recordingRenderer) InitMeshBuffers(mesh *command_buffer.Mesh) error {
	if r.failMesh != nil {
		return r.failMesh
	}
	r.meshes = append(r.meshes, mesh)
	return nil
}

// fill writes marker into every byte of t.
func fill(t texture.Texture, marker byte) error {
	rt, ok := t.(*recordingTexture)
	if !ok || rt == nil {
		return errors.New("not a recording texture")
	}
	if rt.Released() {
		return renderer.ErrTextureReleased
	}
	for i := range rt.data {
		rt.data[i] = marker
	}
	return nil
}

func (r *recordingRenderer) Dispatch(m material.Material, workGroupCount [3]uint32) error {
	if !m.IsCompute() {
		return renderer.ErrPipelineNotFound
	}
	if r.onDispatch != nil {
		r.onDispatch()
	}
	if r.failDispatch != nil {
		return r.failDispatch
	}
	props := m.Properties()
	result := props.Texture(PropResult)
	if result == nil || props.Texture(PropSourceTexture) == nil {
		return renderer.ErrUnboundProperty
	}
	if err := fill(result, resultMarker); err != nil {
		return err
	}
	if m.IsKeywordEnabled(KeywordDecompressRGB) {
		preview := props.Texture(PropResultDecompressed)
		if preview == nil {
			return renderer.ErrUnboundProperty
		}
		if err := fill(preview, previewMarker); err != nil {
			return err
		}
	}
	r.dispatches = append(r.dispatches, m.EnabledKeywords())
	r.grids = append(r.grids, workGroupCount)
	r.record("dispatch %dx%dx%d", workGroupCount[0], workGroupCount[1], workGroupCount[2])
	return nil
}

func (r *recordingRenderer) ExecuteCommandBuffer(cb command_buffer.CommandBuffer) error {
	commands := slices.Clone(cb.Commands())
	r.commands = append(r.commands, commands)

	var target texture.Texture
	randomWrite := make(map[int]texture.Texture)
	for _, c := range commands {
		switch c.Type {
		case command_buffer.CommandSetRenderTarget:
			target = c.Target
		case command_buffer.CommandSetRandomWriteTarget:
			randomWrite[c.Slot] = c.Target
		case command_buffer.CommandClearRandomWriteTargets:
			clear(randomWrite)
		case command_buffer.CommandEnableKeyword:
			r.globalKeywords[c.Name] = true
		case command_buffer.CommandDisableKeyword:
			delete(r.globalKeywords, c.Name)
		case command_buffer.CommandDrawMesh:
			if target == nil {
				return renderer.ErrNoRenderTarget
			}
			if err := fill(target, resultMarker); err != nil {
				return err
			}
			if c.Material.IsKeywordEnabled(KeywordDecompressRGB) {
				preview, ok := randomWrite[decodePreviewSlot]
				if !ok {
					return renderer.ErrUnboundProperty
				}
				if err := fill(preview, previewMarker); err != nil {
					return err
				}
			}
			keywords := c.Material.EnabledKeywords()
			for kw := range r.globalKeywords {
				keywords = append(keywords, kw)
			}
			slices.Sort(keywords)
			r.draws = append(r.draws, keywords)
		}
	}
	r.record("execute %s", cb.Name())
	return nil
}

func (r *recordingRenderer) CopyTexture(src, dst texture.Texture) error {
	if src.Released() || dst.Released() {
		return renderer.ErrTextureReleased
	}
	if r.failCopy != nil {
		return r.failCopy
	}
	s, d := src.(*recordingTexture), dst.(*recordingTexture)
	if s.Format().BytesPerBlock() != d.Format().BytesPerBlock() {
		return fmt.Errorf("%w: %s into %s", renderer.ErrIncompatibleCopy, s.Format(), d.Format())
	}
	if s.stride() > d.stride() || s.rows() > d.rows() {
		return fmt.Errorf("%w: %s %dx%d into %s %dx%d", renderer.ErrIncompatibleCopy,
			s.Format(), s.Width(), s.Height(), d.Format(), d.Width(), d.Height())
	}
	for y := 0; y < s.rows(); y++ {
		copy(d.data[y*d.stride():], s.data[y*s.stride():(y+1)*s.stride()])
	}
	r.record("copy %s -> %s", src.Label(), dst.Label())
	return nil
}

func (r *recordingRenderer) ReadTexture(t texture.Texture) ([]byte, error) {
	if t.Released() {
		return nil, renderer.ErrTextureReleased
	}
	return bytes.Clone(t.(*recordingTexture).data), nil
}

func (r *recordingRenderer) WaitIdle() {
	r.record("wait idle")
}

func (r *recordingRenderer) PresentTexture(t texture.Texture) error {
	return renderer.ErrNoSurface
}

func (r *recordingRenderer) Resize(width, height int) {}

func (r *recordingRenderer) Release() {}

// allBytes reports whether every byte of data equals b.
func allBytes(data []byte, b byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, v := range data {
		if v != b {
			return false
		}
	}
	return true
}
