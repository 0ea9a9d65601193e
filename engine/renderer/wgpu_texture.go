package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// copyRowAlignment is the WebGPU requirement on bytesPerRow for buffer/texture copies.
const copyRowAlignment = 256

// wgpuTexture is the WebGPU implementation of texture.Texture.
type wgpuTexture struct {
	*texture.Handle
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

var _ texture.Texture = &wgpuTexture{}

func (t *wgpuTexture) Release() {
	if !t.MarkReleased() {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// wgpuTextureFormat maps a texture format to its WebGPU format.
func wgpuTextureFormat(f texture.Format) wgpu.TextureFormat {
	switch f {
	case texture.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case texture.FormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case texture.FormatRGBA32Uint:
		return wgpu.TextureFormatRGBA32Uint
	case texture.FormatASTC4x4Unorm:
		return wgpu.TextureFormatASTC4x4Unorm
	case texture.FormatASTC4x4UnormSrgb:
		return wgpu.TextureFormatASTC4x4UnormSrgb
	case texture.FormatASTC5x5Unorm:
		return wgpu.TextureFormatASTC5x5Unorm
	case texture.FormatASTC5x5UnormSrgb:
		return wgpu.TextureFormatASTC5x5UnormSrgb
	case texture.FormatASTC6x6Unorm:
		return wgpu.TextureFormatASTC6x6Unorm
	case texture.FormatASTC6x6UnormSrgb:
		return wgpu.TextureFormatASTC6x6UnormSrgb
	default:
		return wgpu.TextureFormatUndefined
	}
}

// textureUsage derives the usage flags of a texture from its descriptor.
func textureUsage(desc texture.Descriptor) wgpu.TextureUsage {
	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
	if desc.Format.IsCompressed() {
		return usage
	}
	if desc.RandomWrite {
		usage |= wgpu.TextureUsageStorageBinding
	}
	if desc.Kind == texture.KindRenderTexture {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	return usage
}

// samplerStagingData derives the sampler for a texture from its recorded filter and wrap modes.
func samplerStagingData(desc texture.Descriptor) common.SamplerStagingData {
	data := common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
	if desc.Wrap == texture.WrapRepeat {
		data.AddressModeU, data.AddressModeV, data.AddressModeW = wgpu.AddressModeRepeat, wgpu.AddressModeRepeat, wgpu.AddressModeRepeat
	}
	if desc.Filter == texture.FilterPoint {
		data.MagFilter, data.MinFilter = wgpu.FilterModeNearest, wgpu.FilterModeNearest
	}
	return data
}

// copyPlan is how CopyTexture moves blocks between two textures.
type copyPlan int

const (
	// copyDirect copies the whole of src into the top-left corner of dst; formats match up to sRGB-ness.
	copyDirect copyPlan = iota

	// copyStaged copies texels through a buffer into blocks of a different format.
	copyStaged
)

// planCopy decides how src can be copied into dst.
func planCopy(src, dst texture.Descriptor) (copyPlan, error) {
	if src.Width <= 0 || src.Height <= 0 || dst.Width <= 0 || dst.Height <= 0 {
		return 0, fmt.Errorf("%w: empty texture", ErrIncompatibleCopy)
	}
	if sameFormatFamily(src.Format, dst.Format) {
		if src.Width > dst.Width || src.Height > dst.Height {
			return 0, fmt.Errorf("%w: %dx%d into %dx%d", ErrIncompatibleCopy, src.Width, src.Height, dst.Width, dst.Height)
		}
		return copyDirect, nil
	}
	if src.Format.IsCompressed() || src.Format.BytesPerBlock() != dst.Format.BytesPerBlock() {
		return 0, fmt.Errorf("%w: %s into %s", ErrIncompatibleCopy, src.Format, dst.Format)
	}
	dim := dst.Format.BlockDim()
	if src.Width != common.CeilDiv(dst.Width, dim) || src.Height != common.CeilDiv(dst.Height, dim) {
		return 0, fmt.Errorf("%w: %dx%d texels into a %dx%d grid of %s blocks", ErrIncompatibleCopy,
			src.Width, src.Height, common.CeilDiv(dst.Width, dim), common.CeilDiv(dst.Height, dim), dst.Format)
	}
	return copyStaged, nil
}

func sameFormatFamily(a, b texture.Format) bool {
	if a == b {
		return true
	}
	rgba8 := func(f texture.Format) bool {
		return f == texture.FormatRGBA8Unorm || f == texture.FormatRGBA8UnormSrgb
	}
	return rgba8(a) && rgba8(b)
}

// blockRows returns the number of block rows of a texture.
func blockRows(desc texture.Descriptor) int {
	return common.CeilDiv(desc.Height, desc.Format.BlockDim())
}

// paddedRowBytes returns the bytes per block row rounded up to the copy row alignment.
func paddedRowBytes(desc texture.Descriptor) uint32 {
	return common.AlignUp(copyRowAlignment, uint32(desc.Format.RowBytes(desc.Width)))
}

// unpadRows strips the row padding of a buffer laid out with paddedRowBytes.
func unpadRows(padded []byte, rowBytes, paddedRow, rows int) []byte {
	if rowBytes == paddedRow {
		return append([]byte(nil), padded[:rowBytes*rows]...)
	}
	out := make([]byte, rowBytes*rows)
	for y := 0; y < rows; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], padded[y*paddedRow:y*paddedRow+rowBytes])
	}
	return out
}

func imageCopyTexture(t *wgpuTexture) *wgpu.ImageCopyTexture {
	return &wgpu.ImageCopyTexture{
		Texture:  t.tex,
		MipLevel: 0,
		Origin:   wgpu.Origin3D{},
		Aspect:   wgpu.TextureAspectAll,
	}
}

func textureExtent(desc texture.Descriptor) *wgpu.Extent3D {
	return &wgpu.Extent3D{
		Width:              uint32(desc.Width),
		Height:             uint32(desc.Height),
		DepthOrArrayLayers: 1,
	}
}

// asWGPUTexture unwraps a texture created by this backend.
func asWGPUTexture(t texture.Texture) (*wgpuTexture, error) {
	wt, ok := t.(*wgpuTexture)
	if !ok {
		return nil, fmt.Errorf("renderer: texture %q was not created by the WebGPU backend", t.Label())
	}
	if wt.Released() {
		return nil, fmt.Errorf("%w: %q", ErrTextureReleased, t.Label())
	}
	return wt, nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc texture.Descriptor) (texture.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := wgpuTextureFormat(desc.Format)
	if desc.Format.IsCompressed() && !b.capabilities.ASTCTextures {
		return nil, fmt.Errorf("renderer: %s textures are not supported by the device", desc.Format)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         textureUsage(desc),
		Dimension:     wgpu.TextureDimension2D,
		Size:          *textureExtent(desc),
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTexture{Handle: texture.NewHandle(desc), tex: tex, view: view}, nil
}

func (b *wgpuRendererBackendImpl) WriteTexture(t texture.Texture, data []byte) error {
	wt, err := asWGPUTexture(t)
	if err != nil {
		return err
	}
	desc := t.Descriptor()
	rowBytes := desc.Format.RowBytes(desc.Width)
	rows := blockRows(desc)
	if len(data) < rowBytes*rows {
		return fmt.Errorf("renderer: %q needs %d bytes, got %d", t.Label(), rowBytes*rows, len(data))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteTexture(
		imageCopyTexture(wt),
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rowBytes),
			RowsPerImage: uint32(rows),
		},
		textureExtent(desc),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) CopyTexture(src, dst texture.Texture) error {
	ws, err := asWGPUTexture(src)
	if err != nil {
		return err
	}
	wd, err := asWGPUTexture(dst)
	if err != nil {
		return err
	}
	plan, err := planCopy(src.Descriptor(), dst.Descriptor())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "copy " + src.Label()})
	if err != nil {
		return err
	}
	defer encoder.Release()

	var staging *wgpu.Buffer
	switch plan {
	case copyDirect:
		encoder.CopyTextureToTexture(imageCopyTexture(ws), imageCopyTexture(wd), textureExtent(src.Descriptor()))
	case copyStaged:
		srcDesc := src.Descriptor()
		paddedRow := paddedRowBytes(srcDesc)
		rows := uint32(blockRows(srcDesc))
		staging, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: src.Label() + " staging",
			Size:  uint64(paddedRow) * uint64(rows),
			Usage: wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		defer staging.Release()

		layout := wgpu.TextureDataLayout{Offset: 0, BytesPerRow: paddedRow, RowsPerImage: rows}
		encoder.CopyTextureToBuffer(imageCopyTexture(ws), &wgpu.ImageCopyBuffer{Layout: layout, Buffer: staging}, textureExtent(srcDesc))
		encoder.CopyBufferToTexture(&wgpu.ImageCopyBuffer{Layout: layout, Buffer: staging}, imageCopyTexture(wd), textureExtent(dst.Descriptor()))
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) ReadTexture(t texture.Texture) ([]byte, error) {
	wt, err := asWGPUTexture(t)
	if err != nil {
		return nil, err
	}
	desc := t.Descriptor()
	rowBytes := desc.Format.RowBytes(desc.Width)
	paddedRow := paddedRowBytes(desc)
	rows := blockRows(desc)
	size := uint64(paddedRow) * uint64(rows)

	b.mu.Lock()
	defer b.mu.Unlock()

	readback, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: t.Label() + " readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer readback.Release()

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "read " + t.Label()})
	if err != nil {
		return nil, err
	}
	defer encoder.Release()
	encoder.CopyTextureToBuffer(
		imageCopyTexture(wt),
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{Offset: 0, BytesPerRow: paddedRow, RowsPerImage: uint32(rows)},
			Buffer: readback,
		},
		textureExtent(desc),
	)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)

	var status wgpu.BufferMapAsyncStatus
	readback.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("renderer: mapping %q readback failed with status %d", t.Label(), status)
	}
	defer readback.Unmap()

	return unpadRows(readback.GetMappedRange(0, uint(size)), rowBytes, int(paddedRow), rows), nil
}
