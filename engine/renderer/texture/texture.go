package texture

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Format identifies the texel layout of a texture independently of the GPU API.
type Format int

const (
	// FormatUndefined is the zero value and is never valid for allocation.
	FormatUndefined Format = iota

	// FormatRGBA8Unorm stores four 8-bit normalized channels. Used by decode previews and sources.
	FormatRGBA8Unorm

	// FormatRGBA8UnormSrgb stores four 8-bit normalized channels with sRGB decoding on sample.
	FormatRGBA8UnormSrgb

	// FormatRGBA32Uint stores four 32-bit unsigned integer channels. One texel holds one 128-bit ASTC block.
	FormatRGBA32Uint

	// FormatASTC4x4Unorm through FormatASTC6x6UnormSrgb are the native block-compressed formats.
	FormatASTC4x4Unorm
	FormatASTC4x4UnormSrgb
	FormatASTC5x5Unorm
	FormatASTC5x5UnormSrgb
	FormatASTC6x6Unorm
	FormatASTC6x6UnormSrgb
)

// String returns a readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatRGBA32Uint:
		return "rgba32uint"
	case FormatASTC4x4Unorm:
		return "astc-4x4-unorm"
	case FormatASTC4x4UnormSrgb:
		return "astc-4x4-unorm-srgb"
	case FormatASTC5x5Unorm:
		return "astc-5x5-unorm"
	case FormatASTC5x5UnormSrgb:
		return "astc-5x5-unorm-srgb"
	case FormatASTC6x6Unorm:
		return "astc-6x6-unorm"
	case FormatASTC6x6UnormSrgb:
		return "astc-6x6-unorm-srgb"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// IsCompressed reports whether the format is block-compressed.
func (f Format) IsCompressed() bool {
	return f.BlockDim() > 1
}

// BlockDim returns the side length in texels of one compressed block, or 1 for uncompressed formats.
func (f Format) BlockDim() int {
	switch f {
	case FormatASTC4x4Unorm, FormatASTC4x4UnormSrgb:
		return 4
	case FormatASTC5x5Unorm, FormatASTC5x5UnormSrgb:
		return 5
	case FormatASTC6x6Unorm, FormatASTC6x6UnormSrgb:
		return 6
	default:
		return 1
	}
}

// BytesPerBlock returns the size in bytes of one block (one texel for uncompressed formats).
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatRGBA8Unorm, FormatRGBA8UnormSrgb:
		return 4
	case FormatRGBA32Uint:
		return 16
	case FormatUndefined:
		return 0
	default:
		return 16
	}
}

// RowBytes returns the tightly packed size in bytes of one row of blocks for a texture of the given width.
//
// Parameters:
//   - width: texture width in texels
//
// Returns:
//   - int: bytes per block row
func (f Format) RowBytes(width int) int {
	dim := f.BlockDim()
	return (width + dim - 1) / dim * f.BytesPerBlock()
}

// Kind distinguishes persistent sampled textures from transient render targets.
type Kind int

const (
	// KindTexture2D is a persistent sampled texture such as an imported image or a compression result.
	KindTexture2D Kind = iota

	// KindRenderTexture is a GPU-written render target. Render textures passed as compression
	// sources are transient and released by the session once consumed.
	KindRenderTexture
)

// FilterMode is the sampling filter recorded on a texture for consumers that sample it.
type FilterMode int

const (
	// FilterBilinear samples with linear filtering. This is the default.
	FilterBilinear FilterMode = iota

	// FilterPoint samples the nearest texel.
	FilterPoint
)

// WrapMode is the addressing mode recorded on a texture for consumers that sample it.
type WrapMode int

const (
	// WrapClamp clamps coordinates to the edge texel. This is the default.
	WrapClamp WrapMode = iota

	// WrapRepeat tiles the texture.
	WrapRepeat
)

// Descriptor describes a texture to allocate.
type Descriptor struct {
	// Label is the debug name, also used to derive the name of compression outputs.
	Label string
	// Width and Height are the texture dimensions in texels.
	Width, Height int
	// Format is the texel format.
	Format Format
	// Kind marks the texture as a persistent texture or a transient render target.
	Kind Kind
	// RandomWrite allows the texture to be bound as a storage (random-write) target.
	RandomWrite bool
	// Readback allows the texture contents to be copied back to the CPU.
	Readback bool
	// Filter and Wrap are recorded for consumers that sample the texture.
	Filter FilterMode
	Wrap   WrapMode
}

// ErrInvalidDescriptor is wrapped by every Descriptor.Validate failure.
var ErrInvalidDescriptor = errors.New("texture: invalid descriptor")

// Validate checks that the descriptor can be allocated.
//
// Returns:
//   - error: an error wrapping ErrInvalidDescriptor, or nil
func (d Descriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %q has non-positive size %dx%d", ErrInvalidDescriptor, d.Label, d.Width, d.Height)
	}
	if d.Format == FormatUndefined {
		return fmt.Errorf("%w: %q has no format", ErrInvalidDescriptor, d.Label)
	}
	if d.Format.IsCompressed() {
		dim := d.Format.BlockDim()
		if d.Width%dim != 0 || d.Height%dim != 0 {
			return fmt.Errorf("%w: %q size %dx%d is not a multiple of the %dx%d block", ErrInvalidDescriptor, d.Label, d.Width, d.Height, dim, dim)
		}
		if d.RandomWrite {
			return fmt.Errorf("%w: %q compressed formats cannot be random-write", ErrInvalidDescriptor, d.Label)
		}
	}
	return nil
}

// Texture is a GPU texture handle. Implementations are provided by the renderer backend.
type Texture interface {
	// Descriptor returns the descriptor the texture was allocated from.
	Descriptor() Descriptor

	// Label returns the debug name of the texture.
	Label() string

	// Width returns the width in texels.
	Width() int

	// Height returns the height in texels.
	Height() int

	// Format returns the texel format.
	Format() Format

	// Kind returns whether the texture is persistent or a transient render target.
	Kind() Kind

	// RandomWrite reports whether the texture can be bound as a random-write target.
	RandomWrite() bool

	// Released reports whether Release has been called.
	Released() bool

	// Release frees the GPU resources. Calling Release more than once is a no-op.
	Release()
}

// Handle implements every Texture method except Release and is embedded by backend texture types.
type Handle struct {
	desc     Descriptor
	released atomic.Bool
}

// NewHandle creates a Handle for the given descriptor.
//
// Parameters:
//   - desc: the descriptor the texture was allocated from
//
// Returns:
//   - *Handle: the handle
func NewHandle(desc Descriptor) *Handle {
	return &Handle{desc: desc}
}

func (h *Handle) Descriptor() Descriptor {
	return h.desc
}

func (h *Handle) Label() string {
	return h.desc.Label
}

func (h *Handle) Width() int {
	return h.desc.Width
}

func (h *Handle) Height() int {
	return h.desc.Height
}

func (h *Handle) Format() Format {
	return h.desc.Format
}

func (h *Handle) Kind() Kind {
	return h.desc.Kind
}

func (h *Handle) RandomWrite() bool {
	return h.desc.RandomWrite
}

func (h *Handle) Released() bool {
	return h.released.Load()
}

// MarkReleased flags the handle as released.
//
// Returns:
//   - bool: true for the first call only, so backends free GPU objects exactly once
func (h *Handle) MarkReleased() bool {
	return h.released.CompareAndSwap(false, true)
}
