package astc

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUBlockSource holds the WGSL helpers shared by compression programs for packing 128-bit
// blocks into vec4<u32> texels. Programs pull it in with //@oxy:include astc_block.
//
//go:embed assets/astc_block.wgsl
var GPUBlockSource string

// GPUDestRect is the _DestRect uniform: source size and its reciprocal, used by programs to
// convert block coordinates to texel coordinates.
// Size: 16 bytes (one vec4<f32>).
type GPUDestRect struct {
	Width     float32 // offset 0
	Height    float32 // offset 4
	InvWidth  float32 // offset 8
	InvHeight float32 // offset 12
}

// NewGPUDestRect builds the uniform for a source of the given size.
//
// Parameters:
//   - width: source width in texels, must be positive
//   - height: source height in texels, must be positive
//
// Returns:
//   - GPUDestRect: (w, h, 1/w, 1/h)
func NewGPUDestRect(width, height int) GPUDestRect {
	return GPUDestRect{
		Width:     float32(width),
		Height:    float32(height),
		InvWidth:  1 / float32(width),
		InvHeight: 1 / float32(height),
	}
}

// Vector returns the uniform as a vec4.
func (g GPUDestRect) Vector() [4]float32 {
	return [4]float32{g.Width, g.Height, g.InvWidth, g.InvHeight}
}

// GPUTextureSize is the TextureSize uniform: source size in xy, zw unused.
// Size: 16 bytes (one vec4<f32>).
type GPUTextureSize struct {
	Width  float32
	Height float32
}

// Vector returns the uniform as a vec4 with zero zw.
func (g GPUTextureSize) Vector() [4]float32 {
	return [4]float32{g.Width, g.Height, 0, 0}
}

// GPUBlock is one 128-bit ASTC block as the four little-endian words stored in an RGBA32Uint texel.
type GPUBlock [4]uint32

const (
	voidExtentLo uint32 = 0xFFFFFDFC
	voidExtentHi uint32 = 0xFFFFFFFF
)

// VoidExtentBlock returns the LDR constant-colour block for an 8-bit colour, bit-identical to
// astc_void_extent in GPUBlockSource.
//
// Parameters:
//   - r, g, b, a: the 8-bit colour channels
//
// Returns:
//   - GPUBlock: the encoded block
func VoidExtentBlock(r, g, b, a uint8) GPUBlock {
	return GPUBlock{
		voidExtentLo,
		voidExtentHi,
		uint32(r)*257 | uint32(g)*257<<16,
		uint32(b)*257 | uint32(a)*257<<16,
	}
}

// VoidExtentColor decodes the colour of an LDR void-extent block.
//
// Returns:
//   - [4]uint8: the RGBA colour rounded to 8 bits
//   - bool: false if the block is not an LDR void-extent block
func (g GPUBlock) VoidExtentColor() ([4]uint8, bool) {
	if g[0] != voidExtentLo || g[1] != voidExtentHi {
		return [4]uint8{}, false
	}
	return [4]uint8{
		uint8(g[2] & 0xFFFF >> 8),
		uint8(g[2] >> 24),
		uint8(g[3] & 0xFFFF >> 8),
		uint8(g[3] >> 24),
	}, true
}

// Marshal serializes the block into the 16 bytes stored in .astc files.
//
// Returns:
//   - []byte: 16-byte buffer
func (g GPUBlock) Marshal() []byte {
	buf := make([]byte, BlockBytes)
	for i, w := range g {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], w)
	}
	return buf
}

// UnmarshalBlock reads one block from the first 16 bytes of data.
func UnmarshalBlock(data []byte) GPUBlock {
	_ = data[BlockBytes-1]
	var g GPUBlock
	for i := range g {
		g[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return g
}

// MarshalFloats serializes a float32 slice into the little-endian layout of a WGSL array<f32, N>.
//
// Parameters:
//   - values: the array elements
//
// Returns:
//   - []byte: 4*len(values) bytes
func MarshalFloats(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}
