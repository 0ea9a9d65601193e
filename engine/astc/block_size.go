// Package astc holds the GPU-independent parts of ASTC compression: block sizes, block grid
// arithmetic, the 6x6 quantization tables, the .astc file container and its supercompression.
package astc

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// BlockBytes is the size of one compressed ASTC block regardless of its footprint.
const BlockBytes = 16

// BlockSize is the square footprint, in source texels, of one compressed block.
type BlockSize int

const (
	// BlockSize4x4 encodes 4x4 texels per block (8 bits per texel).
	BlockSize4x4 BlockSize = 4

	// BlockSize5x5 encodes 5x5 texels per block (5.12 bits per texel).
	BlockSize5x5 BlockSize = 5

	// BlockSize6x6 encodes 6x6 texels per block (3.56 bits per texel). It is the only size that
	// needs the quantization tables.
	BlockSize6x6 BlockSize = 6
)

// BlockSizes lists every supported block size in ascending order.
var BlockSizes = []BlockSize{BlockSize4x4, BlockSize5x5, BlockSize6x6}

// Valid reports whether b is one of the supported block sizes.
func (b BlockSize) Valid() bool {
	switch b {
	case BlockSize4x4, BlockSize5x5, BlockSize6x6:
		return true
	default:
		return false
	}
}

// Dim returns the block side length in texels.
func (b BlockSize) Dim() int {
	return int(b)
}

// String returns the footprint in "NxN" notation.
func (b BlockSize) String() string {
	return fmt.Sprintf("%dx%d", int(b), int(b))
}

// Keyword returns the program keyword selecting this block size. Panics wrapping
// ErrUnsupportedBlockSize for any other value.
//
// Returns:
//   - string: COMPRESS_4x4, COMPRESS_5x5 or COMPRESS_6x6
func (b BlockSize) Keyword() string {
	switch b {
	case BlockSize4x4:
		return "COMPRESS_4x4"
	case BlockSize5x5:
		return "COMPRESS_5x5"
	case BlockSize6x6:
		return "COMPRESS_6x6"
	default:
		panic(fmt.Errorf("%w: %d", ErrUnsupportedBlockSize, int(b)))
	}
}

// NeedsQuantTables reports whether the program needs the quantization tables for this block size.
func (b BlockSize) NeedsQuantTables() bool {
	return b == BlockSize6x6
}

// Format returns the native compressed texture format for this block size.
//
// Parameters:
//   - srgb: whether the texture stores sRGB-encoded colour
//
// Returns:
//   - texture.Format: the matching ASTC format
func (b BlockSize) Format(srgb bool) texture.Format {
	var linear, encoded texture.Format
	switch b {
	case BlockSize4x4:
		linear, encoded = texture.FormatASTC4x4Unorm, texture.FormatASTC4x4UnormSrgb
	case BlockSize5x5:
		linear, encoded = texture.FormatASTC5x5Unorm, texture.FormatASTC5x5UnormSrgb
	case BlockSize6x6:
		linear, encoded = texture.FormatASTC6x6Unorm, texture.FormatASTC6x6UnormSrgb
	default:
		panic(fmt.Errorf("%w: %d", ErrUnsupportedBlockSize, int(b)))
	}
	if srgb {
		return encoded
	}
	return linear
}

// BlockSizeKeywords returns the keywords of every supported block size, in ascending block order.
// Exactly one of them is enabled on a configured program.
//
// Returns:
//   - []string: the block-size keyword group
func BlockSizeKeywords() []string {
	keywords := make([]string, len(BlockSizes))
	for i, b := range BlockSizes {
		keywords[i] = b.Keyword()
	}
	return keywords
}

// ParseBlockSize parses "4", "4x4", "5x5" or "6x6".
//
// Parameters:
//   - s: the block size text
//
// Returns:
//   - BlockSize: the parsed block size
//   - error: an error wrapping ErrUnsupportedBlockSize if s names no supported size
func ParseBlockSize(s string) (BlockSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, b := range BlockSizes {
		if s == b.String() || s == fmt.Sprint(int(b)) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedBlockSize, s)
}
