package astc

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/common"
)

// GridDimensions is the size of the compressed block grid, in blocks.
type GridDimensions struct {
	Width  int
	Height int
}

// ComputeGrid returns the block grid covering a source image. Each axis is rounded up so the
// grid always covers the whole source. Non-positive source sizes are not supported.
//
// Parameters:
//   - sourceWidth: source width in texels
//   - sourceHeight: source height in texels
//   - b: the block size
//
// Returns:
//   - GridDimensions: ceil(sourceWidth/b) by ceil(sourceHeight/b)
func ComputeGrid(sourceWidth, sourceHeight int, b BlockSize) GridDimensions {
	return GridDimensions{
		Width:  common.CeilDiv(sourceWidth, b.Dim()),
		Height: common.CeilDiv(sourceHeight, b.Dim()),
	}
}

// OutputSize returns the texel size of a compressed texture holding the grid. It is never smaller
// than the source and equals it when both source axes are multiples of the block size.
//
// Parameters:
//   - g: the block grid
//   - b: the block size
//
// Returns:
//   - int: padded width in texels
//   - int: padded height in texels
func OutputSize(g GridDimensions, b BlockSize) (int, int) {
	return g.Width * b.Dim(), g.Height * b.Dim()
}

// BlockCount returns the number of blocks in the grid.
func (g GridDimensions) BlockCount() int {
	return g.Width * g.Height
}

// ByteSize returns the size in bytes of the compressed payload for the grid.
func (g GridDimensions) ByteSize() int {
	return g.BlockCount() * BlockBytes
}

func (g GridDimensions) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
