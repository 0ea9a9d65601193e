package compressor

import (
	_ "embed"
	"sync"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
)

//go:embed assets/astc_compress.wgsl
var computeProgramSource string

//go:embed assets/astc_compress_raster.wgsl
var rasterProgramSource string

// Program entry points.
const (
	ComputeEntryPoint  = "CSCompress"
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Program variables bound by the backends.
const (
	PropSourceTexture      = "_CompressSourceTexture"
	PropSourceMipLevel     = "_CompressSourceTexture_MipLevel"
	PropResult             = "_Result"
	PropResultDecompressed = "_ResultDecompressed"
	PropDestRect           = "_DestRect"
	PropTextureSize        = "TextureSize"
)

// Program keywords besides the block-size group.
const (
	KeywordDecompressRGB = "DECOMPRESS_RGB"
	KeywordSRGB          = "GPU_COMPRESS_SRGB"
)

// RasterProgram is the vertex and fragment stage pair of the raster backend.
type RasterProgram struct {
	Vertex   shader.Shader
	Fragment shader.Shader
}

var (
	defaultComputeProgram = sync.OnceValues(func() (shader.Shader, error) {
		return shader.NewShaderFromSource("astc_compress", shader.ShaderTypeCompute, computeProgramSource)
	})
	defaultRasterProgram = sync.OnceValues(func() (*RasterProgram, error) {
		vs, err := shader.NewShaderFromSource("astc_compress_raster", shader.ShaderTypeVertex, rasterProgramSource)
		if err != nil {
			return nil, err
		}
		fs, err := shader.NewShaderFromSource("astc_compress_raster", shader.ShaderTypeFragment, rasterProgramSource)
		if err != nil {
			return nil, err
		}
		return &RasterProgram{Vertex: vs, Fragment: fs}, nil
	})
)

// DefaultComputeProgram returns the embedded compute program. The shader is built once per
// process and shared by every session; its variants are cached on first use.
//
// Returns:
//   - shader.Shader: the compute program
//   - error: an error if the embedded source has malformed directives
func DefaultComputeProgram() (shader.Shader, error) {
	return defaultComputeProgram()
}

// DefaultRasterProgram returns the embedded raster program, shared like DefaultComputeProgram.
//
// Returns:
//   - *RasterProgram: the vertex and fragment stages
//   - error: an error if the embedded source has malformed directives
func DefaultRasterProgram() (*RasterProgram, error) {
	return defaultRasterProgram()
}
