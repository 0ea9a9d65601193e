package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how presented textures are delivered to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ColorSpace is the colour space the renderer works in. In the linear colour space images are
// uploaded as sRGB textures, so programs sample linear values and must convert back to gamma
// before writing gamma-encoded data into an integer target.
type ColorSpace int

const (
	// ColorSpaceLinear samples sRGB images as linear values. This is the default.
	ColorSpaceLinear ColorSpace = iota

	// ColorSpaceGamma samples images as stored.
	ColorSpaceGamma
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLinear:
		return "linear"
	case ColorSpaceGamma:
		return "gamma"
	default:
		return "unknown"
	}
}

// Capabilities describes what the active device supports.
type Capabilities struct {
	// ComputeShaders is false on downlevel adapters that expose no compute workgroups.
	ComputeShaders bool
	// ASTCTextures reports whether ASTC formats can be created and sampled.
	ASTCTextures bool
	// MaxTextureDimension is the largest width or height of a 2D texture.
	MaxTextureDimension int
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
