package renderer

import (
	"github.com/Carmen-Shannon/oxy-astc/engine/window"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithWindow attaches a window whose surface PresentTexture draws into. Without a window the
// renderer runs headless and PresentTexture is unavailable.
//
// Parameters:
//   - w: the window to present into
//
// Returns:
//   - RendererBuilderOption: a function that applies the window option to a renderer
func WithWindow(w window.Window) RendererBuilderOption {
	return func(r *renderer) {
		r.window = w
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithColorSpace sets the colour space images are uploaded and sampled in.
//
// Parameters:
//   - cs: ColorSpaceLinear (default) or ColorSpaceGamma
//
// Returns:
//   - RendererBuilderOption: a function that applies the colour space option to a renderer
func WithColorSpace(cs ColorSpace) RendererBuilderOption {
	return func(r *renderer) {
		r.colorSpace = cs
	}
}

// WithShaderValidation compiles every program variant with naga before creating its pipeline,
// so malformed programs fail with shader.ErrInvalidShader instead of a device error.
//
// Parameters:
//   - validate: true to validate variants
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithShaderValidation(validate bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderValidation = validate
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
