package engine

import (
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, every compression call is recorded and summarized in the log
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWorkers sets the number of goroutines decoding source images. Defaults to 4.
//
// Parameters:
//   - n: the worker count; values below 1 use a single worker
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.workers = n
	}
}

// WithSupercompression wraps every written .astc file in a lossless codec.
//
// Parameters:
//   - codec: astc.CodecNone, astc.CodecZstd or astc.CodecLZ4
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSupercompression(codec astc.Codec) EngineBuilderOption {
	return func(e *engine) {
		e.codec = codec
	}
}

// WithOutputDir writes results into dir instead of next to their sources.
//
// Parameters:
//   - dir: the output directory, created on first write
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOutputDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.outputDir = dir
	}
}

// WithWindow opens the results in a preview window. The engine presents into the window's
// surface and keeps every compressed texture for Run.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer runs the engine on an existing renderer. The engine does not release it.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions passes options to the renderer the engine creates.
// Ignored when WithRenderer is used.
//
// Parameters:
//   - options: renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithSessionOptions passes options to the compression session.
//
// Parameters:
//   - options: session options such as compressor.WithBlockSize
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSessionOptions(options ...compressor.SessionBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.sessionOptions = append(e.sessionOptions, options...)
	}
}
