package compressor

import (
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/profiler"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
)

// SessionBuilderOption is a functional option for configuring a session.
// Use the With* functions to create options.
type SessionBuilderOption func(*session)

// WithBlockSize sets the block size of every texture the session produces. Defaults to 4x4.
//
// Parameters:
//   - b: the block size; NewSession rejects unsupported values
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithBlockSize(b astc.BlockSize) SessionBuilderOption {
	return func(s *session) {
		s.blockSize = b
	}
}

// WithPreviewMode sets whether the session returns decoded previews. Defaults to PreviewOff.
//
// Parameters:
//   - mode: PreviewOff, PreviewOn or PreviewAuto
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithPreviewMode(mode PreviewMode) SessionBuilderOption {
	return func(s *session) {
		s.previewMode = mode
	}
}

// WithSRGB selects the sRGB or linear variant of the output ASTC format. Defaults to sRGB.
//
// Parameters:
//   - srgb: true for *_UnormSrgb output formats
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithSRGB(srgb bool) SessionBuilderOption {
	return func(s *session) {
		s.srgb = srgb
	}
}

// WithColorSpaceCorrection sets whether programs re-encode linear samples to sRGB before
// compressing when the renderer works in the linear colour space. Defaults to true.
//
// Parameters:
//   - correct: whether to apply the correction
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithColorSpaceCorrection(correct bool) SessionBuilderOption {
	return func(s *session) {
		s.colorCorrection = correct
	}
}

// WithBackend forces an execution path instead of choosing it from the device capabilities.
//
// Parameters:
//   - kind: BackendCompute or BackendRaster
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithBackend(kind BackendKind) SessionBuilderOption {
	return func(s *session) {
		s.backendOverride = &kind
	}
}

// WithComputeProgram replaces the embedded compute program. A nil program makes NewSession fail
// with ErrMissingProgram when the compute backend is selected.
//
// Parameters:
//   - program: a compute shader with a CSCompress entry point
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithComputeProgram(program shader.Shader) SessionBuilderOption {
	return func(s *session) {
		s.computeProgram = func() (shader.Shader, error) {
			return program, nil
		}
	}
}

// WithRasterProgram replaces the embedded raster program. A nil program makes NewSession fail
// with ErrMissingProgram when the raster backend is selected.
//
// Parameters:
//   - program: vertex and fragment shaders with vs_main and fs_main entry points
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithRasterProgram(program *RasterProgram) SessionBuilderOption {
	return func(s *session) {
		s.rasterProgram = func() (*RasterProgram, error) {
			return program, nil
		}
	}
}

// WithCompletionFence sets whether Compress waits for the GPU after the final copy. Defaults
// to true. Callers that disable it must drain the queue themselves before releasing the session.
//
// Parameters:
//   - fence: whether to wait
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithCompletionFence(fence bool) SessionBuilderOption {
	return func(s *session) {
		s.fence = fence
	}
}

// WithPrewarm creates the pipeline of every program variant when the session is built.
//
// Parameters:
//   - prewarm: whether to create all pipelines up front
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithPrewarm(prewarm bool) SessionBuilderOption {
	return func(s *session) {
		s.prewarm = prewarm
	}
}

// WithProfiler records the statistics of every successful call.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SessionBuilderOption {
	return func(s *session) {
		s.profiler = p
	}
}

// WithStateObserver registers a function called on every state transition of a call, on the
// calling goroutine.
//
// Parameters:
//   - observer: the function receiving each new state
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithStateObserver(observer func(State)) SessionBuilderOption {
	return func(s *session) {
		s.observer = observer
	}
}
