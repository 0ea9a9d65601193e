package compressor

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// BackendKind names one of the two execution paths of the compressor.
type BackendKind int

const (
	// BackendCompute dispatches the compute program over the block grid.
	BackendCompute BackendKind = iota

	// BackendRaster draws a full-screen triangle into the intermediate with the raster program.
	BackendRaster
)

func (k BackendKind) String() string {
	switch k {
	case BackendCompute:
		return "compute"
	case BackendRaster:
		return "raster"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

// ParseBackendKind parses "compute" or "raster".
//
// Parameters:
//   - s: the backend name
//
// Returns:
//   - BackendKind: the parsed kind
//   - error: an error for any other name
func ParseBackendKind(s string) (BackendKind, error) {
	switch s {
	case BackendCompute.String():
		return BackendCompute, nil
	case BackendRaster.String():
		return BackendRaster, nil
	default:
		return 0, fmt.Errorf("compressor: unknown backend %q", s)
	}
}

// ExecuteRequest holds the textures of one compression call.
type ExecuteRequest struct {
	// Source is the texture being compressed.
	Source texture.Texture

	// Intermediate receives one RGBA32Uint texel per block.
	Intermediate texture.Texture

	// DecodePreview receives the decoded colours at the source size. Nil when preview is off.
	DecodePreview texture.Texture

	Grid      astc.GridDimensions
	BlockSize astc.BlockSize
}

// Backend is one execution path of the compressor. Backends hold program state only: the
// textures of a request are owned by the session.
type Backend interface {
	// Kind returns which execution path this is.
	Kind() BackendKind

	// Configure sets the block size and preview keywords on the program.
	//
	// Parameters:
	//   - b: the block size
	//   - preview: whether the program writes the decoded colours
	Configure(b astc.BlockSize, preview bool)

	// Execute configures the program for the request and submits it.
	//
	// Parameters:
	//   - req: the textures and grid of the call
	//
	// Returns:
	//   - error: an error from binding or submission
	Execute(req ExecuteRequest) error

	// Release frees the program state.
	Release()
}

// backendSelector picks the execution path once, from the device capabilities or an override,
// and builds the backend on first use.
type backendSelector struct {
	renderer renderer.Renderer
	kind     BackendKind
	err      error

	computeProgram computeProgramLoader
	rasterProgram  rasterProgramLoader
	srgb           bool
	prewarm        bool

	backend Backend
}

// computeProgramLoader and rasterProgramLoader defer loading the programs until the selected
// backend needs them.
type (
	computeProgramLoader func() (shader.Shader, error)
	rasterProgramLoader  func() (*RasterProgram, error)
)

func newBackendSelector(r renderer.Renderer, override *BackendKind, compute computeProgramLoader, raster rasterProgramLoader, srgb, prewarm bool) *backendSelector {
	s := &backendSelector{
		renderer:       r,
		computeProgram: compute,
		rasterProgram:  raster,
		srgb:           srgb,
		prewarm:        prewarm,
	}

	computeShaders := r.Capabilities().ComputeShaders
	switch {
	case override == nil && computeShaders:
		s.kind = BackendCompute
	case override == nil:
		s.kind = BackendRaster
	default:
		s.kind = *override
		if s.kind == BackendCompute && !computeShaders {
			s.err = ErrComputeUnsupported
		}
	}
	return s
}

// Kind returns the selected execution path. It never changes for the selector's lifetime.
func (s *backendSelector) Kind() BackendKind {
	return s.kind
}

// Select returns the backend of the selected kind, building it on the first call.
//
// Returns:
//   - Backend: the backend
//   - error: ErrComputeUnsupported, ErrMissingProgram or ErrMissingEntryPoint
func (s *backendSelector) Select() (Backend, error) {
	if s.backend != nil {
		return s.backend, nil
	}
	if s.err != nil {
		return nil, s.err
	}

	var (
		b   Backend
		err error
	)
	switch s.kind {
	case BackendCompute:
		var program shader.Shader
		if program, err = s.computeProgram(); err == nil {
			b, err = newComputeBackend(s.renderer, program, s.srgb)
		}
	case BackendRaster:
		var program *RasterProgram
		if program, err = s.rasterProgram(); err == nil {
			b, err = newRasterBackend(s.renderer, program, s.srgb)
		}
	default:
		err = fmt.Errorf("compressor: unknown backend %s", s.kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", s.kind, err)
	}

	if s.prewarm {
		if err := b.(preparer).prepare(); err != nil {
			b.Release()
			return nil, fmt.Errorf("%s backend: %w", s.kind, err)
		}
	}

	s.backend = b
	common.Logger().Info("compression backend ready", "backend", s.kind.String(), "srgb", s.srgb)
	return b, nil
}

// preparer is implemented by backends that can create every pipeline variant ahead of use.
type preparer interface {
	prepare() error
}

func (s *backendSelector) release() {
	if s.backend != nil {
		s.backend.Release()
		s.backend = nil
	}
}
