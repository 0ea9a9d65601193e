// Package compressor turns GPU textures into ASTC textures. A Session sizes and caches the
// intermediate block texture, selects the compute or raster backend once from the device
// capabilities and copies the encoded blocks into a texture of the native ASTC format.
package compressor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/profiler"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// session is the implementation of the Session interface.
type session struct {
	// mu is held for the whole of a Compress call. Compress only ever try-locks it.
	mu    sync.Mutex
	state atomic.Int32

	renderer renderer.Renderer
	cache    *intermediateCache
	selector *backendSelector
	released bool

	// Builder configuration
	blockSize       astc.BlockSize
	previewMode     PreviewMode
	previewActive   bool
	srgb            bool
	colorCorrection bool
	backendOverride *BackendKind
	computeProgram  computeProgramLoader
	rasterProgram   rasterProgramLoader
	fence           bool
	prewarm         bool
	profiler        *profiler.Profiler
	observer        func(State)
}

// Session compresses source textures into ASTC textures on one renderer.
//
// A session owns its intermediate texture and its backend. Calls are serialized: a call made
// while another is running fails with ErrSessionBusy instead of waiting.
type Session interface {
	// Compress encodes a source texture. The returned texture is owned by the caller and has the
	// source size rounded up to whole blocks. It holds native ASTC blocks, or the decoded RGBA8
	// colours when preview is active. On a device without ASTC textures the blocks are returned
	// in an IntermediateFormat texture with one texel per block instead. A source of
	// texture.KindRenderTexture is released once its blocks have been copied.
	//
	// Parameters:
	//   - source: the texture to compress
	//
	// Returns:
	//   - texture.Texture: the compressed texture
	//   - error: ErrSessionBusy, ErrSessionReleased, ErrInvalidSource, or an allocation, binding
	//     or copy error; no texture created by the call survives an error
	Compress(source texture.Texture) (texture.Texture, error)

	// State returns the phase of the running call, or StateIdle.
	State() State

	// BlockSize returns the block size of every texture the session produces.
	BlockSize() astc.BlockSize

	// PreviewActive reports whether Compress produces decoded previews.
	PreviewActive() bool

	// Backend returns the execution path selected at construction.
	Backend() BackendKind

	// Release frees the intermediate texture and the backend. It waits for a running call.
	Release()
}

var _ Session = &session{}

// NewSession creates a Session on a renderer and builds its backend, so program errors surface
// here rather than on the first call.
//
// Parameters:
//   - r: the renderer the session runs on
//   - options: functional options to configure the session
//
// Returns:
//   - Session: the session
//   - error: an error wrapping astc.ErrUnsupportedBlockSize, ErrComputeUnsupported,
//     ErrMissingProgram or ErrMissingEntryPoint
func NewSession(r renderer.Renderer, options ...SessionBuilderOption) (Session, error) {
	s := &session{
		renderer:        r,
		blockSize:       astc.BlockSize4x4,
		previewMode:     PreviewOff,
		srgb:            true,
		colorCorrection: true,
		computeProgram:  DefaultComputeProgram,
		rasterProgram:   DefaultRasterProgram,
		fence:           true,
	}
	for _, opt := range options {
		opt(s)
	}
	if !s.blockSize.Valid() {
		return nil, fmt.Errorf("new session: %w: %d", astc.ErrUnsupportedBlockSize, int(s.blockSize))
	}

	switch s.previewMode {
	case PreviewOn:
		s.previewActive = true
	case PreviewAuto:
		s.previewActive = !r.Capabilities().ASTCTextures
	}

	correct := r.ColorSpace() == renderer.ColorSpaceLinear && s.colorCorrection
	s.cache = newIntermediateCache(r)
	s.selector = newBackendSelector(r, s.backendOverride, s.computeProgram, s.rasterProgram, correct, s.prewarm)
	if _, err := s.selector.Select(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	common.Logger().Info("compression session ready",
		"block", s.blockSize.String(),
		"backend", s.selector.Kind().String(),
		"preview", s.previewActive,
		"srgb", s.srgb,
	)
	return s, nil
}

func (s *session) Compress(source texture.Texture) (texture.Texture, error) {
	if !s.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer s.mu.Unlock()

	if s.released {
		return nil, ErrSessionReleased
	}
	if source == nil || source.Released() || source.Width() <= 0 || source.Height() <= 0 {
		return nil, ErrInvalidSource
	}

	start := time.Now()
	defer s.setState(StateIdle)

	s.setState(StateConfiguring)
	grid := astc.ComputeGrid(source.Width(), source.Height(), s.blockSize)
	intermediate, reallocated, err := s.cache.ensure(grid)
	if err != nil {
		return nil, err
	}

	output, err := s.createOutput(source, grid)
	if err != nil {
		return nil, err
	}
	succeeded := false
	defer func() {
		if !succeeded {
			output.Release()
		}
	}()

	var preview texture.Texture
	if s.previewActive {
		preview, err = s.renderer.CreateTexture(texture.Descriptor{
			Label:       source.Label() + " decode preview",
			Width:       source.Width(),
			Height:      source.Height(),
			Format:      texture.FormatRGBA8Unorm,
			Kind:        texture.KindRenderTexture,
			RandomWrite: true,
		})
		if err != nil {
			return nil, fmt.Errorf("decode preview for %q: %w", source.Label(), err)
		}
		defer preview.Release()
	}

	s.setState(StateDispatching)
	backend, err := s.selector.Select()
	if err != nil {
		return nil, err
	}
	err = backend.Execute(ExecuteRequest{
		Source:        source,
		Intermediate:  intermediate,
		DecodePreview: preview,
		Grid:          grid,
		BlockSize:     s.blockSize,
	})
	if err != nil {
		return nil, fmt.Errorf("compress %q: %w", source.Label(), err)
	}

	s.setState(StateFinalizing)
	result := intermediate
	if preview != nil {
		result = preview
	}
	if err := s.renderer.CopyTexture(result, output); err != nil {
		return nil, fmt.Errorf("finalize %q: %w", source.Label(), err)
	}
	if source.Kind() == texture.KindRenderTexture {
		source.Release()
	}
	if s.fence {
		s.renderer.WaitIdle()
	}
	succeeded = true

	elapsed := time.Since(start)
	if s.profiler != nil {
		s.profiler.Record(profiler.Stats{
			Label:       output.Label(),
			Duration:    elapsed,
			Blocks:      grid.BlockCount(),
			Bytes:       grid.ByteSize(),
			Reallocated: reallocated,
		})
	}
	common.Logger().Debug("compressed",
		"label", output.Label(),
		"grid", grid.String(),
		"block", s.blockSize.String(),
		"backend", backend.Kind().String(),
		"elapsed", elapsed,
	)
	return output, nil
}

// createOutput allocates the texture the blocks are copied into: the native ASTC format, RGBA8
// when the decoded preview is returned instead, or a grid-sized RGBA32Uint block texture when the
// device cannot create ASTC textures.
func (s *session) createOutput(source texture.Texture, grid astc.GridDimensions) (texture.Texture, error) {
	width, height := astc.OutputSize(grid, s.blockSize)
	format, filter := texture.FormatRGBA8Unorm, texture.FilterBilinear
	switch {
	case s.previewActive:
	case s.renderer.Capabilities().ASTCTextures:
		format = s.blockSize.Format(s.srgb)
	default:
		width, height = grid.Width, grid.Height
		format, filter = IntermediateFormat, texture.FilterPoint
	}
	output, err := s.renderer.CreateTexture(texture.Descriptor{
		Label:  source.Label() + "_astc",
		Width:  width,
		Height: height,
		Format: format,
		Kind:   texture.KindTexture2D,
		Filter: filter,
		Wrap:   texture.WrapClamp,
	})
	if err != nil {
		return nil, fmt.Errorf("output for %q: %w", source.Label(), err)
	}
	return output, nil
}

func (s *session) setState(state State) {
	s.state.Store(int32(state))
	if s.observer != nil {
		s.observer(state)
	}
}

func (s *session) State() State {
	return State(s.state.Load())
}

func (s *session) BlockSize() astc.BlockSize {
	return s.blockSize
}

func (s *session) PreviewActive() bool {
	return s.previewActive
}

func (s *session) Backend() BackendKind {
	return s.selector.Kind()
}

func (s *session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.cache.release()
	s.selector.release()
}
