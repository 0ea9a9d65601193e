package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
	"github.com/Carmen-Shannon/oxy-astc/engine/profiler"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-astc/engine/window"
)

// decodeQueueSize bounds the number of decode tasks queued on the worker pool at once.
const decodeQueueSize = 256

// engine implements the Engine interface.
// Decodes sources on the worker pool and drives the GPU session from the calling goroutine.
type engine struct {
	mu sync.Mutex

	renderer     renderer.Renderer
	ownsRenderer bool
	session      compressor.Session
	pool         worker.DynamicWorkerPool
	window       window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	// outputs holds the textures shown by the viewer, oldest first.
	outputs []Result
	current int

	workers         int
	codec           astc.Codec
	outputDir       string
	keepTextures    bool
	rendererOptions []renderer.RendererBuilderOption
	sessionOptions  []compressor.SessionBuilderOption
	released        bool
}

// Result describes one compressed source.
type Result struct {
	// Source is the path of the decoded image, or the staging data name for in-memory sources.
	Source string

	// Path is the file the result was written to. Empty when nothing was written.
	Path string

	// Width and Height are the source size in texels.
	Width, Height int

	// Texture is the compressed texture. It is only kept for the viewer and is nil otherwise.
	Texture texture.Texture
}

// Engine is the entry point for batch compression. It owns the renderer, the compression session
// and the pool decoding source images.
type Engine interface {
	// Renderer returns the renderer the session runs on.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Session returns the compression session.
	//
	// Returns:
	//   - compressor.Session: the session
	Session() compressor.Session

	// Window returns the preview window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Compress uploads decoded pixels and compresses them.
	//
	// Parameters:
	//   - data: the decoded source image
	//
	// Returns:
	//   - texture.Texture: the compressed texture, owned by the caller
	//   - error: error if the upload or the compression fails
	Compress(data common.TextureStagingData) (texture.Texture, error)

	// CompressFiles decodes the image files in parallel, compresses them one after the other and
	// writes each result next to its source or into the output directory. A failing file does
	// not stop the batch.
	//
	// Parameters:
	//   - paths: the image files to compress
	//
	// Returns:
	//   - []Result: one result per file that was written, in input order
	//   - error: the joined errors of every failing file
	CompressFiles(paths []string) ([]Result, error)

	// Run shows the compressed textures in the window until it is closed. The arrow keys cycle
	// through the results and files dropped onto the window are compressed and shown.
	//
	// Returns:
	//   - error: error if the engine has no window
	Run() error

	// Release frees the session, every kept texture and the renderer if the engine created it.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options. A renderer is created for
// the window, or headless, unless one is passed with WithRenderer.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the compression session cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		workers: 4,
		codec:   astc.CodecNone,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		if e.window != nil {
			e.rendererOptions = append(e.rendererOptions, renderer.WithWindow(e.window))
		}
		e.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU, e.rendererOptions...)
		e.ownsRenderer = true
	}

	if e.profilingEnabled {
		e.profiler = profiler.NewProfiler()
		e.sessionOptions = append(e.sessionOptions, compressor.WithProfiler(e.profiler))
	}
	if e.window != nil {
		// Dropped files are compressed inside the message loop.
		e.sessionOptions = append(e.sessionOptions, compressor.WithPrewarm(true))
		e.keepTextures = true
	}

	session, err := compressor.NewSession(e.renderer, e.sessionOptions...)
	if err != nil {
		if e.ownsRenderer {
			e.renderer.Release()
		}
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.session = session
	e.pool = worker.NewDynamicWorkerPool(max(e.workers, 1), decodeQueueSize, 1*time.Second)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.renderer.Resize(width, height)
		})
	}
	return e, nil
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Session() compressor.Session {
	return e.session
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Compress(data common.TextureStagingData) (texture.Texture, error) {
	source, err := e.renderer.UploadTexture(data)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", data.Name, err)
	}
	defer source.Release()

	out, err := e.session.Compress(source)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return
	}
	e.released = true

	for _, r := range e.outputs {
		if r.Texture != nil {
			r.Texture.Release()
		}
	}
	e.outputs = nil
	e.session.Release()
	if e.ownsRenderer {
		e.renderer.Release()
	}
	if e.profiler != nil {
		calls, bytes := e.profiler.Totals()
		common.Logger().Info("engine released", "compressed", calls, "MB", float64(bytes)/1024/1024)
	}
}
