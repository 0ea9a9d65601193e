// Command oxy-astc compresses images into ASTC textures on the GPU.
//
//	oxy-astc [flags] image...
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/window"
)

func main() {
	var (
		block    string
		preview  string
		backend  string
		srgb     bool
		super    string
		outDir   string
		workers  int
		software bool
		validate bool
		gamma    bool
		profile  bool
		view     bool
		verbose  bool
	)
	flag.StringVar(&block, "block", "4x4", "ASTC block footprint: 4x4|5x5|6x6")
	flag.StringVar(&preview, "preview", "off", "write the decoded colours as PNG instead of ASTC: off|on|auto")
	flag.StringVar(&backend, "backend", "auto", "execution path: auto|compute|raster")
	flag.BoolVar(&srgb, "srgb", true, "store sRGB-encoded colour")
	flag.StringVar(&super, "super", "none", "supercompression of written files: none|zstd|lz4")
	flag.StringVar(&outDir, "out", "", "output directory (default: next to each input)")
	flag.IntVar(&workers, "workers", 4, "image decode workers")
	flag.BoolVar(&software, "software", false, "force the software (fallback) adapter")
	flag.BoolVar(&validate, "validate", false, "compile every program variant with naga before use")
	flag.BoolVar(&gamma, "gamma", false, "sample sources as stored instead of in linear colour space")
	flag.BoolVar(&profile, "profile", false, "log throughput and memory statistics")
	flag.BoolVar(&view, "view", false, "show the results in a window (arrows cycle, drop files to add, Esc quits)")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 && !view {
		fmt.Fprintln(os.Stderr, "usage: oxy-astc [-block 4x4] [-preview off] [-backend auto] [-super none] [-out dir] [-view] image...")
		os.Exit(2)
	}

	blockSize, err := astc.ParseBlockSize(block)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	previewMode, err := compressor.ParsePreviewMode(preview)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	codec, err := astc.ParseCodec(super)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	colorSpace := renderer.ColorSpaceLinear
	if gamma {
		colorSpace = renderer.ColorSpaceGamma
	}

	sessionOptions := []compressor.SessionBuilderOption{
		compressor.WithBlockSize(blockSize),
		compressor.WithPreviewMode(previewMode),
		compressor.WithSRGB(srgb),
	}
	if backend != "auto" {
		kind, err := compressor.ParseBackendKind(backend)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		sessionOptions = append(sessionOptions, compressor.WithBackend(kind))
	}

	options := []engine.EngineBuilderOption{
		engine.WithWorkers(workers),
		engine.WithSupercompression(codec),
		engine.WithOutputDir(outDir),
		engine.WithProfiling(profile),
		engine.WithRendererOptions(
			renderer.WithForceSoftwareRenderer(software),
			renderer.WithShaderValidation(validate),
			renderer.WithColorSpace(colorSpace),
		),
		engine.WithSessionOptions(sessionOptions...),
	}
	if view {
		options = append(options,
			engine.WithWindow(window.NewWindow(window.WithTitle("oxy-astc"))),
			engine.WithRendererOptions(renderer.WithPresentMode(renderer.PresentModeVSync)),
		)
	}

	eng, err := engine.NewEngine(options...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer eng.Release()

	status := 0
	if flag.NArg() > 0 {
		results, err := eng.CompressFiles(flag.Args())
		for _, r := range results {
			fmt.Println(r.Path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
		}
	}

	if view {
		if err := eng.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
		}
	}
	if status != 0 {
		eng.Release()
		os.Exit(status)
	}
}
