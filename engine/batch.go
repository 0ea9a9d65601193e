package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// decoded is the outcome of one decode task.
type decoded struct {
	data *common.TextureStagingData
	err  error
}

// decodeAll decodes the image files on the worker pool. Tasks are submitted in chunks no larger
// than the pool queue.
//
// Parameters:
//   - paths: the image files
//
// Returns:
//   - []decoded: one entry per path, in input order
func (e *engine) decodeAll(paths []string) []decoded {
	results := make([]decoded, len(paths))
	for start := 0; start < len(paths); start += decodeQueueSize {
		end := min(start+decodeQueueSize, len(paths))

		var wg sync.WaitGroup
		wg.Add(end - start)
		for i := start; i < end; i++ {
			e.pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					data, err := common.LoadImage(paths[i])
					results[i] = decoded{data: data, err: err}
					return nil, err
				},
			})
		}
		wg.Wait()
	}
	return results
}

func (e *engine) CompressFiles(paths []string) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for i, d := range e.decodeAll(paths) {
		if d.err != nil {
			errs = append(errs, d.err)
			continue
		}
		r, err := e.compressFile(paths[i], d.data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", paths[i], err))
			continue
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}

// compressFile compresses one decoded image and writes the result. With a viewer the texture is
// kept once the file is written; it is released on every other path.
func (e *engine) compressFile(path string, data *common.TextureStagingData) (Result, error) {
	out, err := e.Compress(*data)
	if err != nil {
		return Result{}, err
	}
	r := Result{Source: path, Width: int(data.Width), Height: int(data.Height)}
	kept := false
	defer func() {
		if !kept {
			out.Release()
		}
	}()

	payload, err := e.renderer.ReadTexture(out)
	if err != nil {
		return Result{}, fmt.Errorf("read back: %w", err)
	}

	dest := e.outputPath(path, data.Name, out.Format())
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return Result{}, err
	}
	if holdsBlocks(out.Format()) {
		header := astc.NewHeader(e.session.BlockSize(), r.Width, r.Height)
		err = astc.WriteFile(f, header, payload, e.codec)
	} else {
		err = common.WritePNG(f, payload, out.Format().RowBytes(out.Width()), r.Width, r.Height)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return Result{}, fmt.Errorf("write %s: %w", dest, err)
	}

	r.Path = dest
	if e.keepTextures {
		r.Texture = out
		kept = true
		e.mu.Lock()
		e.outputs = append(e.outputs, r)
		e.current = len(e.outputs) - 1
		e.mu.Unlock()
	}
	common.Logger().Info("wrote", "source", path, "dest", dest, "block", e.session.BlockSize().String(), "bytes", len(payload))
	return r, nil
}

// holdsBlocks reports whether a compressed texture of the format holds ASTC blocks rather than
// decoded colours.
func holdsBlocks(format texture.Format) bool {
	return format.IsCompressed() || format == compressor.IntermediateFormat
}

// outputPath returns where the result of a source is written: next to the source, or in the
// output directory. Previews are written as PNG.
func (e *engine) outputPath(source, name string, format texture.Format) string {
	dir := filepath.Dir(source)
	if e.outputDir != "" {
		dir = e.outputDir
	}
	if !holdsBlocks(format) {
		return filepath.Join(dir, name+"_preview.png")
	}
	return filepath.Join(dir, name+e.codec.Extension())
}
