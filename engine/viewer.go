package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/compressor"
)

// ErrNoWindow is returned by Run on an engine created without a window.
var ErrNoWindow = errors.New("engine: no window")

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}

	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyRight:
			e.step(1)
		case common.KeyLeft:
			e.step(-1)
		}
	})
	e.window.SetDropCallback(func(paths []string) {
		if _, err := e.CompressFiles(paths); err != nil {
			common.Logger().Error("compress dropped files", "err", err)
		}
		e.updateTitle()
	})
	e.window.SetUpdateCallback(e.present)

	e.updateTitle()
	e.window.ProcessMessages()
	return nil
}

// step moves the shown result by delta, wrapping around.
func (e *engine) step(delta int) {
	e.mu.Lock()
	if n := len(e.outputs); n > 0 {
		e.current = ((e.current+delta)%n + n) % n
	}
	e.mu.Unlock()
	e.updateTitle()
}

// present draws the shown result into the window.
func (e *engine) present() {
	e.mu.Lock()
	if len(e.outputs) == 0 {
		e.mu.Unlock()
		return
	}
	tex := e.outputs[e.current].Texture
	e.mu.Unlock()
	// Raw block textures hold no colours to show.
	if tex.Format() == compressor.IntermediateFormat {
		return
	}

	if err := e.renderer.PresentTexture(tex); err != nil {
		common.Logger().Warn("present", "label", tex.Label(), "err", err)
	}
}

func (e *engine) updateTitle() {
	if e.window == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.outputs) == 0 {
		e.window.SetTitle("oxy-astc: drop images to compress")
		return
	}
	r := e.outputs[e.current]
	e.window.SetTitle(fmt.Sprintf("oxy-astc: %s %dx%d %s (%d/%d)",
		filepath.Base(r.Source), r.Width, r.Height, r.Texture.Format(), e.current+1, len(e.outputs)))
}
