package compressor

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

const intermediateLabel = "astc intermediate"

// IntermediateFormat is the format of the block textures: one texel holds the 16 bytes of one
// ASTC block.
const IntermediateFormat = texture.FormatRGBA32Uint

// intermediateCache keeps the RGBA32Uint texture the backends write blocks into. It is reused
// while the block grid stays the same and replaced, never resized, when it changes.
type intermediateCache struct {
	renderer renderer.Renderer
	texture  texture.Texture
	grid     astc.GridDimensions

	reallocations int
}

func newIntermediateCache(r renderer.Renderer) *intermediateCache {
	return &intermediateCache{renderer: r}
}

// ensure returns an intermediate texture of exactly g blocks. The old texture is released
// before its replacement is created. A cached texture released by someone else is recreated.
//
// Returns:
//   - texture.Texture: the intermediate texture
//   - bool: true if a new texture was created
//   - error: an error if creation fails; the cache is empty afterwards
func (c *intermediateCache) ensure(g astc.GridDimensions) (texture.Texture, bool, error) {
	if c.texture != nil && !c.texture.Released() && c.grid == g {
		return c.texture, false, nil
	}
	c.release()

	t, err := c.renderer.CreateTexture(texture.Descriptor{
		Label:       intermediateLabel,
		Width:       g.Width,
		Height:      g.Height,
		Format:      IntermediateFormat,
		Kind:        texture.KindRenderTexture,
		RandomWrite: true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("intermediate %s: %w", g, err)
	}
	c.texture, c.grid = t, g
	c.reallocations++
	common.Logger().Debug("intermediate allocated", "grid", g.String())
	return t, true, nil
}

// release drops the cached texture.
func (c *intermediateCache) release() {
	if c.texture != nil {
		c.texture.Release()
		c.texture = nil
	}
	c.grid = astc.GridDimensions{}
}
