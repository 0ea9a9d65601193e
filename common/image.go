package common

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage opens and decodes an image file into RGBA staging data.
// PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - path: the image file to read
//
// Returns:
//   - *TextureStagingData: the decoded pixels, named after the file without its extension
//   - error: error if the file cannot be opened or decoded
func LoadImage(path string) (*TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := DecodeImage(name, f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return data, nil
}

// DecodeImage decodes an image stream of any registered format into RGBA staging data.
//
// Parameters:
//   - name: the name given to the staging data
//   - r: the encoded image stream
//
// Returns:
//   - *TextureStagingData: the decoded pixels
//   - error: error if the stream cannot be decoded
func DecodeImage(name string, r io.Reader) (*TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(name, img), nil
}

// FromImage converts any image.Image into tightly packed RGBA staging data.
// Images that are already *image.RGBA with a zero origin and no row padding are not copied.
//
// Parameters:
//   - name: the name given to the staging data
//   - img: the source image
//
// Returns:
//   - *TextureStagingData: the converted pixels
func FromImage(name string, img image.Image) *TextureStagingData {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) || rgba.Stride != width*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &TextureStagingData{
		Name:   name,
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}
}

// Image wraps the staging pixels in an *image.RGBA without copying.
//
// Returns:
//   - *image.RGBA: an image sharing the staging pixel memory
func (t *TextureStagingData) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Pixels,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}
}

// WritePNG encodes RGBA8 pixels as a PNG image. Pixels outside width x height are ignored, so a
// padded readback can be cropped to the source size by passing the source dimensions.
//
// Parameters:
//   - w: destination stream
//   - pixels: RGBA8 pixels laid out with the given stride
//   - stride: bytes per row in pixels
//   - width: image width to encode
//   - height: image height to encode
//
// Returns:
//   - error: error if the dimensions exceed the pixel data or encoding fails
func WritePNG(w io.Writer, pixels []byte, stride, width, height int) error {
	if stride < width*4 || len(pixels) < stride*(height-1)+width*4 {
		return fmt.Errorf("pixel data too small for %dx%d image with stride %d", width, height, stride)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := pixels[y*stride : y*stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			img.SetNRGBA(x, y, color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
		}
	}
	return png.Encode(w, img)
}
