package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.SetNRGBA(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	data := FromImage("tile", src)
	if data.Width != 3 || data.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", data.Width, data.Height)
	}
	if len(data.Pixels) != 3*2*4 {
		t.Fatalf("len(Pixels) = %d, want %d", len(data.Pixels), 3*2*4)
	}
	got := data.Image().RGBAAt(2, 1)
	if got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v, want the bottom-right source pixel", got)
	}
}

func TestFromImageKeepsPackedRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	data := FromImage("rgba", src)
	if &data.Pixels[0] != &src.Pix[0] {
		t.Error("packed RGBA image was copied")
	}
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	data, err := DecodeImage("five", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if data.Name != "five" || data.Width != 5 || data.Height != 3 {
		t.Errorf("data = %s %dx%d", data.Name, data.Width, data.Height)
	}

	if _, err := DecodeImage("junk", bytes.NewReader([]byte("junk"))); err == nil {
		t.Error("decoded a stream that is not an image")
	}
}

func TestWritePNGCropsPaddedRows(t *testing.T) {
	// 4x4 padded readback holding a 3x2 image.
	const stride = 4 * 4
	pixels := make([]byte, stride*4)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	pixels[stride+2*4] = 0x11

	var buf bytes.Buffer
	if err := WritePNG(&buf, pixels, stride, 3, 2); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	got := color.NRGBAModel.Convert(img.At(2, 1)).(color.NRGBA)
	if got.R != 0x11 {
		t.Errorf("pixel (2,1) R = %#x, want 0x11", got.R)
	}

	if err := WritePNG(&buf, pixels[:8], stride, 3, 2); err == nil {
		t.Error("no error for short pixel data")
	}
}

func TestCeilDivAlignUp(t *testing.T) {
	divs := []struct{ n, d, want int }{
		{100, 6, 17}, {2048, 4, 512}, {1, 5, 1}, {0, 4, 0}, {12, 6, 2},
	}
	for _, tt := range divs {
		if got := CeilDiv(tt.n, tt.d); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.n, tt.d, got, tt.want)
		}
	}

	aligns := []struct{ alignment, value, want uint32 }{
		{256, 1, 256}, {256, 256, 256}, {256, 257, 512}, {0, 7, 7},
	}
	for _, tt := range aligns {
		if got := AlignUp(tt.alignment, tt.value); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.alignment, tt.value, got, tt.want)
		}
	}
}
