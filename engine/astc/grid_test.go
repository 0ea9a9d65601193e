package astc

import "testing"

func TestComputeGridScenarios(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		block          BlockSize
		wantGrid       GridDimensions
		wantW, wantH   int
	}{
		{"100x100 at 6x6 pads to 102", 100, 100, BlockSize6x6, GridDimensions{17, 17}, 102, 102},
		{"2048x2048 at 4x4 is exact", 2048, 2048, BlockSize4x4, GridDimensions{512, 512}, 2048, 2048},
		{"1x1 at 5x5", 1, 1, BlockSize5x5, GridDimensions{1, 1}, 5, 5},
		{"non square", 37, 11, BlockSize4x4, GridDimensions{10, 3}, 40, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ComputeGrid(tt.width, tt.height, tt.block)
			if g != tt.wantGrid {
				t.Fatalf("ComputeGrid = %v, want %v", g, tt.wantGrid)
			}
			w, h := OutputSize(g, tt.block)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("OutputSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestComputeGridProperties(t *testing.T) {
	for _, b := range BlockSizes {
		for w := 1; w <= 70; w++ {
			for h := 1; h <= 70; h += 7 {
				g := ComputeGrid(w, h, b)
				wantW := (w + b.Dim() - 1) / b.Dim()
				wantH := (h + b.Dim() - 1) / b.Dim()
				if g.Width != wantW || g.Height != wantH {
					t.Fatalf("%v %dx%d: grid %v, want %dx%d", b, w, h, g, wantW, wantH)
				}
				if g.Width < 1 || g.Height < 1 {
					t.Fatalf("%v %dx%d: empty grid %v", b, w, h, g)
				}

				ow, oh := OutputSize(g, b)
				if ow < w || oh < h {
					t.Fatalf("%v %dx%d: output %dx%d smaller than source", b, w, h, ow, oh)
				}
				exact := w%b.Dim() == 0 && h%b.Dim() == 0
				if (ow == w && oh == h) != exact {
					t.Fatalf("%v %dx%d: output %dx%d, exact=%v", b, w, h, ow, oh, exact)
				}
			}
		}
	}
}

func TestGridByteSize(t *testing.T) {
	g := GridDimensions{Width: 17, Height: 17}
	if got := g.BlockCount(); got != 289 {
		t.Fatalf("BlockCount = %d, want 289", got)
	}
	if got := g.ByteSize(); got != 289*16 {
		t.Fatalf("ByteSize = %d, want %d", got, 289*16)
	}
	if got := g.String(); got != "17x17" {
		t.Fatalf("String = %q", got)
	}
}
