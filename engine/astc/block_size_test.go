package astc

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

func TestBlockSizeKeywordsAndFormats(t *testing.T) {
	tests := []struct {
		b          BlockSize
		keyword    string
		linear     texture.Format
		srgb       texture.Format
		needTables bool
	}{
		{BlockSize4x4, "COMPRESS_4x4", texture.FormatASTC4x4Unorm, texture.FormatASTC4x4UnormSrgb, false},
		{BlockSize5x5, "COMPRESS_5x5", texture.FormatASTC5x5Unorm, texture.FormatASTC5x5UnormSrgb, false},
		{BlockSize6x6, "COMPRESS_6x6", texture.FormatASTC6x6Unorm, texture.FormatASTC6x6UnormSrgb, true},
	}
	for _, tt := range tests {
		t.Run(tt.b.String(), func(t *testing.T) {
			if got := tt.b.Keyword(); got != tt.keyword {
				t.Errorf("Keyword = %q, want %q", got, tt.keyword)
			}
			if got := tt.b.Format(false); got != tt.linear {
				t.Errorf("Format(false) = %v, want %v", got, tt.linear)
			}
			if got := tt.b.Format(true); got != tt.srgb {
				t.Errorf("Format(true) = %v, want %v", got, tt.srgb)
			}
			if got := tt.b.Format(true).BlockDim(); got != tt.b.Dim() {
				t.Errorf("format block dim = %d, want %d", got, tt.b.Dim())
			}
			if got := tt.b.NeedsQuantTables(); got != tt.needTables {
				t.Errorf("NeedsQuantTables = %v", got)
			}
		})
	}
}

func TestUnsupportedBlockSizePanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnsupportedBlockSize) {
			t.Fatalf("recovered %v, want ErrUnsupportedBlockSize", r)
		}
	}()
	BlockSize(8).Keyword()
}

func TestParseBlockSize(t *testing.T) {
	for in, want := range map[string]BlockSize{"4": BlockSize4x4, "5x5": BlockSize5x5, " 6X6 ": BlockSize6x6} {
		got, err := ParseBlockSize(in)
		if err != nil || got != want {
			t.Errorf("ParseBlockSize(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBlockSize("8x8"); !errors.Is(err, ErrUnsupportedBlockSize) {
		t.Errorf("ParseBlockSize(8x8) err = %v", err)
	}
}

func TestVoidExtentBlock(t *testing.T) {
	blk := VoidExtentBlock(0x12, 0x34, 0x56, 0x78)
	if blk[0] != 0xFFFFFDFC || blk[1] != 0xFFFFFFFF {
		t.Fatalf("header words %08x %08x", blk[0], blk[1])
	}
	if blk[2] != 0x34341212 || blk[3] != 0x78785656 {
		t.Fatalf("colour words %08x %08x", blk[2], blk[3])
	}
	c, ok := UnmarshalBlock(blk.Marshal()).VoidExtentColor()
	if !ok || c != [4]uint8{0x12, 0x34, 0x56, 0x78} {
		t.Fatalf("VoidExtentColor = %v, %v", c, ok)
	}
	if _, ok := (GPUBlock{1, 2, 3, 4}).VoidExtentColor(); ok {
		t.Fatal("non void-extent block decoded as constant colour")
	}
}

func TestGPUDestRect(t *testing.T) {
	got := NewGPUDestRect(100, 50).Vector()
	want := [4]float32{100, 50, 0.01, 0.02}
	if got != want {
		t.Fatalf("dest rect %v, want %v", got, want)
	}
}
