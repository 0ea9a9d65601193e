package renderer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

func desc(w, h int, f texture.Format) texture.Descriptor {
	return texture.Descriptor{Label: "t", Width: w, Height: h, Format: f}
}

func TestPlanCopy(t *testing.T) {
	tests := []struct {
		name    string
		src     texture.Descriptor
		dst     texture.Descriptor
		want    copyPlan
		wantErr bool
	}{
		{"same format", desc(64, 32, texture.FormatRGBA8Unorm), desc(64, 32, texture.FormatRGBA8Unorm), copyDirect, false},
		{"srgb variant", desc(64, 32, texture.FormatRGBA8Unorm), desc(64, 32, texture.FormatRGBA8UnormSrgb), copyDirect, false},
		{"into larger padded texture", desc(30, 17, texture.FormatRGBA8Unorm), desc(32, 20, texture.FormatRGBA8Unorm), copyDirect, false},
		{"source larger than destination", desc(64, 32, texture.FormatRGBA8Unorm), desc(32, 32, texture.FormatRGBA8Unorm), 0, true},
		{"blocks into astc 4x4", desc(16, 8, texture.FormatRGBA32Uint), desc(64, 32, texture.FormatASTC4x4UnormSrgb), copyStaged, false},
		{"blocks into astc 6x6", desc(11, 6, texture.FormatRGBA32Uint), desc(66, 36, texture.FormatASTC6x6Unorm), copyStaged, false},
		{"grid mismatch", desc(16, 9, texture.FormatRGBA32Uint), desc(64, 32, texture.FormatASTC4x4Unorm), 0, true},
		{"texel size mismatch", desc(16, 8, texture.FormatRGBA8Unorm), desc(64, 32, texture.FormatASTC4x4Unorm), 0, true},
		{"compressed source", desc(64, 32, texture.FormatASTC4x4Unorm), desc(16, 8, texture.FormatRGBA32Uint), 0, true},
		{"empty", desc(0, 8, texture.FormatRGBA32Uint), desc(0, 32, texture.FormatASTC4x4Unorm), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planCopy(tt.src, tt.dst)
			if tt.wantErr {
				if !errors.Is(err, ErrIncompatibleCopy) {
					t.Fatalf("err = %v, want ErrIncompatibleCopy", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("plan = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaddedRowsRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		desc      texture.Descriptor
		wantPad   uint32
		wantRows  int
		wantBytes int
	}{
		{"rgba32uint aligned", desc(16, 3, texture.FormatRGBA32Uint), 256, 3, 256},
		{"rgba32uint padded", desc(5, 2, texture.FormatRGBA32Uint), 256, 2, 80},
		{"rgba8 padded", desc(65, 1, texture.FormatRGBA8Unorm), 512, 1, 260},
		{"astc 6x6", desc(66, 36, texture.FormatASTC6x6Unorm), 256, 6, 176},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := paddedRowBytes(tt.desc)
			if pad != tt.wantPad {
				t.Errorf("paddedRowBytes = %d, want %d", pad, tt.wantPad)
			}
			rows := blockRows(tt.desc)
			if rows != tt.wantRows {
				t.Errorf("blockRows = %d, want %d", rows, tt.wantRows)
			}
			rowBytes := tt.desc.Format.RowBytes(tt.desc.Width)
			if rowBytes != tt.wantBytes {
				t.Fatalf("RowBytes = %d, want %d", rowBytes, tt.wantBytes)
			}

			want := make([]byte, rowBytes*rows)
			for i := range want {
				want[i] = byte(i*7 + 1)
			}
			padded := make([]byte, int(pad)*rows)
			for y := 0; y < rows; y++ {
				copy(padded[y*int(pad):], want[y*rowBytes:(y+1)*rowBytes])
				for x := rowBytes; x < int(pad); x++ {
					padded[y*int(pad)+x] = 0xEE
				}
			}
			if got := unpadRows(padded, rowBytes, int(pad), rows); !bytes.Equal(got, want) {
				t.Error("unpadRows did not restore the packed rows")
			}
		})
	}
}

func TestTextureUsage(t *testing.T) {
	base := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst

	intermediate := desc(4, 4, texture.FormatRGBA32Uint)
	intermediate.Kind = texture.KindRenderTexture
	intermediate.RandomWrite = true
	if got := textureUsage(intermediate); got != base|wgpu.TextureUsageStorageBinding|wgpu.TextureUsageRenderAttachment {
		t.Errorf("intermediate usage = %v", got)
	}
	if got := textureUsage(desc(16, 16, texture.FormatASTC4x4Unorm)); got != base {
		t.Errorf("compressed usage = %v, want sampling and copies only", got)
	}
}

func TestLetterbox(t *testing.T) {
	tests := []struct {
		name       string
		tw, th     int
		sw, sh     int
		wantX, wantY float32
	}{
		{"same aspect", 100, 50, 200, 100, 1, 1},
		{"wide texture", 200, 50, 100, 100, 1, 0.25},
		{"tall texture", 50, 100, 100, 100, 0.5, 1},
		{"no surface", 10, 10, 0, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := letterbox(tt.tw, tt.th, tt.sw, tt.sh)
			if math.Abs(float64(got[0]-tt.wantX)) > 1e-6 || math.Abs(float64(got[1]-tt.wantY)) > 1e-6 {
				t.Errorf("letterbox = %v, want (%v, %v)", got, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestMeshVertexBytes(t *testing.T) {
	mesh := &command_buffer.Mesh{Label: "tri", Positions: [][2]float32{{-1, -1}, {-1, 3}, {3, -1}}}
	got := meshVertexBytes(mesh)
	if len(got) != 24 {
		t.Fatalf("len = %d, want 24", len(got))
	}
	want := []float32{-1, -1, -1, 3, 3, -1}
	for i, w := range want {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(got[i*4:])); v != w {
			t.Errorf("float %d = %v, want %v", i, v, w)
		}
	}
}

func TestClassifyEntry(t *testing.T) {
	var sampled, storage, sampler, uniform wgpu.BindGroupLayoutEntry
	sampled.Texture.SampleType = wgpu.TextureSampleTypeFloat
	storage.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
	sampler.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	uniform.Buffer.Type = wgpu.BufferBindingTypeUniform

	tests := []struct {
		name  string
		entry wgpu.BindGroupLayoutEntry
		want  bindingKind
	}{
		{"sampled", sampled, bindingTexture},
		{"storage", storage, bindingStorageTexture},
		{"sampler", sampler, bindingSampler},
		{"uniform", uniform, bindingBuffer},
	}
	for _, tt := range tests {
		if got := classifyEntry(tt.entry); got != tt.want {
			t.Errorf("%s: classifyEntry = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSamplerStagingData(t *testing.T) {
	d := desc(4, 4, texture.FormatRGBA8Unorm)
	got := samplerStagingData(d)
	if got.MagFilter != wgpu.FilterModeLinear || got.AddressModeU != wgpu.AddressModeClampToEdge {
		t.Errorf("default sampler = %+v, want linear clamp", got)
	}
	d.Filter, d.Wrap = texture.FilterPoint, texture.WrapRepeat
	got = samplerStagingData(d)
	if got.MagFilter != wgpu.FilterModeNearest || got.AddressModeV != wgpu.AddressModeRepeat {
		t.Errorf("point/repeat sampler = %+v", got)
	}
}
