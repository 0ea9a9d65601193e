package compressor

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/command_buffer"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

func mustShader(t *testing.T, key string, typ shader.ShaderType, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShaderFromSource(key, typ, source)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseBackendKind(t *testing.T) {
	for _, k := range []BackendKind{BackendCompute, BackendRaster} {
		got, err := ParseBackendKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseBackendKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseBackendKind("vulkan"); err == nil {
		t.Error("ParseBackendKind accepted an unknown name")
	}
}

func TestBackendSelection(t *testing.T) {
	compute, raster := BackendCompute, BackendRaster
	tests := []struct {
		name     string
		compute  bool
		override *BackendKind
		want     BackendKind
		wantErr  error
	}{
		{"compute capable device", true, nil, BackendCompute, nil},
		{"raster only device", false, nil, BackendRaster, nil},
		{"raster forced on compute device", true, &raster, BackendRaster, nil},
		{"compute forced on raster device", false, &compute, BackendCompute, ErrComputeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecordingRenderer(computeCaps())
			r.caps.ComputeShaders = tt.compute

			s := newBackendSelector(r, tt.override, DefaultComputeProgram, DefaultRasterProgram, true, false)
			if s.Kind() != tt.want {
				t.Fatalf("Kind = %v, want %v", s.Kind(), tt.want)
			}
			b, err := s.Select()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if b.Kind() != tt.want {
				t.Errorf("backend kind = %v, want %v", b.Kind(), tt.want)
			}

			// The capabilities are read once; later changes do not move the selection.
			r.caps.ComputeShaders = !tt.compute
			again, err := s.Select()
			if err != nil || again != b {
				t.Error("second Select returned a different backend")
			}
		})
	}
}

func TestBackendProgramErrors(t *testing.T) {
	noEntry := mustShader(t, "no_entry", shader.ShaderTypeCompute, "@compute @workgroup_size(1)\nfn other() {}\n")
	vertex := mustShader(t, "vs", shader.ShaderTypeVertex, "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n")
	wrongFragment := mustShader(t, "fs", shader.ShaderTypeFragment, "@fragment\nfn frag() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }\n")

	tests := []struct {
		name    string
		caps    bool
		options []SessionBuilderOption
		wantErr error
	}{
		{"nil compute program", true, []SessionBuilderOption{WithComputeProgram(nil)}, ErrMissingProgram},
		{"nil raster program", false, []SessionBuilderOption{WithRasterProgram(nil)}, ErrMissingProgram},
		{"raster program without fragment", false, []SessionBuilderOption{WithRasterProgram(&RasterProgram{Vertex: vertex})}, ErrMissingProgram},
		{"compute entry point missing", true, []SessionBuilderOption{WithComputeProgram(noEntry)}, ErrMissingEntryPoint},
		{"fragment entry point missing", false, []SessionBuilderOption{WithRasterProgram(&RasterProgram{Vertex: vertex, Fragment: wrongFragment})}, ErrMissingEntryPoint},
		{"unused broken program", true, []SessionBuilderOption{WithRasterProgram(nil)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := computeCaps()
			caps.ComputeShaders = tt.caps
			s, err := NewSession(newRecordingRenderer(caps), tt.options...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
				s.Release()
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewSession err = %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Error("NewSession returned a session with an error")
			}
		})
	}
}

func TestComputeBackendExecute(t *testing.T) {
	r := newRecordingRenderer(computeCaps())
	program, err := DefaultComputeProgram()
	if err != nil {
		t.Fatal(err)
	}
	b, err := newComputeBackend(r, program, true)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	source := r.source("src", 100, 100)
	intermediate := r.newTexture(texture.Descriptor{Label: "im", Width: 17, Height: 17, Format: texture.FormatRGBA32Uint, RandomWrite: true})
	preview := r.newTexture(texture.Descriptor{Label: "pv", Width: 100, Height: 100, Format: texture.FormatRGBA8Unorm, RandomWrite: true})
	err = b.Execute(ExecuteRequest{
		Source:        source,
		Intermediate:  intermediate,
		DecodePreview: preview,
		Grid:          astc.GridDimensions{Width: 17, Height: 17},
		BlockSize:     astc.BlockSize6x6,
	})
	if err != nil {
		t.Fatal(err)
	}

	if want := [3]uint32{17, 17, 1}; !slices.Equal(r.grids, [][3]uint32{want}) {
		t.Errorf("workgroup counts = %v, want [%v]", r.grids, want)
	}
	wantKeywords := []string{"COMPRESS_6x6", KeywordDecompressRGB, KeywordSRGB}
	if !slices.Equal(r.dispatches[0], wantKeywords) {
		t.Errorf("dispatch keywords = %q, want %q", r.dispatches[0], wantKeywords)
	}

	props := b.material.Properties()
	if rect, ok := props.Vector(PropDestRect); !ok || rect != astc.NewGPUDestRect(100, 100).Vector() {
		t.Errorf("%s = %v, %v", PropDestRect, rect, ok)
	}
	if size, ok := props.Vector(PropTextureSize); !ok || size[0] != 100 || size[1] != 100 {
		t.Errorf("%s = %v, %v", PropTextureSize, size, ok)
	}
	if mip, ok := props.Int(PropSourceMipLevel); !ok || mip != 0 {
		t.Errorf("%s = %d, %v", PropSourceMipLevel, mip, ok)
	}
	if len(props.FloatArray(astc.ColorQuantTableName)) != astc.ColorQuantTableLen {
		t.Error("6x6 dispatch without the quantization table")
	}
	if props.Texture(PropSourceTexture) != nil || props.Texture(PropResultDecompressed) != nil {
		t.Error("source or preview texture still bound after the call")
	}
	if !allBytes(intermediate.data, resultMarker) || !allBytes(preview.data, previewMarker) {
		t.Error("program outputs were not written")
	}
}

func TestComputeBackendWithoutPreviewClearsKeyword(t *testing.T) {
	r := newRecordingRenderer(computeCaps())
	program, err := DefaultComputeProgram()
	if err != nil {
		t.Fatal(err)
	}
	b, err := newComputeBackend(r, program, false)
	if err != nil {
		t.Fatal(err)
	}
	source := r.source("src", 8, 8)
	intermediate := r.newTexture(texture.Descriptor{Label: "im", Width: 2, Height: 2, Format: texture.FormatRGBA32Uint, RandomWrite: true})
	preview := r.newTexture(texture.Descriptor{Label: "pv", Width: 8, Height: 8, Format: texture.FormatRGBA8Unorm, RandomWrite: true})
	grid := astc.GridDimensions{Width: 2, Height: 2}

	if err := b.Execute(ExecuteRequest{Source: source, Intermediate: intermediate, DecodePreview: preview, Grid: grid, BlockSize: astc.BlockSize4x4}); err != nil {
		t.Fatal(err)
	}
	if err := b.Execute(ExecuteRequest{Source: source, Intermediate: intermediate, Grid: grid, BlockSize: astc.BlockSize4x4}); err != nil {
		t.Fatal(err)
	}
	if want := []string{"COMPRESS_4x4"}; !slices.Equal(r.dispatches[1], want) {
		t.Errorf("second dispatch keywords = %q, want %q", r.dispatches[1], want)
	}
}

func TestRasterBackendRecordsDraw(t *testing.T) {
	r := newRecordingRenderer(rasterCaps())
	program, err := DefaultRasterProgram()
	if err != nil {
		t.Fatal(err)
	}
	b, err := newRasterBackend(r, program, true)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()
	if len(r.meshes) != 1 || len(r.meshes[0].Positions) != 3 {
		t.Fatalf("meshes = %v, want the full-screen triangle", r.meshes)
	}

	source := r.source("src", 30, 17)
	intermediate := r.newTexture(texture.Descriptor{Label: "im", Width: 6, Height: 4, Format: texture.FormatRGBA32Uint, RandomWrite: true})
	preview := r.newTexture(texture.Descriptor{Label: "pv", Width: 30, Height: 17, Format: texture.FormatRGBA8Unorm, RandomWrite: true})
	err = b.Execute(ExecuteRequest{
		Source:        source,
		Intermediate:  intermediate,
		DecodePreview: preview,
		Grid:          astc.GridDimensions{Width: 6, Height: 4},
		BlockSize:     astc.BlockSize5x5,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(r.commands) != 1 {
		t.Fatalf("executed %d command buffers, want 1", len(r.commands))
	}
	var types []command_buffer.CommandType
	for _, c := range r.commands[0] {
		types = append(types, c.Type)
	}
	want := []command_buffer.CommandType{
		command_buffer.CommandSetRenderTarget,
		command_buffer.CommandSetViewport,
		command_buffer.CommandSetRandomWriteTarget,
		command_buffer.CommandEnableKeyword,
		command_buffer.CommandSetGlobalVector,
		command_buffer.CommandSetGlobalTexture,
		command_buffer.CommandSetGlobalInt,
		command_buffer.CommandDrawMesh,
		command_buffer.CommandSetGlobalTexture,
		command_buffer.CommandClearRandomWriteTargets,
		command_buffer.CommandSetRenderTarget,
	}
	if !slices.Equal(types, want) {
		t.Fatalf("commands = %v, want %v", types, want)
	}

	cmds := r.commands[0]
	if cmds[0].Target != intermediate || cmds[10].Target != nil {
		t.Error("draw does not target the intermediate or the target is not reset")
	}
	if vp := cmds[1].Viewport; vp != (command_buffer.Viewport{Width: 6, Height: 4}) {
		t.Errorf("viewport = %+v, want the block grid", vp)
	}
	if cmds[2].Slot != decodePreviewSlot || cmds[2].Target != preview {
		t.Errorf("random write target = slot %d %v", cmds[2].Slot, cmds[2].Target)
	}
	if cmds[3].Name != KeywordSRGB {
		t.Errorf("global keyword = %s, want %s", cmds[3].Name, KeywordSRGB)
	}
	if cmds[4].Name != PropDestRect || cmds[4].Vector != astc.NewGPUDestRect(30, 17).Vector() {
		t.Errorf("dest rect = %s %v", cmds[4].Name, cmds[4].Vector)
	}
	if cmds[5].Name != PropSourceTexture || cmds[5].Target != source {
		t.Errorf("source = %s %v", cmds[5].Name, cmds[5].Target)
	}
	if cmds[8].Name != PropSourceTexture || cmds[8].Target != nil {
		t.Errorf("source global left bound after the draw: %s %v", cmds[8].Name, cmds[8].Target)
	}

	wantKeywords := []string{"COMPRESS_5x5", KeywordDecompressRGB, KeywordSRGB}
	if !slices.Equal(r.draws[0], wantKeywords) {
		t.Errorf("draw keywords = %q, want %q", r.draws[0], wantKeywords)
	}
	if !allBytes(intermediate.data, resultMarker) || !allBytes(preview.data, previewMarker) {
		t.Error("draw outputs were not written")
	}
}

func TestRasterBackendLinearDisablesSRGB(t *testing.T) {
	r := newRecordingRenderer(rasterCaps())
	r.globalKeywords[KeywordSRGB] = true
	program, err := DefaultRasterProgram()
	if err != nil {
		t.Fatal(err)
	}
	b, err := newRasterBackend(r, program, false)
	if err != nil {
		t.Fatal(err)
	}
	source := r.source("src", 4, 4)
	intermediate := r.newTexture(texture.Descriptor{Label: "im", Width: 1, Height: 1, Format: texture.FormatRGBA32Uint, RandomWrite: true})
	if err := b.Execute(ExecuteRequest{Source: source, Intermediate: intermediate, Grid: astc.GridDimensions{Width: 1, Height: 1}, BlockSize: astc.BlockSize4x4}); err != nil {
		t.Fatal(err)
	}
	if want := []string{"COMPRESS_4x4"}; !slices.Equal(r.draws[0], want) {
		t.Errorf("draw keywords = %q, want %q", r.draws[0], want)
	}
}

func TestRasterBackendMeshFailure(t *testing.T) {
	r := newRecordingRenderer(rasterCaps())
	r.failMesh = errors.New("no vertex buffers")
	program, err := DefaultRasterProgram()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newRasterBackend(r, program, true); !errors.Is(err, r.failMesh) {
		t.Fatalf("err = %v, want %v", err, r.failMesh)
	}
}

func TestPrewarmPreparesSelectedBackend(t *testing.T) {
	tests := []struct {
		name string
		caps bool
		want texture.Format
	}{
		{"compute", true, texture.FormatUndefined},
		{"raster", false, texture.FormatRGBA32Uint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := computeCaps()
			caps.ComputeShaders = tt.caps
			r := newRecordingRenderer(caps)
			s, err := NewSession(r, WithPrewarm(true))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Release()
			if !slices.Equal(r.prepared, []texture.Format{tt.want}) {
				t.Errorf("prepared = %v, want [%v]", r.prepared, tt.want)
			}
		})
	}
}
