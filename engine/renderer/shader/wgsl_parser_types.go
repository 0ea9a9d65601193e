package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type in host-shareable memory.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// reflection is everything the renderer needs to know about one processed variant.
type reflection struct {
	entryPoint       string
	workgroupSize    [3]uint32
	vertexLayouts    []wgpu.VertexBufferLayout
	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor
	varNames         map[int]map[int]string
}
