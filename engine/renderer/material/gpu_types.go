package material

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-astc/common"
)

// uniformAlignment is the size granularity of uniform buffers. Every uniform binding is padded
// to a multiple of it so that scalars such as an i32 mip level still fill a whole vec4 slot.
const uniformAlignment = 16

// Bytes serializes a buffer-backed property into little-endian bytes suitable for GPU upload.
// Integers are written as i32, vectors as four f32, float arrays as tightly packed f32.
// Texture properties have no buffer representation and return nil.
//
// Returns:
//   - []byte: the serialized property
func (p Property) Bytes() []byte {
	switch p.Kind {
	case PropertyInt:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(p.Int))
		return buf
	case PropertyVector:
		return marshalFloats(p.Vector[:])
	case PropertyFloatArray:
		return marshalFloats(p.Floats)
	default:
		return nil
	}
}

// UniformBytes serializes the property and pads it with zeroes to at least minSize bytes,
// rounded up to the uniform alignment.
//
// Parameters:
//   - minSize: the reflected minimum binding size, 0 when unknown
//
// Returns:
//   - []byte: the padded bytes
func (p Property) UniformBytes(minSize uint64) []byte {
	data := p.Bytes()
	size := max(uint64(len(data)), minSize)
	size = uint64(common.AlignUp(uniformAlignment, uint32(size)))
	if uint64(len(data)) == size {
		return data
	}
	padded := make([]byte, size)
	copy(padded, data)
	return padded
}

func marshalFloats(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
