package material

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// PropertyKind identifies which field of a Property holds its value.
type PropertyKind int

const (
	// PropertyTexture binds a texture, sampled or storage depending on the program declaration.
	PropertyTexture PropertyKind = iota

	// PropertyFloatArray binds a storage buffer of f32 values.
	PropertyFloatArray

	// PropertyVector binds a vec4<f32> uniform.
	PropertyVector

	// PropertyInt binds an i32 uniform.
	PropertyInt
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyTexture:
		return "texture"
	case PropertyFloatArray:
		return "float array"
	case PropertyVector:
		return "vector"
	case PropertyInt:
		return "int"
	default:
		return fmt.Sprintf("PropertyKind(%d)", int(k))
	}
}

// Property is one named value bound to a program variable of the same name.
type Property struct {
	Kind    PropertyKind
	Texture texture.Texture
	Floats  []float32
	Vector  [4]float32
	Int     int32
}

// PropertyBlock maps program variable names to values. The zero value is not usable; create
// blocks with NewPropertyBlock.
type PropertyBlock struct {
	values map[string]Property
}

// NewPropertyBlock creates an empty PropertyBlock.
//
// Returns:
//   - *PropertyBlock: the new block
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{values: make(map[string]Property)}
}

// SetTexture binds a texture to the named variable. A nil texture unbinds it.
func (b *PropertyBlock) SetTexture(name string, tex texture.Texture) {
	if tex == nil {
		delete(b.values, name)
		return
	}
	b.values[name] = Property{Kind: PropertyTexture, Texture: tex}
}

// SetFloatArray binds a float array to the named variable. The slice is referenced, not copied,
// so constant tables shared between materials stay a single allocation.
func (b *PropertyBlock) SetFloatArray(name string, values []float32) {
	b.values[name] = Property{Kind: PropertyFloatArray, Floats: values}
}

// SetVector binds a vec4 to the named variable.
func (b *PropertyBlock) SetVector(name string, v [4]float32) {
	b.values[name] = Property{Kind: PropertyVector, Vector: v}
}

// SetInt binds an integer to the named variable.
func (b *PropertyBlock) SetInt(name string, v int32) {
	b.values[name] = Property{Kind: PropertyInt, Int: v}
}

// Get returns the property bound to name.
func (b *PropertyBlock) Get(name string) (Property, bool) {
	p, ok := b.values[name]
	return p, ok
}

// Texture returns the texture bound to name, or nil if name is unset or not a texture.
func (b *PropertyBlock) Texture(name string) texture.Texture {
	if p, ok := b.values[name]; ok && p.Kind == PropertyTexture {
		return p.Texture
	}
	return nil
}

// FloatArray returns the float array bound to name, or nil.
func (b *PropertyBlock) FloatArray(name string) []float32 {
	if p, ok := b.values[name]; ok && p.Kind == PropertyFloatArray {
		return p.Floats
	}
	return nil
}

// Vector returns the vector bound to name.
func (b *PropertyBlock) Vector(name string) ([4]float32, bool) {
	p, ok := b.values[name]
	if !ok || p.Kind != PropertyVector {
		return [4]float32{}, false
	}
	return p.Vector, true
}

// Int returns the integer bound to name.
func (b *PropertyBlock) Int(name string) (int32, bool) {
	p, ok := b.values[name]
	if !ok || p.Kind != PropertyInt {
		return 0, false
	}
	return p.Int, true
}

// Remove unbinds name.
func (b *PropertyBlock) Remove(name string) {
	delete(b.values, name)
}

// Names returns the bound variable names in sorted order.
func (b *PropertyBlock) Names() []string {
	names := make([]string, 0, len(b.values))
	for name := range b.values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of bound properties.
func (b *PropertyBlock) Len() int {
	return len(b.values)
}

// Clear unbinds every property.
func (b *PropertyBlock) Clear() {
	clear(b.values)
}

// Resolve looks name up in each block in order and returns the first match. Nil blocks are
// skipped, which lets callers pass an optional global block as the last fallback.
//
// Parameters:
//   - name: the program variable name
//   - blocks: the blocks to search, highest priority first
//
// Returns:
//   - Property: the first property bound to name
//   - bool: true if any block binds name
func Resolve(name string, blocks ...*PropertyBlock) (Property, bool) {
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if p, ok := b.values[name]; ok {
			return p, true
		}
	}
	return Property{}, false
}
