package material

import (
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/shader"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithComputeShader is an option builder that makes the material a compute material.
//
// Parameters:
//   - s: the compute shader
//
// Returns:
//   - MaterialBuilderOption: a function that applies the compute shader option to a material
func WithComputeShader(s shader.Shader) MaterialBuilderOption {
	return func(m *material) {
		m.computeShader = s
	}
}

// WithRasterShaders is an option builder that makes the material a raster material.
//
// Parameters:
//   - vertex: the vertex stage shader
//   - fragment: the fragment stage shader
//
// Returns:
//   - MaterialBuilderOption: a function that applies the raster shaders option to a material
func WithRasterShaders(vertex, fragment shader.Shader) MaterialBuilderOption {
	return func(m *material) {
		m.vertexShader = vertex
		m.fragmentShader = fragment
	}
}

// WithKeywords is an option builder that enables keywords at construction.
//
// Parameters:
//   - keywords: the keywords to enable
//
// Returns:
//   - MaterialBuilderOption: a function that applies the keywords option to a material
func WithKeywords(keywords ...string) MaterialBuilderOption {
	return func(m *material) {
		for _, kw := range keywords {
			m.keywords[kw] = true
		}
	}
}
