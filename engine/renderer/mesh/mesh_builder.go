package mesh

import "github.com/Carmen-Shannon/oxy-gl/engine/model"

// MeshBuilderOption is a functional option applied to a mesh during construction via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh name used in logs and errors.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertices sets the interleaved vertex data.
//
// Parameters:
//   - vertices: the vertices
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithVertices(vertices []model.Vertex) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
	}
}

// WithIndices sets the triangle index data.
//
// Parameters:
//   - indices: the indices, three per triangle
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}
