// Package mesh provides the mesh resource: a CPU vertex/index blob that creates
// its vertex array, vertex buffer and index buffer on first use.
package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name     string
	vertices []model.Vertex
	indices  []uint32
	min, max mgl32.Vec3

	device gfx.Device
	vao    gfx.VertexArray
	vbo    gfx.Buffer
	ebo    gfx.Buffer
}

// Mesh is an indexed triangle list.
//
// The GPU objects are owned by the mesh: Initialize creates them, Release deletes them.
type Mesh interface {
	resource.Resource

	// Name retrieves the mesh name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// VertexCount retrieves the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount retrieves the number of indices submitted per draw.
	//
	// Returns:
	//   - int32: the index count
	IndexCount() int32

	// Bounds retrieves the local-space axis-aligned bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: the minimum corner
	//   - mgl32.Vec3: the maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// VertexArray retrieves the vertex array, or 0 before initialization.
	//
	// Returns:
	//   - gfx.VertexArray: the vertex array handle
	VertexArray() gfx.VertexArray

	// Draw binds the vertex array, issues one indexed triangle draw and unbinds.
	// A mesh that was never initialized draws nothing.
	Draw()
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from vertex and index data.
//
// Parameters:
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: a new Mesh instance
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	lo, hi := model.ComputeBounds(m.vertices)
	m.min, m.max = mgl32.Vec3(lo), mgl32.Vec3(hi)
	return m
}

// FromImported creates a Mesh from an imported primitive.
//
// Parameters:
//   - src: the imported mesh
//
// Returns:
//   - Mesh: the mesh
func FromImported(src *model.ImportedMesh) Mesh {
	return NewMesh(WithName(src.Name), WithVertices(src.Vertices), WithIndices(src.Indices))
}

// Key returns the content key of an imported mesh.
//
// Parameters:
//   - src: the imported mesh
//
// Returns:
//   - string: the cache key
func Key(src *model.ImportedMesh) string {
	return "mesh:" + resource.ContentKey(common.SliceToBytes(src.Vertices), common.SliceToBytes(src.Indices))
}

func (m *mesh) Initialize(dev gfx.Device) error {
	if len(m.vertices) == 0 || len(m.indices) == 0 {
		return fmt.Errorf("mesh %q: no geometry", m.name)
	}
	for _, idx := range m.indices {
		if int(idx) >= len(m.vertices) {
			return fmt.Errorf("mesh %q: index %d out of range (%d vertices)", m.name, idx, len(m.vertices))
		}
	}

	m.vao = dev.CreateVertexArray()
	dev.BindVertexArray(m.vao)
	m.vbo = dev.CreateBuffer(gfx.ArrayBuffer, common.SliceToBytes(m.vertices))
	for _, attr := range Layout() {
		dev.VertexAttribPointer(attr)
	}
	m.ebo = dev.CreateBuffer(gfx.ElementArrayBuffer, common.SliceToBytes(m.indices))
	dev.BindVertexArray(0)
	m.device = dev
	return nil
}

func (m *mesh) Release(dev gfx.Device) {
	dev.DeleteVertexArray(m.vao)
	dev.DeleteBuffer(m.vbo)
	dev.DeleteBuffer(m.ebo)
	m.vao, m.vbo, m.ebo = 0, 0, 0
	m.device = nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) VertexCount() int {
	return len(m.vertices)
}

func (m *mesh) IndexCount() int32 {
	return int32(len(m.indices))
}

func (m *mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return m.min, m.max
}

func (m *mesh) VertexArray() gfx.VertexArray {
	return m.vao
}

func (m *mesh) Draw() {
	if m.device == nil {
		return
	}
	m.device.BindVertexArray(m.vao)
	m.device.DrawElements(gfx.Triangles, m.IndexCount(), gfx.IndexUint32, 0)
	m.device.BindVertexArray(0)
}

// Layout returns the vertex attribute layout of model.Vertex.
//
// Returns:
//   - []gfx.VertexAttrib: position, uv, normal and tangent attributes
func Layout() []gfx.VertexAttrib {
	offsets := model.AttributeOffsets()
	return []gfx.VertexAttrib{
		{Location: model.AttribPosition, Components: 3, Stride: model.VertexStride, Offset: offsets[model.AttribPosition]},
		{Location: model.AttribTexCoord, Components: 2, Stride: model.VertexStride, Offset: offsets[model.AttribTexCoord]},
		{Location: model.AttribNormal, Components: 3, Stride: model.VertexStride, Offset: offsets[model.AttribNormal]},
		{Location: model.AttribTangent, Components: 4, Stride: model.VertexStride, Offset: offsets[model.AttribTangent]},
	}
}
