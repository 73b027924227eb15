// Package model holds the format-neutral data an importer hands to the engine:
// meshes with interleaved vertices, materials, cameras and the node hierarchy.
package model

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Transform is a decomposed local transform as authored in the source file.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation or rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}}
}

// ImportedModel represents a 3D document loaded from an external format.
// This is the universal format that importers (glTF, GLB) produce.
type ImportedModel struct {
	// Name is the model identifier, usually the file name.
	Name string

	// Meshes contains every primitive of the document as its own mesh.
	Meshes []ImportedMesh

	// Materials are referenced by ImportedMesh.MaterialIndex.
	Materials []common.ImportedMaterial

	// Cameras are referenced by ImportedNode.Camera.
	Cameras []ImportedCamera

	// Nodes is the flat node table; hierarchy is expressed through Children indices.
	Nodes []ImportedNode

	// Roots are indices into Nodes of the scene's top-level nodes, in document order.
	Roots []int
}

// ImportedMesh represents a single drawable primitive within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the interleaved vertices.
	Vertices []Vertex

	// Indices are the triangle indices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials, or -1 for the default material.
	MaterialIndex int

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// ImportedCamera holds perspective camera parameters.
type ImportedCamera struct {
	Name string

	// YFov is the vertical field of view in radians.
	YFov float32

	// AspectRatio is zero when the file leaves it to the viewport.
	AspectRatio float32

	ZNear float32
	ZFar  float32
}

// ImportedNode is one node of the document hierarchy.
type ImportedNode struct {
	// Name is the node name, possibly empty.
	Name string

	// Local is the node transform relative to its parent.
	Local Transform

	// Meshes are indices into ImportedModel.Meshes drawn at this node.
	// A source mesh with several primitives yields several entries.
	Meshes []int

	// Camera is an index into ImportedModel.Cameras, or -1.
	Camera int

	// Children are indices into ImportedModel.Nodes.
	Children []int
}
