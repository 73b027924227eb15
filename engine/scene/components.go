package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is an entity's local transform relative to its parent.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// NewTransform returns the identity transform.
//
// Returns:
//   - Transform: zero translation, identity rotation, unit scale
func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// FromTranslation returns an identity transform moved to t.
//
// Parameters:
//   - t: the translation
//
// Returns:
//   - Transform: the transform
func FromTranslation(t mgl32.Vec3) Transform {
	tr := NewTransform()
	tr.Translation = t
	return tr
}

// FromImported converts an importer transform (quaternion stored x, y, z, w).
//
// Parameters:
//   - t: the imported transform
//
// Returns:
//   - Transform: the equivalent component value
func FromImported(t model.Transform) Transform {
	return Transform{
		Translation: mgl32.Vec3(t.Translation),
		Rotation:    mgl32.Quat{W: t.Rotation[3], V: mgl32.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}},
		Scale:       mgl32.Vec3(t.Scale),
	}
}

// Matrix composes Translate * Rotate * Scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}

// Forward returns the local -Z axis rotated into parent space.
func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// GlobalTransform is the world matrix derived each frame by PropagateTransforms.
type GlobalTransform struct {
	Matrix mgl32.Mat4
}

// Translation returns the world-space position.
func (g GlobalTransform) Translation() mgl32.Vec3 {
	return common.Translation(g.Matrix)
}

// Visibility is the authored visibility of an entity.
type Visibility int

const (
	// VisibilityInherited takes the parent's resolved visibility; roots resolve Visible.
	VisibilityInherited Visibility = iota
	VisibilityHidden
	// VisibilityVisible resolves Visible even under a hidden parent.
	VisibilityVisible
)

// InheritedVisibility is the resolved visibility written by PropagateVisibility.
type InheritedVisibility int

const (
	InheritedVisible InheritedVisibility = iota
	InheritedHidden
)

// Name is an optional human readable label.
type Name string

// MeshRef points an entity at a mesh resource.
type MeshRef struct {
	ID resource.ID
}

// MaterialRef points an entity at a material resource.
type MaterialRef struct {
	ID resource.ID
}
