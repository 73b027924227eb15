package shadow

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultResolution is the default width and height in texels of the
// directional shadow depth texture.
const DefaultResolution = 1024

// DefaultPointResolution is the default edge length in texels of each point
// shadow cube face.
const DefaultPointResolution = 512

// DefaultDistance is how far behind the scene origin, along the light direction,
// the directional light's eye is placed.
const DefaultDistance float32 = 20.0

// DefaultHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum.
const DefaultHalfExtent float32 = 20.0

// DefaultNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultNear float32 = 0.1

// DefaultFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultFar float32 = 50.0

// DefaultPointFar is the default far plane of the point shadow cube projection.
// Depth is stored as distance / far.
const DefaultPointFar float32 = 25.0

// pointNear is the near plane of the cube face projections.
const pointNear float32 = 0.1

// CubeFace is the look direction and up vector of one cube map face.
type CubeFace struct {
	Dir mgl32.Vec3
	Up  mgl32.Vec3
}

// CubeFaces lists the faces in layer order +X, -X, +Y, -Y, +Z, -Z with the
// up vectors of the OpenGL cube map convention.
var CubeFaces = [6]CubeFace{
	{Dir: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Dir: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Dir: mgl32.Vec3{0, 1, 0}, Up: mgl32.Vec3{0, 0, 1}},
	{Dir: mgl32.Vec3{0, -1, 0}, Up: mgl32.Vec3{0, 0, -1}},
	{Dir: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, -1, 0}},
	{Dir: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, -1, 0}},
}

// DirectionalLightViewProj builds the light-space view-projection matrix of a
// directional light. The eye sits distance units behind the origin, opposite the
// light direction, looking at the origin through an orthographic box.
//
// Parameters:
//   - dir: the light direction, normalized
//   - distance: eye distance from the origin
//   - halfExtent: orthographic half-size in world units
//   - near, far: the clip planes
//
// Returns:
//   - mgl32.Mat4: proj * view
func DirectionalLightViewProj(dir mgl32.Vec3, distance, halfExtent, near, far float32) mgl32.Mat4 {
	eye := dir.Mul(-distance)
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, common.StableUp(dir))
	proj := mgl32.Ortho(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	return proj.Mul4(view)
}

// CubeFaceMatrices builds the six view-projection matrices of a point light,
// one per cube face in CubeFaces order, with a 90 degree square projection.
//
// Parameters:
//   - pos: the light position
//   - far: the far plane
//
// Returns:
//   - [6]mgl32.Mat4: the face matrices
func CubeFaceMatrices(pos mgl32.Vec3, far float32) [6]mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, pointNear, far)
	var out [6]mgl32.Mat4
	for i, f := range CubeFaces {
		out[i] = proj.Mul4(mgl32.LookAtV(pos, pos.Add(f.Dir), f.Up))
	}
	return out
}
