package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), size)
}

// ComposeTRS builds a column-major model matrix as Translate * Rotate * Scale.
//
// Parameters:
//   - translation: position offset
//   - rotation: orientation quaternion (normalized before use)
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Translation extracts the translation column of a column-major 4x4 matrix.
//
// Parameters:
//   - m: the source matrix
//
// Returns:
//   - mgl32.Vec3: the world-space position encoded in m
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of m, used to bring
// normals into world space under non-uniform scale. Falls back to the plain upper
// 3x3 when m is singular.
//
// Parameters:
//   - m: the model matrix
//
// Returns:
//   - mgl32.Mat3: the normal matrix
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	upper := m.Mat3()
	if det := upper.Det(); float32(math.Abs(float64(det))) < 1e-8 {
		return upper
	}
	return upper.Inv().Transpose()
}

// StableUp returns an up vector that is not parallel to dir. Uses +Y unless dir
// points nearly straight up or down, in which case +X is returned.
//
// Parameters:
//   - dir: a normalized direction
//
// Returns:
//   - mgl32.Vec3: the up vector to feed into LookAt
func StableUp(dir mgl32.Vec3) mgl32.Vec3 {
	if float32(math.Abs(float64(dir.Y()))) > 0.99 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// SafeNormalize normalizes v, returning fallback when v has (near) zero length.
//
// Parameters:
//   - v: the vector to normalize
//   - fallback: the vector returned for degenerate input
//
// Returns:
//   - mgl32.Vec3: the normalized vector or fallback
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-8 {
		return fallback
	}
	return v.Normalize()
}

// ApproxEqualMat4 reports whether every element of a and b differs by at most eps.
//
// Parameters:
//   - a, b: the matrices to compare
//   - eps: the per-element tolerance
//
// Returns:
//   - bool: true if the matrices match within eps
func ApproxEqualMat4(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if float32(math.Abs(float64(a[i]-b[i]))) > eps {
			return false
		}
	}
	return true
}
