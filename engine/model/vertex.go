package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Fixed vertex attribute locations shared by every mesh and every shader.
const (
	AttribPosition uint32 = 0
	AttribTexCoord uint32 = 1
	AttribNormal   uint32 = 2
	AttribTangent  uint32 = 3
)

// VertexStride is the size in bytes of one interleaved Vertex.
const VertexStride = 48

// Vertex is the interleaved layout uploaded into a mesh's array buffer.
// Size: 48 bytes, tightly packed.
type Vertex struct {
	Position [3]float32 // offset  0 (location 0)
	TexCoord [2]float32 // offset 12 (location 1)
	Normal   [3]float32 // offset 20 (location 2)
	Tangent  [4]float32 // offset 32 (location 3): xyz tangent, w handedness
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex into its little-endian interleaved form.
//
// Returns:
//   - []byte: 48-byte buffer ready for upload.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
	}
	for i, f := range v.Position {
		put(i*4, f)
	}
	for i, f := range v.TexCoord {
		put(12+i*4, f)
	}
	for i, f := range v.Normal {
		put(20+i*4, f)
	}
	for i, f := range v.Tangent {
		put(32+i*4, f)
	}
	return buf
}

// AttributeOffsets returns the byte offset of each attribute location in the Vertex layout.
//
// Returns:
//   - map[uint32]int: location to byte offset
func AttributeOffsets() map[uint32]int {
	return map[uint32]int{
		AttribPosition: 0,
		AttribTexCoord: 12,
		AttribNormal:   20,
		AttribTangent:  32,
	}
}

// ComputeBounds returns the axis-aligned bounding box of the vertex positions.
//
// Parameters:
//   - vertices: the vertex data
//
// Returns:
//   - [3]float32: the minimum corner
//   - [3]float32: the maximum corner
func ComputeBounds(vertices []Vertex) ([3]float32, [3]float32) {
	if len(vertices) == 0 {
		return [3]float32{}, [3]float32{}
	}
	lo, hi := vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = float32(math.Min(float64(lo[i]), float64(v.Position[i])))
			hi[i] = float32(math.Max(float64(hi[i]), float64(v.Position[i])))
		}
	}
	return lo, hi
}
