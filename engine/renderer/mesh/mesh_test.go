package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() Mesh {
	return NewMesh(
		WithName("quad"),
		WithVertices([]model.Vertex{
			{Position: [3]float32{-1, -1, 0}},
			{Position: [3]float32{1, -1, 0}},
			{Position: [3]float32{1, 1, 2}},
			{Position: [3]float32{-1, 1, 0}},
		}),
		WithIndices([]uint32{0, 1, 2, 0, 2, 3}),
	)
}

func TestMeshInitializeUploadsInterleavedData(t *testing.T) {
	rec := gfxtest.NewRecorder()
	m := quad()
	require.NoError(t, m.Initialize(rec))

	require.Len(t, rec.Arrays, 1)
	require.Len(t, rec.Buffers, 2)
	attribs := rec.Attribs[m.VertexArray()]
	require.Len(t, attribs, 4)
	assert.Equal(t, gfx.VertexAttrib{Location: model.AttribTangent, Components: 4, Stride: 48, Offset: 32}, attribs[3])
	assert.Empty(t, rec.Attribs[0], "attributes recorded on the default vertex array")
	_, vao, _ := rec.Bound()
	assert.Equal(t, gfx.VertexArray(0), vao, "vertex array left bound after upload")

	var sizes []int
	for _, data := range rec.Buffers {
		sizes = append(sizes, len(data))
	}
	assert.ElementsMatch(t, []int{4 * model.VertexStride, 6 * 4}, sizes)

	v := model.Vertex{Position: [3]float32{1, 1, 2}}
	for _, data := range rec.Buffers {
		if len(data) == 4*model.VertexStride {
			assert.Equal(t, v.Marshal(), data[2*model.VertexStride:3*model.VertexStride])
		}
	}
}

func TestMeshDraw(t *testing.T) {
	rec := gfxtest.NewRecorder()
	m := quad()

	m.Draw()
	assert.Empty(t, rec.Draws, "uninitialized mesh draws nothing")

	require.NoError(t, m.Initialize(rec))
	m.Draw()
	require.Len(t, rec.Draws, 1)
	assert.Equal(t, int32(6), rec.Draws[0].Count)
	assert.Equal(t, m.VertexArray(), rec.Draws[0].VertexArray)
	assert.True(t, rec.Draws[0].Indexed)

	_, vao, _ := rec.Bound()
	assert.Zero(t, vao, "vertex array unbound after draw")
}

func TestMeshBoundsAndKey(t *testing.T) {
	m := quad()
	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 2}, hi)

	a := &model.ImportedMesh{Vertices: []model.Vertex{{}}, Indices: []uint32{0, 0, 0}}
	b := &model.ImportedMesh{Name: "other name", Vertices: []model.Vertex{{}}, Indices: []uint32{0, 0, 0}}
	assert.Equal(t, Key(a), Key(b), "meshes are keyed by content")
}

func TestMeshRejectsBadGeometry(t *testing.T) {
	rec := gfxtest.NewRecorder()
	assert.Error(t, NewMesh(WithName("empty")).Initialize(rec))
	bad := NewMesh(WithVertices([]model.Vertex{{}}), WithIndices([]uint32{0, 1, 2}))
	assert.ErrorContains(t, bad.Initialize(rec), "out of range")
	assert.Equal(t, 0, rec.CallCount())
}

func TestMeshRelease(t *testing.T) {
	rec := gfxtest.NewRecorder()
	m := quad()
	require.NoError(t, m.Initialize(rec))
	m.Release(rec)
	assert.Empty(t, rec.Arrays)
	assert.Empty(t, rec.Buffers)
	assert.Equal(t, 3, rec.Deleted)
}
