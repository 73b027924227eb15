package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer holds three positions followed by three uint16 indices, padded to 4 bytes.
func triangleBuffer(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2}))
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

func testDocument(bufferURI string, bufferLen int) map[string]any {
	buffer := map[string]any{"byteLength": bufferLen}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "Main", "nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "root", "children": []int{1, 2, 3}, "translation": []float32{1, 2, 3}},
			map[string]any{"name": "mesh", "mesh": 0, "matrix": []float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 4, 5, 6, 1}},
			map[string]any{"name": "cam", "camera": 0},
			map[string]any{"name": "ortho", "camera": 1},
		},
		"meshes": []any{map[string]any{
			"name": "tri",
			"primitives": []any{
				map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1, "material": 0},
				map[string]any{"attributes": map[string]int{"POSITION": 0}, "mode": 1},
			},
		}},
		"materials": []any{map[string]any{
			"name": "red",
			"pbrMetallicRoughness": map[string]any{
				"baseColorFactor":  []float32{1, 0, 0, 1},
				"metallicFactor":   0.5,
				"baseColorTexture": map[string]int{"index": 0},
			},
			"normalTexture": map[string]int{"index": 0},
		}},
		"textures": []any{map[string]int{"source": 0, "sampler": 0}},
		"images":   []any{map[string]string{"uri": "tex.png"}},
		"samplers": []any{map[string]int{"magFilter": 9728, "minFilter": 9729, "wrapS": 33071}},
		"cameras": []any{
			map[string]any{"type": "perspective", "perspective": map[string]float32{"yfov": 0.8, "znear": 0.1}},
			map[string]any{"type": "orthographic"},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]int{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]int{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"buffers": []any{buffer},
	}
}

func writeGLTF(t *testing.T, doc map[string]any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scene.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func dataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestLoadGLTF(t *testing.T) {
	buf := triangleBuffer(t)
	path := writeGLTF(t, testDocument(dataURI(buf), len(buf)))

	m, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Main", m.Name)
	assert.Equal(t, []int{0}, m.Roots)

	t.Run("meshes", func(t *testing.T) {
		require.Len(t, m.Meshes, 2)
		tri := m.Meshes[0]
		assert.Equal(t, "tri", tri.Name)
		assert.Equal(t, []uint32{0, 1, 2}, tri.Indices)
		assert.Equal(t, 0, tri.MaterialIndex)
		require.Len(t, tri.Vertices, 3)
		assert.Equal(t, [3]float32{1, 0, 0}, tri.Vertices[1].Position)
		assert.InDeltaSlice(t, []float32{0, 0, 1}, tri.Vertices[0].Normal[:], 1e-6, "normals generated from winding")
		assert.Equal(t, [3]float32{1, 1, 0}, tri.BoundingMax)

		lines := m.Meshes[1]
		assert.Equal(t, "tri_prim1", lines.Name)
		assert.Empty(t, lines.Vertices, "non-triangle primitive kept empty")
		assert.Equal(t, -1, lines.MaterialIndex)
	})

	t.Run("nodes", func(t *testing.T) {
		require.Len(t, m.Nodes, 4)
		root := m.Nodes[0]
		assert.Equal(t, []int{1, 2, 3}, root.Children)
		assert.Equal(t, [3]float32{1, 2, 3}, root.Local.Translation)
		assert.Equal(t, [4]float32{0, 0, 0, 1}, root.Local.Rotation)

		meshNode := m.Nodes[1]
		assert.Equal(t, []int{0, 1}, meshNode.Meshes)
		assert.InDeltaSlice(t, []float32{2, 2, 2}, meshNode.Local.Scale[:], 1e-5)
		assert.InDeltaSlice(t, []float32{4, 5, 6}, meshNode.Local.Translation[:], 1e-6)
		assert.InDeltaSlice(t, []float32{0, 0, 0, 1}, meshNode.Local.Rotation[:], 1e-5)
		assert.Equal(t, -1, meshNode.Camera)

		assert.Equal(t, 0, m.Nodes[2].Camera)
		assert.Equal(t, -1, m.Nodes[3].Camera, "orthographic camera skipped")
	})

	t.Run("cameras", func(t *testing.T) {
		require.Len(t, m.Cameras, 1)
		assert.InDelta(t, 0.8, m.Cameras[0].YFov, 1e-6)
		assert.InDelta(t, 0.1, m.Cameras[0].ZNear, 1e-6)
		assert.Zero(t, m.Cameras[0].ZFar, "infinite far plane left to the camera default")
		assert.Zero(t, m.Cameras[0].AspectRatio)
	})

	t.Run("materials", func(t *testing.T) {
		require.Len(t, m.Materials, 1)
		mat := m.Materials[0]
		assert.Equal(t, "red", mat.Name)
		assert.Equal(t, [4]float32{1, 0, 0, 1}, mat.BaseColor)
		assert.InDelta(t, 0.5, mat.Metallic, 1e-6)
		assert.InDelta(t, 1.0, mat.Roughness, 1e-6)

		require.NotNil(t, mat.DiffuseTexture)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "tex.png"), mat.DiffuseTexture.Path)
		assert.Empty(t, mat.DiffuseTexture.Data, "external images decode lazily")
		assert.Equal(t, common.ColorSpaceSRGB, mat.DiffuseTexture.ColorSpace)
		assert.Equal(t, common.FilterNearest, mat.DiffuseTexture.Sampler.MagFilter)
		assert.Equal(t, common.WrapClampToEdge, mat.DiffuseTexture.Sampler.WrapS)
		assert.Equal(t, common.WrapRepeat, mat.DiffuseTexture.Sampler.WrapT)
		assert.False(t, mat.DiffuseTexture.Sampler.Mipmaps)

		require.NotNil(t, mat.NormalTexture)
		assert.Equal(t, common.ColorSpaceLinear, mat.NormalTexture.ColorSpace)
		assert.Nil(t, mat.MetallicRoughnessTexture)
	})
}

func TestLoadCachesByPath(t *testing.T) {
	buf := triangleBuffer(t)
	path := writeGLTF(t, testDocument(dataURI(buf), len(buf)))
	l := NewLoader(BackendTypeGLTF)

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(filepath.Join(filepath.Dir(path), ".", "scene.gltf"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Len(t, l.Models(), 1)
	assert.Nil(t, l.Get("missing"))
}

func TestLoadExternalBuffer(t *testing.T) {
	buf := triangleBuffer(t)
	path := writeGLTF(t, testDocument("tri.bin", len(buf)))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "tri.bin"), buf, 0o644))

	m, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, m.Meshes)
	assert.Len(t, m.Meshes[0].Vertices, 3)
}

func TestLoadErrors(t *testing.T) {
	buf := triangleBuffer(t)

	t.Run("unknown extension", func(t *testing.T) {
		_, err := NewLoader(BackendTypeGLTF).Load("model.obj")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("required extension", func(t *testing.T) {
		doc := testDocument(dataURI(buf), len(buf))
		doc["extensionsRequired"] = []string{"KHR_draco_mesh_compression"}
		_, err := NewLoader(BackendTypeGLTF).Load(writeGLTF(t, doc))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(BackendTypeGLTF).Load(filepath.Join(t.TempDir(), "none.gltf"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("wrong version", func(t *testing.T) {
		doc := testDocument(dataURI(buf), len(buf))
		doc["asset"] = map[string]any{"version": "1.0"}
		_, err := NewLoader(BackendTypeGLTF).Load(writeGLTF(t, doc))
		assert.ErrorIs(t, err, errInvalidGLTFVersion)
	})

	t.Run("accessor past buffer", func(t *testing.T) {
		doc := testDocument(dataURI(buf), len(buf))
		doc["accessors"].([]any)[0].(map[string]any)["count"] = 30
		_, err := NewLoader(BackendTypeGLTF).Load(writeGLTF(t, doc))
		assert.ErrorIs(t, err, errAccessorBounds)
	})

	t.Run("failed load is not cached", func(t *testing.T) {
		l := NewLoader(BackendTypeGLTF)
		_, err := l.Load(filepath.Join(t.TempDir(), "none.glb"))
		require.Error(t, err)
		assert.Empty(t, l.Models())
	})
}

func buildGLB(t *testing.T, jsonData, bin []byte) []byte {
	t.Helper()
	pad := func(b []byte, fill byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, fill)
		}
		return b
	}
	jsonData = pad(append([]byte(nil), jsonData...), ' ')
	bin = pad(append([]byte(nil), bin...), 0)

	var out bytes.Buffer
	total := 12 + 8 + len(jsonData) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

func TestLoadReaderGLB(t *testing.T) {
	buf := triangleBuffer(t)
	doc := testDocument("", len(buf))
	delete(doc, "scene")
	delete(doc, "scenes")
	jsonData, err := json.Marshal(doc)
	require.NoError(t, err)

	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("embedded", bytes.NewReader(buildGLB(t, jsonData, buf)), true)
	require.NoError(t, err)

	assert.Equal(t, "embedded", m.Name)
	assert.Equal(t, []int{0}, m.Roots, "parentless nodes become roots without scenes")
	require.Len(t, m.Meshes, 2)
	assert.Equal(t, []uint32{0, 1, 2}, m.Meshes[0].Indices)
	assert.Same(t, m, l.Get("embedded"))
}

func TestLoadReaderRejectsTruncatedGLB(t *testing.T) {
	buf := triangleBuffer(t)
	jsonData, err := json.Marshal(testDocument("", len(buf)))
	require.NoError(t, err)
	glb := buildGLB(t, jsonData, buf)

	_, err = NewLoader(BackendTypeGLTF).LoadReader("cut", bytes.NewReader(glb[:len(glb)-20]), true)
	assert.Error(t, err)
}

func TestWithModelPrepopulatesCache(t *testing.T) {
	m, err := NewLoader(BackendTypeGLTF).LoadReader("doc", strings.NewReader(`{"asset":{"version":"2.0"}}`), false)
	require.NoError(t, err)
	assert.Empty(t, m.Meshes)
	assert.Empty(t, m.Roots)

	l := NewLoader(BackendTypeGLTF, WithModel("doc", m))
	assert.Same(t, m, l.Get("doc"))
}
