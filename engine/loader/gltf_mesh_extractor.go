package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
	logger *zap.Logger
}

// gltfMeshExtractor converts glTF mesh primitives into engine-ready ImportedMesh values.
type gltfMeshExtractor interface {
	// ExtractAllMeshes extracts every primitive of every mesh, flattened in document order.
	// Primitives that are not triangle lists become empty meshes so indices stay stable;
	// the asset library skips empty meshes when importing.
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - [][]int: for each glTF mesh, the indices of its primitives in the flat slice
	//   - error: error if an accessor cannot be read
	ExtractAllMeshes() ([]model.ImportedMesh, [][]int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - logger: receives warnings about skipped primitives
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, logger *zap.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, logger: logger}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, [][]int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, fmt.Errorf("no document loaded")
	}

	var meshes []model.ImportedMesh
	primitives := make([][]int, len(doc.Meshes))
	for mi := range doc.Meshes {
		mesh := &doc.Meshes[mi]
		for pi := range mesh.Primitives {
			imported, err := e.extractPrimitive(&mesh.Primitives[pi], meshName(mesh.Name, mi, pi))
			if err != nil {
				return nil, nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			primitives[mi] = append(primitives[mi], len(meshes))
			meshes = append(meshes, imported)
		}
	}
	return meshes, primitives, nil
}

// meshName derives a stable name for a primitive.
func meshName(name string, meshIndex, primIndex int) string {
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}
	return name
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, name string) (model.ImportedMesh, error) {
	imported := model.ImportedMesh{Name: name, MaterialIndex: -1}
	if prim.Material != nil {
		imported.MaterialIndex = *prim.Material
	}

	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		e.logger.Warn("skipping non-triangle primitive", zap.String("mesh", name), zap.Int("mode", *prim.Mode))
		return imported, nil
	}
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		e.logger.Warn("skipping primitive without positions", zap.String("mesh", name))
		return imported, nil
	}

	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return imported, fmt.Errorf("failed to read positions: %w", err)
	}
	vertices := make([]model.Vertex, len(positions))
	for i, pos := range positions {
		vertices[i].Position = pos
	}

	hasNormals, err := e.readAttribute(prim, "NORMAL", func(acc int) error {
		normals, err := e.parser.ReadVec3Accessor(acc)
		for i := 0; i < len(normals) && i < len(vertices); i++ {
			vertices[i].Normal = normals[i]
		}
		return err
	})
	if err != nil {
		return imported, err
	}
	if _, err := e.readAttribute(prim, "TEXCOORD_0", func(acc int) error {
		uvs, err := e.parser.ReadVec2Accessor(acc)
		for i := 0; i < len(uvs) && i < len(vertices); i++ {
			vertices[i].TexCoord = uvs[i]
		}
		return err
	}); err != nil {
		return imported, err
	}
	hasTangents, err := e.readAttribute(prim, "TANGENT", func(acc int) error {
		tangents, err := e.parser.ReadVec4Accessor(acc)
		for i := 0; i < len(tangents) && i < len(vertices); i++ {
			vertices[i].Tangent = tangents[i]
		}
		return err
	})
	if err != nil {
		return imported, err
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return imported, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(vertices) {
				return imported, fmt.Errorf("index %d exceeds %d vertices", idx, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	// normals first: tangents are orthonormalized against them
	if !hasNormals && len(indices) >= 3 {
		generateNormals(vertices, indices)
	}
	if !hasTangents && len(indices) >= 3 {
		generateTangents(vertices, indices)
	}

	imported.Vertices = vertices
	imported.Indices = indices
	imported.BoundingMin, imported.BoundingMax = model.ComputeBounds(vertices)
	return imported, nil
}

// readAttribute calls read with the accessor of the named attribute when present.
func (e *gltfMeshExtractorImpl) readAttribute(prim *gltfPrimitive, semantic string, read func(accessor int) error) (bool, error) {
	acc, ok := prim.Attributes[semantic]
	if !ok {
		return false, nil
	}
	if err := read(acc); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", semantic, err)
	}
	return true, nil
}

// generateNormals computes smooth vertex normals by accumulating area-weighted face
// normals onto each triangle corner and normalizing the sums.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer
func generateNormals(vertices []model.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		tri := [3]uint32{indices[i], indices[i+1], indices[i+2]}
		p0 := mgl32.Vec3(vertices[tri[0]].Position)
		p1 := mgl32.Vec3(vertices[tri[1]].Position)
		p2 := mgl32.Vec3(vertices[tri[2]].Position)

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range tri {
			accum[idx] = accum[idx].Add(face)
		}
	}

	for i, n := range accum {
		if n.Len() < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = n.Normalize()
	}
}

// generateTangents computes per-vertex tangents from the UV gradients of each triangle,
// orthonormalized against the vertex normal. W stores the bitangent handedness.
//
// Parameters:
//   - vertices: the vertex slice to write tangent data into
//   - indices: the triangle index buffer
func generateTangents(vertices []model.Vertex, indices []uint32) {
	tan := make([]mgl32.Vec3, len(vertices))
	btan := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		tri := [3]uint32{indices[i], indices[i+1], indices[i+2]}
		v0, v1, v2 := &vertices[tri[0]], &vertices[tri[1]], &vertices[tri[2]]

		edge1 := mgl32.Vec3(v1.Position).Sub(v0.Position)
		edge2 := mgl32.Vec3(v2.Position).Sub(v0.Position)
		duv1 := mgl32.Vec2(v1.TexCoord).Sub(v0.TexCoord)
		duv2 := mgl32.Vec2(v2.TexCoord).Sub(v0.TexCoord)

		det := duv1.X()*duv2.Y() - duv1.Y()*duv2.X()
		if det == 0 {
			continue
		}
		inv := 1 / det

		t := edge1.Mul(duv2.Y()).Sub(edge2.Mul(duv1.Y())).Mul(inv)
		b := edge2.Mul(duv1.X()).Sub(edge1.Mul(duv2.X())).Mul(inv)
		for _, idx := range tri {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		// Gram-Schmidt
		ortho := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			vertices[i].Tangent = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho = ortho.Normalize()

		w := float32(1)
		if n.Cross(ortho).Dot(btan[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = ortho.Vec4(w)
	}
}
