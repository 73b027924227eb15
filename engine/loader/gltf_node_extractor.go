package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// gltfNodeExtractorImpl is the implementation of the gltfNodeExtractor interface.
type gltfNodeExtractorImpl struct {
	parser gltfParser
	logger *zap.Logger
}

// gltfNodeExtractor converts the glTF node hierarchy and cameras of a parsed document.
type gltfNodeExtractor interface {
	// ExtractCameras converts the perspective cameras of the document. Orthographic
	// cameras are skipped with a warning.
	//
	// Returns:
	//   - []model.ImportedCamera: the converted cameras
	//   - []int: for each glTF camera, its index in the returned slice or -1 when skipped
	ExtractCameras() ([]model.ImportedCamera, []int)

	// ExtractNodes converts every node and resolves the scene roots.
	//
	// Parameters:
	//   - primitives: for each glTF mesh, the flat indices of its primitives
	//   - cameras: for each glTF camera, its converted index or -1
	//
	// Returns:
	//   - []model.ImportedNode: the node table in document order
	//   - []int: the root node indices
	//   - error: error if a node references a missing mesh, camera or child
	ExtractNodes(primitives [][]int, cameras []int) ([]model.ImportedNode, []int, error)
}

var _ gltfNodeExtractor = &gltfNodeExtractorImpl{}

// newGLTFNodeExtractor creates a new node extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - logger: receives warnings about skipped cameras
//
// Returns:
//   - gltfNodeExtractor: the node extractor
func newGLTFNodeExtractor(parser gltfParser, logger *zap.Logger) gltfNodeExtractor {
	return &gltfNodeExtractorImpl{parser: parser, logger: logger}
}

func (e *gltfNodeExtractorImpl) ExtractCameras() ([]model.ImportedCamera, []int) {
	doc := e.parser.Document()
	var cameras []model.ImportedCamera
	mapping := make([]int, len(doc.Cameras))

	for i, c := range doc.Cameras {
		mapping[i] = -1
		if c.Type != gltfCameraPerspective || c.Perspective == nil {
			e.logger.Warn("skipping unsupported camera", zap.String("camera", c.Name), zap.String("type", c.Type))
			continue
		}

		ic := model.ImportedCamera{
			Name:  c.Name,
			YFov:  c.Perspective.YFov,
			ZNear: c.Perspective.ZNear,
		}
		if c.Perspective.AspectRatio != nil {
			ic.AspectRatio = *c.Perspective.AspectRatio
		}
		// an infinite projection keeps the camera's default far plane
		if c.Perspective.ZFar != nil {
			ic.ZFar = *c.Perspective.ZFar
		}
		mapping[i] = len(cameras)
		cameras = append(cameras, ic)
	}
	return cameras, mapping
}

func (e *gltfNodeExtractorImpl) ExtractNodes(primitives [][]int, cameras []int) ([]model.ImportedNode, []int, error) {
	doc := e.parser.Document()
	nodes := make([]model.ImportedNode, len(doc.Nodes))
	hasParent := make([]bool, len(doc.Nodes))

	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		out := model.ImportedNode{
			Name:   n.Name,
			Local:  gltfExtractNodeTransform(n),
			Camera: -1,
		}

		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(primitives) {
				return nil, nil, fmt.Errorf("node %d: mesh index %d out of range", i, *n.Mesh)
			}
			out.Meshes = append([]int(nil), primitives[*n.Mesh]...)
		}
		if n.Camera != nil {
			if *n.Camera < 0 || *n.Camera >= len(cameras) {
				return nil, nil, fmt.Errorf("node %d: camera index %d out of range", i, *n.Camera)
			}
			out.Camera = cameras[*n.Camera]
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			hasParent[c] = true
		}
		out.Children = append([]int(nil), n.Children...)
		nodes[i] = out
	}

	return nodes, e.roots(hasParent), nil
}

// roots picks the default scene, then the first scene, then every parentless node.
func (e *gltfNodeExtractorImpl) roots(hasParent []bool) []int {
	doc := e.parser.Document()
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return append([]int(nil), doc.Scenes[idx].Nodes...)
	}

	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfExtractNodeTransform reads the local transform of a node. A matrix takes precedence
// over TRS properties.
func gltfExtractNodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return gltfDecomposeMatrix(mgl32.Mat4(*node.Matrix))
	}

	t := model.IdentityTransform()
	if node.Translation != nil {
		t.Translation = *node.Translation
	}
	if node.Rotation != nil {
		t.Rotation = *node.Rotation
	}
	if node.Scale != nil {
		t.Scale = *node.Scale
	}
	return t
}

// gltfDecomposeMatrix splits a column-major matrix into translation, rotation and scale.
// Shear is not representable and is dropped.
func gltfDecomposeMatrix(m mgl32.Mat4) model.Transform {
	t := model.IdentityTransform()
	t.Translation = m.Col(3).Vec3()

	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	t.Scale = scale

	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		s := scale[c]
		if s < 1e-4 {
			s = 1
		}
		rot.SetCol(c, m.Col(c).Vec3().Mul(1/s).Vec4(0))
	}

	q := mgl32.Mat4ToQuat(rot).Normalize()
	t.Rotation = [4]float32{q.V.X(), q.V.Y(), q.V.Z(), q.W}
	return t
}
