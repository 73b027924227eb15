package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/assets"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"go.uber.org/zap"
)

// Scene ties a registry to the asset library its entities reference and spawns imported
// documents into it.
type Scene interface {
	// Name retrieves the scene's name.
	Name() string

	// Registry retrieves the registry holding the scene's entities.
	//
	// Returns:
	//   - ecs.Registry: the registry
	Registry() ecs.Registry

	// Library retrieves the asset library MeshRef and MaterialRef ids point into.
	//
	// Returns:
	//   - assets.Library: the library
	Library() assets.Library

	// Spawn imports a document into the library and mirrors its node hierarchy as
	// entities. Every node gets Transform, GlobalTransform and Name; mesh primitives
	// become MeshRef and MaterialRef (one child entity per primitive when a node holds
	// several); camera nodes get a Camera. The first camera spawned while no camera is
	// active becomes the active one.
	//
	// Parameters:
	//   - m: the imported document
	//
	// Returns:
	//   - ecs.Entity: the document root entity, named after the model
	//   - error: an error if the import fails or the node table is malformed
	Spawn(m *model.ImportedModel) (ecs.Entity, error)

	// SpawnEntity spawns one entity with Transform, GlobalTransform and whatever the
	// options add.
	//
	// Parameters:
	//   - options: the entity options
	//
	// Returns:
	//   - ecs.Entity: the new entity
	SpawnEntity(options ...EntityBuilderOption) ecs.Entity

	// Propagate runs PropagateTransforms then PropagateVisibility over the registry.
	Propagate()
}

// scene is the implementation of the Scene interface.
type scene struct {
	name     string
	logger   *zap.Logger
	registry ecs.Registry
	library  assets.Library
}

var _ Scene = &scene{}

// NewScene creates a Scene over the given library. A fresh registry is created unless
// WithRegistry supplies one.
//
// Parameters:
//   - name: the scene name
//   - library: the asset library; must not be nil
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, library assets.Library, options ...SceneBuilderOption) Scene {
	if library == nil {
		panic("scene: library must not be nil")
	}
	s := &scene{
		name:    name,
		logger:  zap.NewNop(),
		library: library,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.registry == nil {
		s.registry = ecs.NewRegistry()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Registry() ecs.Registry {
	return s.registry
}

func (s *scene) Library() assets.Library {
	return s.library
}

func (s *scene) Propagate() {
	PropagateTransforms(s.registry)
	PropagateVisibility(s.registry)
}

func (s *scene) SpawnEntity(options ...EntityBuilderOption) ecs.Entity {
	b := &entityBuilder{transform: NewTransform(), parent: ecs.Invalid}
	for _, opt := range options {
		opt(b)
	}

	e := s.registry.Spawn()
	ecs.Insert(s.registry, e, b.transform)
	ecs.Insert(s.registry, e, GlobalTransform{Matrix: b.transform.Matrix()})
	if b.name != "" {
		ecs.Insert(s.registry, e, Name(b.name))
	}
	if b.visibility != nil {
		ecs.Insert(s.registry, e, *b.visibility)
	}
	if b.mesh != 0 {
		ecs.Insert(s.registry, e, MeshRef{ID: b.mesh})
		mat := b.material
		if mat == 0 {
			mat = s.library.DefaultMaterial()
		}
		ecs.Insert(s.registry, e, MaterialRef{ID: mat})
	}
	for _, insert := range b.inserts {
		insert(s.registry, e)
	}
	if b.parent != ecs.Invalid {
		if err := s.registry.SetParent(e, b.parent); err != nil {
			panic(fmt.Sprintf("scene: entity %d: %v", e, err))
		}
	}
	return e
}

// spawnState carries one Spawn call through the node walk.
type spawnState struct {
	m        *model.ImportedModel
	imported assets.Imported
	visited  []bool
	cameras  int
}

func (s *scene) Spawn(m *model.ImportedModel) (ecs.Entity, error) {
	if m == nil {
		return ecs.Invalid, errors.New("scene: imported model is nil")
	}
	if err := validateNodes(m); err != nil {
		return ecs.Invalid, fmt.Errorf("scene: %s: %w", m.Name, err)
	}

	imported, err := s.library.Import(m)
	if err != nil {
		return ecs.Invalid, fmt.Errorf("scene: %w", err)
	}

	root := s.SpawnEntity(WithName(m.Name))
	st := &spawnState{m: m, imported: imported, visited: make([]bool, len(m.Nodes))}

	if len(m.Nodes) == 0 {
		// documents without a node table draw every mesh at the origin
		for i := range m.Meshes {
			s.spawnPrimitive(st, root, i)
		}
	}
	for _, idx := range m.Roots {
		if err := s.spawnNode(st, root, idx); err != nil {
			s.despawnTree(root)
			return ecs.Invalid, fmt.Errorf("scene: %s: %w", m.Name, err)
		}
	}

	s.logger.Debug("model spawned",
		zap.String("model", m.Name),
		zap.Uint64("root", uint64(root)),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("cameras", st.cameras),
	)
	return root, nil
}

func (s *scene) spawnNode(st *spawnState, parent ecs.Entity, idx int) error {
	if st.visited[idx] {
		return fmt.Errorf("node %d is reachable twice", idx)
	}
	st.visited[idx] = true
	node := &st.m.Nodes[idx]

	e := s.SpawnEntity(
		WithName(node.Name),
		WithTransform(FromImported(node.Local)),
		WithParent(parent),
	)

	switch len(node.Meshes) {
	case 0:
	case 1:
		s.attachPrimitive(st, e, node.Meshes[0])
	default:
		for _, mi := range node.Meshes {
			s.spawnPrimitive(st, e, mi)
		}
	}

	if node.Camera >= 0 && node.Camera < len(st.m.Cameras) {
		cam := camera.FromImported(st.m.Cameras[node.Camera])
		if _, _, ok := camera.FindActive(s.registry); !ok {
			cam.Active = true
		}
		ecs.Insert(s.registry, e, cam)
		st.cameras++
	}

	for _, child := range node.Children {
		if err := s.spawnNode(st, e, child); err != nil {
			return err
		}
	}
	return nil
}

// spawnPrimitive spawns a child entity with identity transform for one mesh primitive.
func (s *scene) spawnPrimitive(st *spawnState, parent ecs.Entity, meshIndex int) {
	id, mat, ok := st.primitive(meshIndex)
	if !ok {
		return
	}
	s.SpawnEntity(
		WithName(st.m.Meshes[meshIndex].Name),
		WithMesh(id, mat),
		WithParent(parent),
	)
}

func (s *scene) attachPrimitive(st *spawnState, e ecs.Entity, meshIndex int) {
	id, mat, ok := st.primitive(meshIndex)
	if !ok {
		return
	}
	ecs.Insert(s.registry, e, MeshRef{ID: id})
	ecs.Insert(s.registry, e, MaterialRef{ID: mat})
}

func (st *spawnState) primitive(meshIndex int) (resource.ID, resource.ID, bool) {
	if meshIndex < 0 || meshIndex >= len(st.imported.Meshes) {
		return 0, 0, false
	}
	id := st.imported.Meshes[meshIndex]
	if id == 0 {
		return 0, 0, false
	}
	return id, st.imported.MeshMaterials[meshIndex], true
}

func (s *scene) despawnTree(e ecs.Entity) {
	for _, child := range s.registry.Children(e) {
		s.despawnTree(child)
	}
	s.registry.Despawn(e)
}

// validateNodes rejects out of range root and child indices before anything is spawned.
func validateNodes(m *model.ImportedModel) error {
	n := len(m.Nodes)
	for _, r := range m.Roots {
		if r < 0 || r >= n {
			return fmt.Errorf("root index %d out of range", r)
		}
	}
	for i := range m.Nodes {
		for _, c := range m.Nodes[i].Children {
			if c < 0 || c >= n {
				return fmt.Errorf("node %d: child index %d out of range", i, c)
			}
		}
	}
	return nil
}
