package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene via NewScene.
type SceneBuilderOption func(s *scene)

// WithLogger sets the logger used for spawn diagnostics.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry makes the scene operate on an existing registry.
//
// Parameters:
//   - reg: the registry
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRegistry(reg ecs.Registry) SceneBuilderOption {
	return func(s *scene) {
		s.registry = reg
	}
}

// entityBuilder collects the components of one SpawnEntity call.
type entityBuilder struct {
	name       string
	transform  Transform
	parent     ecs.Entity
	visibility *Visibility
	mesh       resource.ID
	material   resource.ID
	inserts    []func(reg ecs.Registry, e ecs.Entity)
}

// EntityBuilderOption is a functional option applied by Scene.SpawnEntity.
type EntityBuilderOption func(b *entityBuilder)

// WithName attaches a Name component. Empty names are not attached.
//
// Parameters:
//   - name: the label
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithName(name string) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.name = name
	}
}

// WithTransform sets the local transform. Defaults to identity.
//
// Parameters:
//   - t: the local transform
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithTransform(t Transform) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.transform = t
	}
}

// WithParent attaches the new entity under parent. A dead parent or a cycle panics.
//
// Parameters:
//   - parent: the parent entity
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithParent(parent ecs.Entity) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.parent = parent
	}
}

// WithVisibility attaches an authored Visibility.
//
// Parameters:
//   - v: the visibility
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithVisibility(v Visibility) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.visibility = &v
	}
}

// WithMesh attaches MeshRef and MaterialRef. A zero material id uses the library's
// default material.
//
// Parameters:
//   - mesh: the mesh id
//   - material: the material id, or 0
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithMesh(mesh, material resource.ID) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.mesh = mesh
		b.material = material
	}
}

// WithComponent inserts an arbitrary component, e.g. a light or camera.
//
// Parameters:
//   - c: the component value
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithComponent[T any](c T) EntityBuilderOption {
	return func(b *entityBuilder) {
		b.inserts = append(b.inserts, func(reg ecs.Registry, e ecs.Entity) {
			ecs.Insert(reg, e, c)
		})
	}
}
