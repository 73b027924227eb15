package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

// PropagateTransforms recomputes every GlobalTransform from the local Transforms.
// Roots are entities with Transform and GlobalTransform and no parent; children are
// visited depth-first in insertion order. A child without Transform or GlobalTransform
// is malformed scene data and panics.
//
// Parameters:
//   - reg: the registry holding the hierarchy
func PropagateTransforms(reg ecs.Registry) {
	for _, root := range reg.Roots() {
		local, ok := ecs.Get[Transform](reg, root)
		if !ok {
			continue
		}
		global, ok := ecs.Get[GlobalTransform](reg, root)
		if !ok {
			continue
		}
		global.Matrix = local.Matrix()
		propagateChildren(reg, root, global.Matrix)
	}
}

func propagateChildren(reg ecs.Registry, parent ecs.Entity, parentMatrix mgl32.Mat4) {
	for _, child := range reg.Children(parent) {
		local, ok := ecs.Get[Transform](reg, child)
		if !ok {
			panic(fmt.Sprintf("scene: entity %d has parent %d but no Transform", child, parent))
		}
		global, ok := ecs.Get[GlobalTransform](reg, child)
		if !ok {
			panic(fmt.Sprintf("scene: entity %d has parent %d but no GlobalTransform", child, parent))
		}
		global.Matrix = parentMatrix.Mul4(local.Matrix())
		propagateChildren(reg, child, global.Matrix)
	}
}

// PropagateVisibility resolves InheritedVisibility top-down. An explicit Hidden or
// Visible resolves to itself regardless of the parent; Inherited takes the parent's
// resolved value, and roots resolve Visible. Missing Visibility counts as Inherited,
// and a missing InheritedVisibility is inserted.
//
// Parameters:
//   - reg: the registry holding the hierarchy
func PropagateVisibility(reg ecs.Registry) {
	for _, root := range reg.Roots() {
		resolveVisibility(reg, root, InheritedVisible)
	}
}

func resolveVisibility(reg ecs.Registry, e ecs.Entity, parent InheritedVisibility) {
	resolved := parent
	if v, ok := ecs.Get[Visibility](reg, e); ok {
		switch *v {
		case VisibilityHidden:
			resolved = InheritedHidden
		case VisibilityVisible:
			resolved = InheritedVisible
		}
	}

	if iv, ok := ecs.Get[InheritedVisibility](reg, e); ok {
		*iv = resolved
	} else {
		ecs.Insert(reg, e, resolved)
	}

	for _, child := range reg.Children(e) {
		resolveVisibility(reg, child, resolved)
	}
}

// IsVisible reports whether e resolved visible on the last propagation. Entities that
// were never resolved count as visible.
//
// Parameters:
//   - reg: the registry
//   - e: the entity to test
//
// Returns:
//   - bool: false only if e resolved Hidden
func IsVisible(reg ecs.Registry, e ecs.Entity) bool {
	iv, ok := ecs.Get[InheritedVisibility](reg, e)
	return !ok || *iv == InheritedVisible
}
