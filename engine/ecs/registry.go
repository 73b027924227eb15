// Package ecs is a small entity/component registry. Entities are stable integer
// ids that are never reused; components live in one table per Go type, and
// parent/child edges are kept by the registry itself so the tree invariants
// (single parent, no cycles, children mirror parents) are enforced when an
// edge changes rather than when the tree is walked.
//
// A Registry is not safe for concurrent use. It belongs to the thread that
// drives the frame.
package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

// Entity is an opaque identifier. The zero value is never handed out.
type Entity uint64

// Invalid is the zero Entity.
const Invalid Entity = 0

var (
	// ErrEntityNotFound is returned when an operation names an entity that is not alive.
	ErrEntityNotFound = errors.New("ecs: entity not found")

	// ErrHierarchyCycle is returned when a new parent edge would make an entity its own ancestor.
	ErrHierarchyCycle = errors.New("ecs: hierarchy cycle")
)

// registry is the implementation of the Registry interface.
type registry struct {
	nextID Entity

	// entities holds live entities in spawn order; alive maps entity to presence.
	entities []Entity
	alive    map[Entity]struct{}

	stores map[reflect.Type]componentStore

	parents  map[Entity]Entity
	children map[Entity][]Entity
}

// Registry owns entity lifetimes, the component tables and the hierarchy edges.
// Component access is through the generic package functions Insert, Get, Has,
// Remove, Each, Each2, Each3 and Entities.
type Registry interface {
	// Spawn creates a new entity with no components.
	//
	// Returns:
	//   - Entity: the new entity id
	Spawn() Entity

	// Despawn removes an entity, all of its components, and its hierarchy edges.
	// Children of the despawned entity are detached and become roots.
	//
	// Parameters:
	//   - e: the entity to remove
	//
	// Returns:
	//   - bool: true if the entity was alive
	Despawn(e Entity) bool

	// Alive reports whether e has been spawned and not despawned.
	//
	// Parameters:
	//   - e: the entity to check
	//
	// Returns:
	//   - bool: true if the entity is alive
	Alive(e Entity) bool

	// Len returns the number of live entities.
	//
	// Returns:
	//   - int: the live entity count
	Len() int

	// SetParent makes parent the parent of child, detaching child from any previous parent.
	// The child is appended to the end of the parent's children.
	//
	// Parameters:
	//   - child: the entity to attach
	//   - parent: the new parent
	//
	// Returns:
	//   - error: ErrEntityNotFound if either entity is dead, ErrHierarchyCycle if parent is child or one of its descendants
	SetParent(child, parent Entity) error

	// RemoveParent detaches child from its parent, making it a root. No-op for roots.
	//
	// Parameters:
	//   - child: the entity to detach
	RemoveParent(child Entity)

	// Parent returns the parent of e.
	//
	// Parameters:
	//   - e: the entity to query
	//
	// Returns:
	//   - Entity: the parent, or Invalid
	//   - bool: true if e has a parent
	Parent(e Entity) (Entity, bool)

	// Children returns a copy of e's children in insertion order.
	//
	// Parameters:
	//   - e: the entity to query
	//
	// Returns:
	//   - []Entity: the children (nil if none)
	Children(e Entity) []Entity

	// Roots returns every live entity without a parent, in spawn order.
	//
	// Returns:
	//   - []Entity: the root entities
	Roots() []Entity
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the new registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		nextID:   Invalid,
		alive:    make(map[Entity]struct{}),
		stores:   make(map[reflect.Type]componentStore),
		parents:  make(map[Entity]Entity),
		children: make(map[Entity][]Entity),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Spawn() Entity {
	r.nextID++
	e := r.nextID
	r.entities = append(r.entities, e)
	r.alive[e] = struct{}{}
	return e
}

func (r *registry) Despawn(e Entity) bool {
	if !r.Alive(e) {
		return false
	}

	r.RemoveParent(e)
	for _, child := range r.children[e] {
		delete(r.parents, child)
	}
	delete(r.children, e)

	for _, s := range r.stores {
		s.remove(e)
	}

	delete(r.alive, e)
	r.entities = removeOrdered(r.entities, e)
	return true
}

func (r *registry) Alive(e Entity) bool {
	_, ok := r.alive[e]
	return ok
}

func (r *registry) Len() int {
	return len(r.entities)
}

func (r *registry) SetParent(child, parent Entity) error {
	if !r.Alive(child) {
		return fmt.Errorf("child %d: %w", child, ErrEntityNotFound)
	}
	if !r.Alive(parent) {
		return fmt.Errorf("parent %d: %w", parent, ErrEntityNotFound)
	}
	if current, ok := r.parents[child]; ok && current == parent {
		return nil
	}

	// Walk up from the new parent; meeting the child means child would become its own ancestor.
	for a, ok := parent, true; ok; a, ok = r.parents[a] {
		if a == child {
			return fmt.Errorf("attach %d under %d: %w", child, parent, ErrHierarchyCycle)
		}
	}

	r.RemoveParent(child)
	r.parents[child] = parent
	r.children[parent] = append(r.children[parent], child)
	return nil
}

func (r *registry) RemoveParent(child Entity) {
	parent, ok := r.parents[child]
	if !ok {
		return
	}
	delete(r.parents, child)
	siblings := removeOrdered(r.children[parent], child)
	if len(siblings) == 0 {
		delete(r.children, parent)
		return
	}
	r.children[parent] = siblings
}

func (r *registry) Parent(e Entity) (Entity, bool) {
	p, ok := r.parents[e]
	return p, ok
}

func (r *registry) Children(e Entity) []Entity {
	kids := r.children[e]
	if len(kids) == 0 {
		return nil
	}
	out := make([]Entity, len(kids))
	copy(out, kids)
	return out
}

func (r *registry) Roots() []Entity {
	roots := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		if _, ok := r.parents[e]; !ok {
			roots = append(roots, e)
		}
	}
	return roots
}

// removeOrdered deletes the first occurrence of e, preserving the order of the rest.
func removeOrdered(list []Entity, e Entity) []Entity {
	for i, v := range list {
		if v == e {
			copy(list[i:], list[i+1:])
			return list[:len(list)-1]
		}
	}
	return list
}
