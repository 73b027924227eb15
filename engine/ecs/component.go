package ecs

import (
	"fmt"
	"reflect"
)

// componentStore is the type-erased view of a component table used by Despawn.
type componentStore interface {
	remove(e Entity) bool
	has(e Entity) bool
	len() int
}

// table is a dense, insertion-ordered component table for one component type.
// Removal shifts later rows down so iteration order stays stable between frames.
type table[T any] struct {
	index    map[Entity]int
	entities []Entity
	values   []T
}

func newTable[T any]() *table[T] {
	return &table[T]{index: make(map[Entity]int)}
}

func (t *table[T]) insert(e Entity, v T) {
	if i, ok := t.index[e]; ok {
		t.values[i] = v
		return
	}
	t.index[e] = len(t.entities)
	t.entities = append(t.entities, e)
	t.values = append(t.values, v)
}

func (t *table[T]) get(e Entity) (*T, bool) {
	i, ok := t.index[e]
	if !ok {
		return nil, false
	}
	return &t.values[i], true
}

func (t *table[T]) remove(e Entity) bool {
	i, ok := t.index[e]
	if !ok {
		return false
	}
	delete(t.index, e)

	copy(t.entities[i:], t.entities[i+1:])
	t.entities = t.entities[:len(t.entities)-1]

	var zero T
	copy(t.values[i:], t.values[i+1:])
	t.values[len(t.values)-1] = zero
	t.values = t.values[:len(t.values)-1]

	for j := i; j < len(t.entities); j++ {
		t.index[t.entities[j]] = j
	}
	return true
}

func (t *table[T]) has(e Entity) bool {
	_, ok := t.index[e]
	return ok
}

func (t *table[T]) len() int {
	return len(t.entities)
}

func (t *table[T]) snapshot() []Entity {
	out := make([]Entity, len(t.entities))
	copy(out, t.entities)
	return out
}

// tableFor returns the table for T, creating it when create is set.
// Panics if r was not created by NewRegistry.
func tableFor[T any](r Registry, create bool) *table[T] {
	impl, ok := r.(*registry)
	if !ok {
		panic(fmt.Sprintf("ecs: unsupported Registry implementation %T", r))
	}
	key := reflect.TypeFor[T]()
	if s, ok := impl.stores[key]; ok {
		return s.(*table[T])
	}
	if !create {
		return nil
	}
	t := newTable[T]()
	impl.stores[key] = t
	return t
}

// Insert attaches component c to e, replacing any existing component of the same type.
// Panics if e is not alive.
//
// Parameters:
//   - r: the registry
//   - e: the target entity
//   - c: the component value
func Insert[T any](r Registry, e Entity, c T) {
	if !r.Alive(e) {
		panic(fmt.Sprintf("ecs: insert %s on dead entity %d", reflect.TypeFor[T](), e))
	}
	tableFor[T](r, true).insert(e, c)
}

// Get returns a pointer to e's component of type T. The pointer stays valid
// until the next Insert or Remove of the same component type.
//
// Parameters:
//   - r: the registry
//   - e: the entity to query
//
// Returns:
//   - *T: the component, or nil
//   - bool: true if e has the component
func Get[T any](r Registry, e Entity) (*T, bool) {
	t := tableFor[T](r, false)
	if t == nil {
		return nil, false
	}
	return t.get(e)
}

// Has reports whether e has a component of type T.
//
// Parameters:
//   - r: the registry
//   - e: the entity to query
//
// Returns:
//   - bool: true if the component is present
func Has[T any](r Registry, e Entity) bool {
	t := tableFor[T](r, false)
	return t != nil && t.has(e)
}

// Remove detaches e's component of type T.
//
// Parameters:
//   - r: the registry
//   - e: the entity to modify
//
// Returns:
//   - bool: true if a component was removed
func Remove[T any](r Registry, e Entity) bool {
	t := tableFor[T](r, false)
	return t != nil && t.remove(e)
}

// Count returns how many entities carry a component of type T.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - int: the number of components of type T
func Count[T any](r Registry) int {
	t := tableFor[T](r, false)
	if t == nil {
		return 0
	}
	return t.len()
}

// Entities returns the entities carrying T, in insertion order.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - []Entity: a snapshot of the entities with component T
func Entities[T any](r Registry) []Entity {
	t := tableFor[T](r, false)
	if t == nil {
		return nil
	}
	return t.snapshot()
}

// Each calls fn for every entity carrying T, in insertion order. fn may insert or
// remove components; entities that lose T before being visited are skipped.
//
// Parameters:
//   - r: the registry
//   - fn: callback receiving the entity and its component
func Each[T any](r Registry, fn func(Entity, *T)) {
	t := tableFor[T](r, false)
	if t == nil {
		return
	}
	for _, e := range t.snapshot() {
		if c, ok := t.get(e); ok {
			fn(e, c)
		}
	}
}

// Each2 calls fn for every entity carrying both A and B, in A's insertion order.
//
// Parameters:
//   - r: the registry
//   - fn: callback receiving the entity and both components
func Each2[A, B any](r Registry, fn func(Entity, *A, *B)) {
	ta, tb := tableFor[A](r, false), tableFor[B](r, false)
	if ta == nil || tb == nil {
		return
	}
	for _, e := range ta.snapshot() {
		a, ok := ta.get(e)
		if !ok {
			continue
		}
		b, ok := tb.get(e)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

// Each3 calls fn for every entity carrying A, B and C, in A's insertion order.
//
// Parameters:
//   - r: the registry
//   - fn: callback receiving the entity and the three components
func Each3[A, B, C any](r Registry, fn func(Entity, *A, *B, *C)) {
	ta, tb, tc := tableFor[A](r, false), tableFor[B](r, false), tableFor[C](r, false)
	if ta == nil || tb == nil || tc == nil {
		return
	}
	for _, e := range ta.snapshot() {
		a, ok := ta.get(e)
		if !ok {
			continue
		}
		b, ok := tb.get(e)
		if !ok {
			continue
		}
		c, ok := tc.get(e)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}
