package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type tag struct{ Name string }

func TestSpawnDespawn(t *testing.T) {
	r := NewRegistry(WithCapacity(4))

	a := r.Spawn()
	b := r.Spawn()
	assert.NotEqual(t, Invalid, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	Insert(r, a, position{1, 2})
	assert.True(t, r.Despawn(a))
	assert.False(t, r.Alive(a))
	assert.False(t, Has[position](r, a))
	assert.False(t, r.Despawn(a), "second despawn is a no-op")

	c := r.Spawn()
	assert.NotEqual(t, a, c, "ids are never reused")
}

func TestInsertOnDeadEntityPanics(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn()
	r.Despawn(e)
	assert.Panics(t, func() { Insert(r, e, tag{"x"}) })
}

func TestComponentTables(t *testing.T) {
	r := NewRegistry()
	e := r.Spawn()

	_, ok := Get[position](r, e)
	assert.False(t, ok)

	Insert(r, e, position{1, 1})
	p, ok := Get[position](r, e)
	require.True(t, ok)
	p.X = 5

	p, _ = Get[position](r, e)
	assert.Equal(t, float32(5), p.X, "Get returns a pointer into the table")

	Insert(r, e, position{7, 7})
	assert.Equal(t, 1, Count[position](r), "insert replaces")

	assert.True(t, Remove[position](r, e))
	assert.False(t, Remove[position](r, e))
}

func TestRemovalPreservesOrder(t *testing.T) {
	r := NewRegistry()
	var es []Entity
	for i := 0; i < 4; i++ {
		e := r.Spawn()
		Insert(r, e, tag{string(rune('a' + i))})
		es = append(es, e)
	}

	Remove[tag](r, es[1])

	var names []string
	Each(r, func(_ Entity, tg *tag) { names = append(names, tg.Name) })
	assert.Equal(t, []string{"a", "c", "d"}, names)

	p, ok := Get[tag](r, es[3])
	require.True(t, ok)
	assert.Equal(t, "d", p.Name, "index is rebuilt after shifting")
}

func TestEachIntersections(t *testing.T) {
	r := NewRegistry()
	a, b, c := r.Spawn(), r.Spawn(), r.Spawn()
	Insert(r, a, position{})
	Insert(r, a, tag{"a"})
	Insert(r, b, position{})
	Insert(r, c, tag{"c"})
	Insert(r, c, position{})

	var got []Entity
	Each2(r, func(e Entity, _ *position, _ *tag) { got = append(got, e) })
	assert.Equal(t, []Entity{a, c}, got)

	got = got[:0]
	Each3(r, func(e Entity, _ *position, _ *tag, _ *position) { got = append(got, e) })
	assert.Equal(t, []Entity{a, c}, got)

	assert.Equal(t, []Entity{a, c}, Entities[tag](r))
}

func TestEachToleratesRemovalDuringIteration(t *testing.T) {
	r := NewRegistry()
	a, b := r.Spawn(), r.Spawn()
	Insert(r, a, tag{"a"})
	Insert(r, b, tag{"b"})

	var visited []Entity
	Each(r, func(e Entity, _ *tag) {
		visited = append(visited, e)
		Remove[tag](r, b)
	})
	assert.Equal(t, []Entity{a}, visited)
}

func TestHierarchy(t *testing.T) {
	r := NewRegistry()
	root, a, b := r.Spawn(), r.Spawn(), r.Spawn()

	require.NoError(t, r.SetParent(a, root))
	require.NoError(t, r.SetParent(b, root))
	assert.Equal(t, []Entity{a, b}, r.Children(root))
	assert.Equal(t, []Entity{root}, r.Roots())

	p, ok := r.Parent(a)
	require.True(t, ok)
	assert.Equal(t, root, p)

	// reparent b under a: removed from root's children
	require.NoError(t, r.SetParent(b, a))
	assert.Equal(t, []Entity{a}, r.Children(root))
	assert.Equal(t, []Entity{b}, r.Children(a))

	// idempotent
	require.NoError(t, r.SetParent(b, a))
	assert.Equal(t, []Entity{b}, r.Children(a))

	r.RemoveParent(b)
	_, ok = r.Parent(b)
	assert.False(t, ok)
	assert.Nil(t, r.Children(a))
	assert.Equal(t, []Entity{root, b}, r.Roots())
}

func TestHierarchyRejectsCycles(t *testing.T) {
	r := NewRegistry()
	root, a, b := r.Spawn(), r.Spawn(), r.Spawn()
	require.NoError(t, r.SetParent(a, root))
	require.NoError(t, r.SetParent(b, a))

	assert.ErrorIs(t, r.SetParent(root, b), ErrHierarchyCycle)
	assert.ErrorIs(t, r.SetParent(a, a), ErrHierarchyCycle)

	// the failed calls left the tree untouched
	assert.Equal(t, []Entity{root}, r.Roots())
	assert.Equal(t, []Entity{b}, r.Children(a))
}

func TestHierarchyDeadEntities(t *testing.T) {
	r := NewRegistry()
	a, b := r.Spawn(), r.Spawn()
	r.Despawn(b)
	assert.ErrorIs(t, r.SetParent(a, b), ErrEntityNotFound)
	assert.ErrorIs(t, r.SetParent(b, a), ErrEntityNotFound)
}

func TestDespawnOrphansChildren(t *testing.T) {
	r := NewRegistry()
	root, mid, leaf := r.Spawn(), r.Spawn(), r.Spawn()
	require.NoError(t, r.SetParent(mid, root))
	require.NoError(t, r.SetParent(leaf, mid))

	r.Despawn(mid)

	assert.Nil(t, r.Children(root))
	_, ok := r.Parent(leaf)
	assert.False(t, ok)
	assert.Equal(t, []Entity{root, leaf}, r.Roots())
}
