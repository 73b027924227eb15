package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnNode(t *testing.T, reg ecs.Registry, parent ecs.Entity, tr Transform) ecs.Entity {
	t.Helper()
	e := reg.Spawn()
	ecs.Insert(reg, e, tr)
	ecs.Insert(reg, e, GlobalTransform{Matrix: mgl32.Ident4()})
	if parent != ecs.Invalid {
		require.NoError(t, reg.SetParent(e, parent))
	}
	return e
}

func global(t *testing.T, reg ecs.Registry, e ecs.Entity) mgl32.Mat4 {
	t.Helper()
	g, ok := ecs.Get[GlobalTransform](reg, e)
	require.True(t, ok)
	return g.Matrix
}

func TestPropagateTransformsChainTranslation(t *testing.T) {
	reg := ecs.NewRegistry()
	root := spawnNode(t, reg, ecs.Invalid, FromTranslation(mgl32.Vec3{1, 0, 0}))
	a := spawnNode(t, reg, root, FromTranslation(mgl32.Vec3{0, 2, 0}))
	b := spawnNode(t, reg, a, FromTranslation(mgl32.Vec3{0, 0, 3}))

	PropagateTransforms(reg)

	pos := common.Translation(global(t, reg, b))
	assert.InDelta(t, 1, pos.X(), 1e-5)
	assert.InDelta(t, 2, pos.Y(), 1e-5)
	assert.InDelta(t, 3, pos.Z(), 1e-5)
}

func TestPropagateTransformsComposesRotationAndScale(t *testing.T) {
	reg := ecs.NewRegistry()

	rootTr := NewTransform()
	rootTr.Translation = mgl32.Vec3{5, 0, 0}
	rootTr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	root := spawnNode(t, reg, ecs.Invalid, rootTr)

	childTr := NewTransform()
	childTr.Translation = mgl32.Vec3{1, 0, 0}
	childTr.Scale = mgl32.Vec3{2, 2, 2}
	child := spawnNode(t, reg, root, childTr)

	leaf := spawnNode(t, reg, child, FromTranslation(mgl32.Vec3{0, 0, 1}))

	PropagateTransforms(reg)

	assert.True(t, common.ApproxEqualMat4(rootTr.Matrix(), global(t, reg, root), 1e-5), "root equals its local matrix")

	want := rootTr.Matrix().Mul4(childTr.Matrix()).Mul4(FromTranslation(mgl32.Vec3{0, 0, 1}).Matrix())
	assert.True(t, common.ApproxEqualMat4(want, global(t, reg, leaf), 1e-5))

	// +X rotated 90 degrees about Y points to -Z
	pos := common.Translation(global(t, reg, child))
	assert.InDelta(t, 5, pos.X(), 1e-5)
	assert.InDelta(t, -1, pos.Z(), 1e-5)
}

func TestPropagateTransformsFollowsReparent(t *testing.T) {
	reg := ecs.NewRegistry()
	a := spawnNode(t, reg, ecs.Invalid, FromTranslation(mgl32.Vec3{10, 0, 0}))
	b := spawnNode(t, reg, ecs.Invalid, FromTranslation(mgl32.Vec3{0, 10, 0}))
	c := spawnNode(t, reg, a, FromTranslation(mgl32.Vec3{1, 1, 1}))

	PropagateTransforms(reg)
	assert.Equal(t, mgl32.Vec3{11, 1, 1}, common.Translation(global(t, reg, c)))

	require.NoError(t, reg.SetParent(c, b))
	PropagateTransforms(reg)
	assert.Equal(t, mgl32.Vec3{1, 11, 1}, common.Translation(global(t, reg, c)))
}

func TestPropagateTransformsPanicsOnMissingComponents(t *testing.T) {
	reg := ecs.NewRegistry()
	root := spawnNode(t, reg, ecs.Invalid, NewTransform())

	bare := reg.Spawn()
	require.NoError(t, reg.SetParent(bare, root))
	assert.PanicsWithValue(t,
		"scene: entity 2 has parent 1 but no Transform",
		func() { PropagateTransforms(reg) })

	ecs.Insert(reg, bare, NewTransform())
	assert.Panics(t, func() { PropagateTransforms(reg) }, "GlobalTransform still missing")
}

func TestPropagateVisibility(t *testing.T) {
	tests := []struct {
		name       string
		root       Visibility
		child      Visibility
		grandchild Visibility
		want       [3]InheritedVisibility
	}{
		{
			name:       "hidden child hides inherited grandchild",
			root:       VisibilityVisible,
			child:      VisibilityHidden,
			grandchild: VisibilityInherited,
			want:       [3]InheritedVisibility{InheritedVisible, InheritedHidden, InheritedHidden},
		},
		{
			name:       "explicit visible is not hidden by hidden parent",
			root:       VisibilityHidden,
			child:      VisibilityVisible,
			grandchild: VisibilityInherited,
			want:       [3]InheritedVisibility{InheritedHidden, InheritedVisible, InheritedVisible},
		},
		{
			name:       "inherited root resolves visible",
			root:       VisibilityInherited,
			child:      VisibilityInherited,
			grandchild: VisibilityHidden,
			want:       [3]InheritedVisibility{InheritedVisible, InheritedVisible, InheritedHidden},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := ecs.NewRegistry()
			root := spawnNode(t, reg, ecs.Invalid, NewTransform())
			child := spawnNode(t, reg, root, NewTransform())
			grandchild := spawnNode(t, reg, child, NewTransform())
			ecs.Insert(reg, root, tt.root)
			ecs.Insert(reg, child, tt.child)
			ecs.Insert(reg, grandchild, tt.grandchild)

			PropagateVisibility(reg)

			for i, e := range []ecs.Entity{root, child, grandchild} {
				iv, ok := ecs.Get[InheritedVisibility](reg, e)
				require.True(t, ok)
				assert.Equal(t, tt.want[i], *iv, "entity %d", i)
			}
		})
	}
}

func TestPropagateVisibilityDefaultsAndUpdates(t *testing.T) {
	reg := ecs.NewRegistry()
	root := reg.Spawn()
	child := reg.Spawn()
	require.NoError(t, reg.SetParent(child, root))

	PropagateVisibility(reg)
	assert.True(t, IsVisible(reg, child), "no Visibility component means inherited")

	ecs.Insert(reg, root, VisibilityHidden)
	PropagateVisibility(reg)
	assert.False(t, IsVisible(reg, root))
	assert.False(t, IsVisible(reg, child))

	*mustGet[Visibility](t, reg, root) = VisibilityInherited
	PropagateVisibility(reg)
	assert.True(t, IsVisible(reg, child))
}

func TestPropagateVisibilityExplicitVisibleUnderHiddenRoot(t *testing.T) {
	reg := ecs.NewRegistry()
	root := reg.Spawn()
	child := reg.Spawn()
	require.NoError(t, reg.SetParent(child, root))
	ecs.Insert(reg, root, VisibilityHidden)
	ecs.Insert(reg, child, VisibilityVisible)

	PropagateVisibility(reg)
	assert.False(t, IsVisible(reg, root))
	assert.True(t, IsVisible(reg, child))

	*mustGet[Visibility](t, reg, child) = VisibilityInherited
	PropagateVisibility(reg)
	assert.False(t, IsVisible(reg, child))
}

func mustGet[T any](t *testing.T, reg ecs.Registry, e ecs.Entity) *T {
	t.Helper()
	v, ok := ecs.Get[T](reg, e)
	require.True(t, ok)
	return v
}
