package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/o0olele/loose-octree/math32"
)

func TestAABBContains(t *testing.T) {
	aabb := NewCubeAABB(math32.Vector3{}, 4)
	require.True(t, aabb.Contains(math32.Vector3{}))
	require.True(t, aabb.Contains(math32.Vector3{X: 2, Y: 2, Z: 2}))
	require.True(t, aabb.Contains(math32.Vector3{X: -2, Y: 0, Z: 1}))
	require.False(t, aabb.Contains(math32.Vector3{X: 2.1, Y: 0, Z: 0}))
	require.False(t, aabb.Contains(math32.Vector3{X: 0, Y: 0, Z: -3}))
}

func TestAABBEncapsulates(t *testing.T) {
	outer := NewCubeAABB(math32.Vector3{}, 4)
	inner := NewAABB(math32.Vector3{X: 1, Y: 1, Z: 1}, math32.Vector3{X: 1, Y: 1, Z: 1})
	require.True(t, outer.Encapsulates(inner))

	straddling := NewAABB(math32.Vector3{X: 2, Y: 0, Z: 0}, math32.Vector3{X: 1, Y: 1, Z: 1})
	require.False(t, outer.Encapsulates(straddling))
	require.True(t, outer.Intersects(straddling))
}

func TestAABBIntersects(t *testing.T) {
	a := NewCubeAABB(math32.Vector3{}, 2)
	b := NewCubeAABB(math32.Vector3{X: 1.5}, 2)
	c := NewCubeAABB(math32.Vector3{X: 3}, 2)
	require.True(t, a.Intersects(b))
	require.True(t, b.Intersects(c))
	require.False(t, a.Intersects(c))

	// Touching faces count as intersecting.
	d := NewCubeAABB(math32.Vector3{X: 2}, 2)
	require.True(t, a.Intersects(d))
}

func TestAABBCenterAndSize(t *testing.T) {
	aabb := NewAABB(math32.Vector3{X: 1, Y: -2, Z: 3}, math32.Vector3{X: 2, Y: 4, Z: 6})
	require.Equal(t, math32.Vector3{X: 1, Y: -2, Z: 3}, aabb.Center())
	require.Equal(t, math32.Vector3{X: 2, Y: 4, Z: 6}, aabb.Size())
	require.False(t, aabb.IsEmpty())
	require.True(t, (&AABB{}).IsEmpty())
}

func TestAABBClosestPoint(t *testing.T) {
	aabb := NewCubeAABB(math32.Vector3{}, 2)
	require.Equal(t, math32.Vector3{X: 1, Y: 0, Z: 0}, aabb.ClosestPoint(math32.Vector3{X: 5, Y: 0, Z: 0}))
	require.Equal(t, math32.Vector3{X: 1, Y: 1, Z: -1}, aabb.ClosestPoint(math32.Vector3{X: 2, Y: 3, Z: -4}))
	inside := math32.Vector3{X: 0.5, Y: -0.5, Z: 0}
	require.Equal(t, inside, aabb.ClosestPoint(inside))
}

func TestAABBExpand(t *testing.T) {
	aabb := NewCubeAABB(math32.Vector3{}, 2)
	grown := aabb.Expand(1)
	require.Equal(t, math32.Vector3{X: -2, Y: -2, Z: -2}, grown.Min)
	require.Equal(t, math32.Vector3{X: 2, Y: 2, Z: 2}, grown.Max)
}

func TestBoxBounds(t *testing.T) {
	box := Box{Center: math32.Vector3{X: 1, Y: 1, Z: 1}, Size: math32.Vector3{X: 2, Y: 2, Z: 2}}
	bounds := box.GetBounds()
	require.Equal(t, math32.Vector3{X: 0, Y: 0, Z: 0}, bounds.Min)
	require.Equal(t, math32.Vector3{X: 2, Y: 2, Z: 2}, bounds.Max)
	require.True(t, box.ContainsPoint(math32.Vector3{X: 1, Y: 2, Z: 1}))
	require.False(t, box.ContainsPoint(math32.Vector3{X: 3, Y: 1, Z: 1}))
	require.True(t, box.IntersectsAABB(NewCubeAABB(math32.Vector3{}, 1)))
}
