package octree

import (
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

func newTestPointOctree(t *testing.T, initialSize float32, center math32.Vector3, minNodeSize float32) *PointOctree[int] {
	t.Helper()
	tree, err := NewPointOctree[int](initialSize, center, minNodeSize, golog.NewTestLogger(t))
	require.NoError(t, err)
	return tree
}

func TestNewPointOctreeValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewPointOctree[int](-1, math32.Vector3{}, 1, logger)
	require.Error(t, err)

	tree, err := NewPointOctree[int](2, math32.Vector3{}, 5, logger)
	require.NoError(t, err)
	require.Equal(t, float32(2), tree.minNodeSize)
}

func TestPointAddRemove(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 1, Y: 2, Z: 3}))
	require.True(t, tree.Add(2, math32.Vector3{X: -4, Y: 0, Z: 4}))
	require.Equal(t, 2, tree.Count())
	require.True(t, tree.Contains(1))
	require.False(t, tree.Contains(3))
	checkPointInvariants(t, tree)

	require.True(t, tree.Remove(1))
	require.False(t, tree.Remove(1))
	require.Equal(t, 1, tree.Count())
	checkPointInvariants(t, tree)
}

func TestPointSplitAndMergeRoundTrip(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	for i := 0; i < 9; i++ {
		require.True(t, tree.Add(i, math32.Vector3{X: float32(i)*0.3 - 1, Y: 1, Z: 1}))
		checkPointInvariants(t, tree)
	}
	require.NotNil(t, tree.root.children)
	// Points always migrate on split, the node keeps none itself.
	require.Empty(t, tree.root.entries)

	for i := 0; i < 9; i++ {
		require.True(t, tree.Remove(i))
		checkPointInvariants(t, tree)
	}
	require.Equal(t, 0, tree.Count())
	require.Nil(t, tree.root.children)
}

func TestGetNearbyMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	points := make(map[int]math32.Vector3, 1000)
	for i := 0; i < 1000; i++ {
		p := math32.Vector3{
			X: rng.Float32()*10 - 5,
			Y: rng.Float32()*10 - 5,
			Z: rng.Float32()*10 - 5,
		}
		points[i] = p
		require.True(t, tree.Add(i, p))
	}
	require.Equal(t, 1000, tree.Count())
	checkPointInvariants(t, tree)

	center := math32.Vector3{}
	var want []int
	for i, p := range points {
		if p.Distance(center) <= 1.0 {
			want = append(want, i)
		}
	}
	require.ElementsMatch(t, want, tree.GetNearby(center, 1.0))

	for _, m := range tree.GetNearbyWithDistances(center, 1.0) {
		require.Equal(t, points[m.Obj], m.Point)
		require.InDelta(t, float64(m.Point.DistanceSquared(center)), float64(m.DistSq), 1e-6)
		require.LessOrEqual(t, m.DistSq, float32(1.0))
	}
}

func TestGetNearbyRay(t *testing.T) {
	tree := newTestPointOctree(t, 20, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 5, Y: 0.5, Z: 0}))
	require.True(t, tree.Add(2, math32.Vector3{X: -3, Y: 2, Z: 0}))
	require.True(t, tree.Add(3, math32.Vector3{X: 2, Y: 0, Z: 0.25}))

	ray := geometry.Ray{Origin: math32.Vector3{X: -10, Y: 0, Z: 0}, Dir: math32.Vector3{X: 1, Y: 0, Z: 0}}
	require.ElementsMatch(t, []int{1, 3}, tree.GetNearbyRay(ray, 1.0))
	require.ElementsMatch(t, []int{1, 2, 3}, tree.GetNearbyRay(ray, 2.5))
	require.ElementsMatch(t, []int{3}, tree.GetNearbyRay(ray, 0.3))

	matches := tree.GetNearbyRayWithDistances(ray, 1.0)
	for _, m := range matches {
		perp := ray.Dir.Cross(m.Point.Sub(ray.Origin)).LengthSquared()
		require.InDelta(t, float64(perp), float64(m.DistSq), 1e-6)
	}
}

func TestPointMove(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 1, Y: 1, Z: 1}))
	require.Equal(t, MoveResultMoved, tree.Move(1, math32.Vector3{X: -1, Y: -1, Z: -1}))
	checkPointInvariants(t, tree)

	require.ElementsMatch(t, []int{1}, tree.GetNearby(math32.Vector3{X: -1, Y: -1, Z: -1}, 0.1))
	require.Empty(t, tree.GetNearby(math32.Vector3{X: 1, Y: 1, Z: 1}, 0.1))

	require.Equal(t, MoveResultNone, tree.Move(9, math32.Vector3{}))
}

func TestPointMoveMatchesRemoveThenAdd(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	moved := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)
	rebuilt := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	randomPoint := func() math32.Vector3 {
		return math32.Vector3{
			X: rng.Float32()*10 - 5,
			Y: rng.Float32()*10 - 5,
			Z: rng.Float32()*10 - 5,
		}
	}

	for i := 0; i < 80; i++ {
		p := randomPoint()
		require.True(t, moved.Add(i, p))
		require.True(t, rebuilt.Add(i, p))
	}
	for i := 0; i < 80; i += 3 {
		p := randomPoint()
		require.NotEqual(t, MoveResultNone, moved.Move(i, p))
		require.True(t, rebuilt.Remove(i))
		require.True(t, rebuilt.Add(i, p))
	}
	checkPointInvariants(t, moved)
	checkPointInvariants(t, rebuilt)

	require.Equal(t, rebuilt.Count(), moved.Count())
	require.ElementsMatch(t, rebuilt.GetAll(), moved.GetAll())
	for q := 0; q < 20; q++ {
		p := randomPoint()
		require.ElementsMatch(t, rebuilt.GetNearby(p, 2), moved.GetNearby(p, 2), "query %d", q)
	}
}

func TestPointGrowTowardFarPoint(t *testing.T) {
	tree := newTestPointOctree(t, 4, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))
	require.True(t, tree.Add(2, math32.Vector3{X: -30, Y: 0, Z: 0}))
	require.Equal(t, 2, tree.Count())
	require.Less(t, tree.root.box.Center.X, float32(0))
	checkPointInvariants(t, tree)

	require.ElementsMatch(t, []int{2}, tree.GetNearby(math32.Vector3{X: -30, Y: 0, Z: 0}, 0.5))
	require.ElementsMatch(t, []int{1}, tree.GetNearby(math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, 0.5))
}

func TestGetClosest(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	_, ok := tree.GetClosest(math32.Vector3{})
	require.False(t, ok)

	require.True(t, tree.Add(1, math32.Vector3{X: 4, Y: 4, Z: 4}))
	require.True(t, tree.Add(2, math32.Vector3{X: 1, Y: 0, Z: 0}))
	require.True(t, tree.Add(3, math32.Vector3{X: -2, Y: -2, Z: 0}))

	obj, ok := tree.GetClosest(math32.Vector3{})
	require.True(t, ok)
	require.Equal(t, 2, obj)

	// Filters apply inside the expansion search.
	obj, ok = tree.GetClosest(math32.Vector3{}, func(o int, _ math32.Vector3) bool { return o != 2 })
	require.True(t, ok)
	require.Equal(t, 3, obj)

	// A far query point still finds the tree.
	obj, ok = tree.GetClosest(math32.Vector3{X: 100, Y: 100, Z: 100})
	require.True(t, ok)
	require.Equal(t, 1, obj)
}

func TestGetNearbyN(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	points := make(map[int]math32.Vector3, 200)
	for i := 0; i < 200; i++ {
		p := math32.Vector3{
			X: rng.Float32()*10 - 5,
			Y: rng.Float32()*10 - 5,
			Z: rng.Float32()*10 - 5,
		}
		points[i] = p
		require.True(t, tree.Add(i, p))
	}

	center := math32.Vector3{X: 1, Y: -1, Z: 0}
	matches := tree.GetNearbyN(center, 10)
	require.Len(t, matches, 10)
	for i := 1; i < len(matches); i++ {
		require.LessOrEqual(t, matches[i-1].DistSq, matches[i].DistSq)
	}
	// The 10th result is at least as close as every unreturned point.
	returned := make(map[int]bool, len(matches))
	for _, m := range matches {
		returned[m.Obj] = true
	}
	worst := matches[len(matches)-1].DistSq
	for i, p := range points {
		if !returned[i] {
			require.GreaterOrEqual(t, p.DistanceSquared(center), worst)
		}
	}

	require.Empty(t, tree.GetNearbyN(center, 0))
	require.Len(t, tree.GetNearbyN(center, 500), 200)
}

func TestGetClosestAlongRay(t *testing.T) {
	tree := newTestPointOctree(t, 20, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 5, Y: 1, Z: 0}))
	require.True(t, tree.Add(2, math32.Vector3{X: 3, Y: 0.2, Z: 0}))
	require.True(t, tree.Add(3, math32.Vector3{X: 0, Y: 8, Z: 0}))

	ray := geometry.Ray{Origin: math32.Vector3{X: -10, Y: 0, Z: 0}, Dir: math32.Vector3{X: 1, Y: 0, Z: 0}}
	obj, ok := tree.GetClosestAlongRay(ray, 2)
	require.True(t, ok)
	require.Equal(t, 2, obj)

	_, ok = tree.GetClosestAlongRay(ray, 0.1)
	require.False(t, ok)
}

func TestPointFindBestMatch(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	require.True(t, tree.Add(1, math32.Vector3{X: 2, Y: 0, Z: 0}))
	require.True(t, tree.Add(2, math32.Vector3{X: 0, Y: 3, Z: 0}))

	obj, score, ok := tree.FindBestMatch(func(_ int, p math32.Vector3) (float32, bool) {
		return p.LengthSquared(), true
	}, nil)
	require.True(t, ok)
	require.Equal(t, 1, obj)
	require.InDelta(t, 4.0, float64(score), 1e-5)
}

func TestPointAddOrMove(t *testing.T) {
	tree := newTestPointOctree(t, 10, math32.Vector3{}, 0.5)

	require.True(t, tree.AddOrMove(1, math32.Vector3{X: 1, Y: 1, Z: 1}))
	require.True(t, tree.AddOrMove(1, math32.Vector3{X: -2, Y: 0, Z: 0}))
	require.Equal(t, 1, tree.Count())
	require.ElementsMatch(t, []int{1}, tree.GetNearby(math32.Vector3{X: -2, Y: 0, Z: 0}, 0.1))
}
