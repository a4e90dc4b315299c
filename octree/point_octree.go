package octree

import (
	"sort"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// PointOctree is a dynamic octree indexing entries by position. Points have
// no extent, so it runs without looseness slack.
type PointOctree[T comparable] struct {
	logger      golog.Logger
	root        *pointNode[T]
	initialSize float32
	minNodeSize float32
}

// NewPointOctree creates a point octree covering a cube of side initialSize
// around initialCenter. minNodeSize bounds how small nodes may get and is
// clamped to at most initialSize.
func NewPointOctree[T comparable](initialSize float32, initialCenter math32.Vector3, minNodeSize float32, logger golog.Logger) (*PointOctree[T], error) {
	if logger == nil {
		logger = golog.Global()
	}
	if initialSize <= 0 {
		return nil, errors.Errorf("invalid initial size (%.2f) for octree", initialSize)
	}
	if minNodeSize > initialSize {
		logger.Warnf("minimum node size %.2f exceeds the initial size %.2f, clamping", minNodeSize, initialSize)
		minNodeSize = initialSize
	}

	t := &PointOctree[T]{
		logger:      logger,
		initialSize: initialSize,
		minNodeSize: minNodeSize,
	}
	t.root = newPointNode(t, initialCenter, initialSize)
	return t, nil
}

// Count returns the number of entries in the tree.
func (t *PointOctree[T]) Count() int {
	return t.root.count()
}

// Contains checks if the key is in the tree.
func (t *PointOctree[T]) Contains(obj T) bool {
	return t.root.contains(obj)
}

// Bounds returns the cube of the root.
func (t *PointOctree[T]) Bounds() geometry.AABB {
	return t.root.box.Bounds
}

// LooseBounds returns the loose cube of the root. With no looseness slack it
// equals Bounds; kept for symmetry with BoundsOctree.
func (t *PointOctree[T]) LooseBounds() geometry.AABB {
	return t.root.box.LooseBounds
}

// GetAll returns every key in the tree, in no particular order.
func (t *PointOctree[T]) GetAll() []T {
	all := make([]T, 0, t.Count())
	t.root.eachEntry(func(obj T, _ math32.Vector3) bool {
		all = append(all, obj)
		return true
	})
	return all
}

// Add inserts an entry, growing the tree up to DefaultMaxGrowAttempts times
// when the point falls outside it.
func (t *PointOctree[T]) Add(obj T, point math32.Vector3) bool {
	return t.AddWithGrowLimit(obj, point, DefaultMaxGrowAttempts)
}

// AddWithGrowLimit inserts an entry, doubling the root toward it at most
// maxGrowAttempts times. Zero attempts means a single try with no growth.
func (t *PointOctree[T]) AddWithGrowLimit(obj T, point math32.Vector3, maxGrowAttempts int) bool {
	grown := 0
	for !t.root.add(obj, point) {
		if grown >= maxGrowAttempts {
			t.logger.Errorf("add: %v still outside the tree after %d grow attempts, giving up", obj, grown)
			return false
		}
		t.grow(point.Sub(t.root.box.Center))
		grown++
	}
	return true
}

// Remove deletes an entry and lets emptied nodes merge and the root shrink.
func (t *PointOctree[T]) Remove(obj T) bool {
	removed := t.root.remove(obj, true, true)
	if removed {
		if t.root.shouldMerge() {
			t.root.merge()
		}
		t.shrinkIfPossible()
	}
	return removed
}

// RemoveNoMerge deletes an entry without merging or shrinking.
func (t *PointOctree[T]) RemoveNoMerge(obj T) bool {
	return t.root.remove(obj, true, false)
}

// Move relocates an entry in place where possible. On MoveResultRemoved the
// entry left the tree through the root and a full re-add (with growth) is
// attempted; success upgrades the result to MoveResultMoved.
func (t *PointOctree[T]) Move(obj T, point math32.Vector3) MoveResult {
	result := t.root.move(obj, point, true)
	if result == MoveResultRemoved {
		if t.Add(obj, point) {
			return MoveResultMoved
		}
	}
	return result
}

// AddOrMove relocates the entry if present, inserts it otherwise.
func (t *PointOctree[T]) AddOrMove(obj T, point math32.Vector3) bool {
	switch t.Move(obj, point) {
	case MoveResultMoved:
		return true
	case MoveResultNone:
		return t.Add(obj, point)
	}
	return false
}

// GetNearby returns the keys of all entries within maxDistance of the point.
func (t *PointOctree[T]) GetNearby(point math32.Vector3, maxDistance float32, filters ...PointFilter[T]) []T {
	matches := t.GetNearbyWithDistances(point, maxDistance, filters...)
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.Obj
	}
	return out
}

// GetNearbyWithDistances returns all entries within maxDistance of the point
// together with their positions and squared distances.
func (t *PointOctree[T]) GetNearbyWithDistances(point math32.Vector3, maxDistance float32, filters ...PointFilter[T]) []PointMatch[T] {
	var out []PointMatch[T]
	t.root.getNearby(point, maxDistance, combinePointFilters(filters), &out)
	return out
}

// GetNearbyRay returns the keys of all entries within maxDistance of the
// infinite line through the ray. ray.Dir must be normalized.
func (t *PointOctree[T]) GetNearbyRay(ray geometry.Ray, maxDistance float32, filters ...PointFilter[T]) []T {
	matches := t.GetNearbyRayWithDistances(ray, maxDistance, filters...)
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.Obj
	}
	return out
}

// GetNearbyRayWithDistances returns all entries within maxDistance of the
// infinite line through the ray, with squared perpendicular distances.
func (t *PointOctree[T]) GetNearbyRayWithDistances(ray geometry.Ray, maxDistance float32, filters ...PointFilter[T]) []PointMatch[T] {
	var out []PointMatch[T]
	t.root.getNearbyRay(ray, maxDistance, combinePointFilters(filters), &out)
	return out
}

// GetClosest returns the entry closest to the point. It expands a search
// radius by doubling until something is found, so it is not a shortest-path
// nearest-neighbour search, just a practical one.
func (t *PointOctree[T]) GetClosest(point math32.Vector3, filters ...PointFilter[T]) (T, bool) {
	var zero T
	if t.Count() == 0 {
		return zero, false
	}
	filter := combinePointFilters(filters)
	for radius, limit := t.searchRadii(point); ; radius *= 2 {
		if radius > limit {
			radius = limit
		}
		var matches []PointMatch[T]
		t.root.getNearby(point, radius, filter, &matches)
		if len(matches) > 0 {
			best := matches[0]
			for _, m := range matches[1:] {
				if m.DistSq < best.DistSq {
					best = m
				}
			}
			return best.Obj, true
		}
		if radius >= limit {
			return zero, false
		}
	}
}

// GetNearbyN returns up to n entries closest to the point, nearest first,
// using the same doubling-radius expansion as GetClosest.
func (t *PointOctree[T]) GetNearbyN(point math32.Vector3, n int, filters ...PointFilter[T]) []PointMatch[T] {
	if n <= 0 || t.Count() == 0 {
		return nil
	}
	filter := combinePointFilters(filters)
	var matches []PointMatch[T]
	for radius, limit := t.searchRadii(point); ; radius *= 2 {
		if radius > limit {
			radius = limit
		}
		matches = matches[:0]
		t.root.getNearby(point, radius, filter, &matches)
		if len(matches) >= n || radius >= limit {
			break
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].DistSq < matches[j].DistSq })
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// GetClosestAlongRay returns the entry nearest to the infinite line through
// the ray, searching within maxDistance of it. Answers "what is the camera
// looking at" from a world-space ray.
func (t *PointOctree[T]) GetClosestAlongRay(ray geometry.Ray, maxDistance float32, filters ...PointFilter[T]) (T, bool) {
	var zero T
	matches := t.GetNearbyRayWithDistances(ray, maxDistance, filters...)
	if len(matches) == 0 {
		return zero, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.DistSq < best.DistSq {
			best = m
		}
	}
	return best.Obj, true
}

// searchRadii picks the initial and final radius of an expansion search: the
// first is the smallest node scale, the last covers every entry from the
// query point.
func (t *PointOctree[T]) searchRadii(point math32.Vector3) (float32, float32) {
	initial := math32.Max(t.minNodeSize, t.root.box.Length/256)
	limit := point.Distance(t.root.box.Center) + t.root.box.Length
	return initial, limit
}

// FindBestMatch returns the entry with the lowest fitness score across the
// tree. nodeFilter, when non-nil, prunes whole subtrees.
func (t *PointOctree[T]) FindBestMatch(fitness PointFitness[T], nodeFilter NodeFilter, filters ...PointFilter[T]) (T, float32, bool) {
	return t.root.findBestMatch(0, fitness, nodeFilter, combinePointFilters(filters))
}

func (t *PointOctree[T]) grow(direction math32.Vector3) {
	half := t.root.box.Length / 2
	newCenter := t.root.box.Center.Add(growthSigns(direction).Mul(half))
	newRoot := newPointNode(t, newCenter, t.root.box.Length*2)

	if t.root.count() > 0 {
		rootSector := SectorOf(t.root.box.Center.Sub(newCenter))
		children := &[SectorCount]*pointNode[T]{}
		children[rootSector] = t.root
		newRoot.setChildren(children)
	}
	t.root = newRoot
}

func (t *PointOctree[T]) shrinkIfPossible() {
	t.root = t.root.shrinkIfPossible(t.initialSize)
}
