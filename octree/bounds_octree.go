package octree

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// BoundsOctree is a dynamic loose octree indexing entries by axis-aligned
// bounding box. Keys must be unique across the tree.
type BoundsOctree[T comparable] struct {
	logger      golog.Logger
	root        *boundsNode[T]
	initialSize float32
	minNodeSize float32
	looseness   float32
}

// NewBoundsOctree creates a loose octree covering a cube of side initialSize
// around initialCenter. minNodeSize bounds how small nodes may get and is
// clamped to at most initialSize; looseness scales each node's admissibility
// cube and is clamped to [1, 2].
func NewBoundsOctree[T comparable](initialSize float32, initialCenter math32.Vector3, minNodeSize, looseness float32, logger golog.Logger) (*BoundsOctree[T], error) {
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
	clamped := math32.Clamp(looseness, 1, 2)
	if clamped != looseness {
		logger.Warnf("looseness %.2f outside [1, 2], clamping to %.2f", looseness, clamped)
	}

	t := &BoundsOctree[T]{
		logger:      logger,
		initialSize: initialSize,
		minNodeSize: minNodeSize,
		looseness:   clamped,
	}
	t.root = newBoundsNode(t, initialCenter, initialSize)
	return t, nil
}

// Count returns the number of entries in the tree.
func (t *BoundsOctree[T]) Count() int {
	return t.root.count()
}

// Contains checks if the key is in the tree.
func (t *BoundsOctree[T]) Contains(obj T) bool {
	return t.root.contains(obj)
}

// Bounds returns the strict cube of the root.
func (t *BoundsOctree[T]) Bounds() geometry.AABB {
	return t.root.box.Bounds
}

// LooseBounds returns the loose cube of the root.
func (t *BoundsOctree[T]) LooseBounds() geometry.AABB {
	return t.root.box.LooseBounds
}

// GetAll returns every key in the tree, in no particular order.
func (t *BoundsOctree[T]) GetAll() []T {
	all := make([]T, 0, t.Count())
	t.root.eachEntry(func(obj T, _ geometry.AABB) bool {
		all = append(all, obj)
		return true
	})
	return all
}

// Add inserts an entry, growing the tree up to DefaultMaxGrowAttempts times
// when the bounds fall outside it.
func (t *BoundsOctree[T]) Add(obj T, bounds geometry.AABB) bool {
	return t.AddWithGrowLimit(obj, bounds, DefaultMaxGrowAttempts)
}

// AddWithGrowLimit inserts an entry, doubling the root toward it at most
// maxGrowAttempts times. Zero attempts means a single try with no growth.
func (t *BoundsOctree[T]) AddWithGrowLimit(obj T, bounds geometry.AABB, maxGrowAttempts int) bool {
	grown := 0
	for !t.root.add(obj, bounds) {
		if grown >= maxGrowAttempts {
			t.logger.Errorf("add: %v still outside the tree after %d grow attempts, giving up", obj, grown)
			return false
		}
		t.grow(bounds.Center().Sub(t.root.box.Center))
		grown++
	}
	return true
}

// Remove deletes an entry and lets emptied nodes merge and the root shrink.
func (t *BoundsOctree[T]) Remove(obj T) bool {
	removed := t.root.remove(obj, true, true)
	if removed {
		// Interior nodes merge on the way out of remove; the root is merged
		// here so an emptied tree ends up a single leaf again.
		if t.root.shouldMerge() {
			t.root.merge()
		}
		t.shrinkIfPossible()
	}
	return removed
}

// RemoveNoMerge deletes an entry without merging or shrinking, for callers
// that churn entries and want to avoid collapse thrash.
func (t *BoundsOctree[T]) RemoveNoMerge(obj T) bool {
	return t.root.remove(obj, true, false)
}

// Move relocates an entry in place where possible. On MoveResultRemoved the
// entry left the tree through the root and a full re-add (with growth) is
// attempted; success upgrades the result to MoveResultMoved.
func (t *BoundsOctree[T]) Move(obj T, bounds geometry.AABB) MoveResult {
	result := t.root.move(obj, bounds, true)
	if result == MoveResultRemoved {
		if t.Add(obj, bounds) {
			return MoveResultMoved
		}
	}
	return result
}

// AddOrMove relocates the entry if present, inserts it otherwise.
func (t *BoundsOctree[T]) AddOrMove(obj T, bounds geometry.AABB) bool {
	switch t.Move(obj, bounds) {
	case MoveResultMoved:
		return true
	case MoveResultNone:
		return t.Add(obj, bounds)
	}
	return false
}

// IsIntersecting checks if any entry's bounds intersect the given box.
func (t *BoundsOctree[T]) IsIntersecting(bounds geometry.AABB, filters ...BoundsFilter[T]) bool {
	return t.root.isIntersecting(bounds, combineBoundsFilters(filters))
}

// GetIntersecting returns the keys of all entries whose bounds intersect the
// given box.
func (t *BoundsOctree[T]) GetIntersecting(bounds geometry.AABB, filters ...BoundsFilter[T]) []T {
	var out []T
	t.root.getIntersecting(bounds, combineBoundsFilters(filters), &out)
	return out
}

// IsIntersectingRay checks if the ray hits any entry within maxDistance.
func (t *BoundsOctree[T]) IsIntersectingRay(ray geometry.Ray, maxDistance float32, filters ...BoundsFilter[T]) bool {
	return t.root.isIntersectingRay(ray, maxDistance, combineBoundsFilters(filters))
}

// GetIntersectingRay returns the keys of all entries the ray hits within
// maxDistance.
func (t *BoundsOctree[T]) GetIntersectingRay(ray geometry.Ray, maxDistance float32, filters ...BoundsFilter[T]) []T {
	var out []T
	t.root.getIntersectingRay(ray, maxDistance, combineBoundsFilters(filters), &out)
	return out
}

// GetWithinFrustum returns the keys of all entries at least partially inside
// the intersection of the given half-spaces.
func (t *BoundsOctree[T]) GetWithinFrustum(planes []geometry.Plane, filters ...BoundsFilter[T]) []T {
	var out []T
	t.root.getWithinFrustum(planes, combineBoundsFilters(filters), &out)
	return out
}

// FindBestMatch returns the entry with the lowest fitness score across the
// tree. nodeFilter, when non-nil, prunes whole subtrees.
func (t *BoundsOctree[T]) FindBestMatch(fitness BoundsFitness[T], nodeFilter NodeFilter, filters ...BoundsFilter[T]) (T, float32, bool) {
	return t.root.findBestMatch(0, fitness, nodeFilter, combineBoundsFilters(filters))
}

// grow replaces the root with a doubled parent shifted toward direction; the
// old root becomes the child occupying the opposite sector.
func (t *BoundsOctree[T]) grow(direction math32.Vector3) {
	half := t.root.box.Length / 2
	newCenter := t.root.box.Center.Add(growthSigns(direction).Mul(half))
	newRoot := newBoundsNode(t, newCenter, t.root.box.Length*2)

	if t.root.count() > 0 {
		rootSector := SectorOf(t.root.box.Center.Sub(newCenter))
		children := &[SectorCount]*boundsNode[T]{}
		children[rootSector] = t.root
		newRoot.setChildren(children)
	}
	t.root = newRoot
}

// growthSigns maps a growth direction to per-axis signs, zero landing on the
// positive side.
func growthSigns(direction math32.Vector3) math32.Vector3 {
	signs := math32.Vector3{X: 1, Y: 1, Z: 1}
	if direction.X < 0 {
		signs.X = -1
	}
	if direction.Y < 0 {
		signs.Y = -1
	}
	if direction.Z < 0 {
		signs.Z = -1
	}
	return signs
}

func (t *BoundsOctree[T]) shrinkIfPossible() {
	t.root = t.root.shrinkIfPossible(t.initialSize)
}
