package octree

import (
	"github.com/o0olele/loose-octree/geometry"
)

// BoundsFilter gates per-entry checks in BoundsOctree queries. Filtered-out
// entries are skipped at the leaves; node traversal is never pruned by it.
type BoundsFilter[T comparable] func(obj T, bounds geometry.AABB) bool

func combineBoundsFilters[T comparable](filters []BoundsFilter[T]) BoundsFilter[T] {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return func(obj T, bounds geometry.AABB) bool {
		for _, f := range filters {
			if f != nil && !f(obj, bounds) {
				return false
			}
		}
		return true
	}
}

func (n *boundsNode[T]) isIntersecting(bounds geometry.AABB, filter BoundsFilter[T]) bool {
	if !n.box.LooseBounds.Intersects(bounds) {
		return false
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		if b.Intersects(bounds) {
			return true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil && child.isIntersecting(bounds, filter) {
				return true
			}
		}
	}
	return false
}

func (n *boundsNode[T]) getIntersecting(bounds geometry.AABB, filter BoundsFilter[T], out *[]T) {
	if !n.box.LooseBounds.Intersects(bounds) {
		return
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		if b.Intersects(bounds) {
			*out = append(*out, obj)
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getIntersecting(bounds, filter, out)
			}
		}
	}
}

func (n *boundsNode[T]) isIntersectingRay(ray geometry.Ray, maxDistance float32, filter BoundsFilter[T]) bool {
	if dist, hit := ray.IntersectAABB(n.box.LooseBounds); !hit || dist > maxDistance {
		return false
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		if dist, hit := ray.IntersectAABB(b); hit && dist <= maxDistance {
			return true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil && child.isIntersectingRay(ray, maxDistance, filter) {
				return true
			}
		}
	}
	return false
}

func (n *boundsNode[T]) getIntersectingRay(ray geometry.Ray, maxDistance float32, filter BoundsFilter[T], out *[]T) {
	if dist, hit := ray.IntersectAABB(n.box.LooseBounds); !hit || dist > maxDistance {
		return
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		if dist, hit := ray.IntersectAABB(b); hit && dist <= maxDistance {
			*out = append(*out, obj)
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getIntersectingRay(ray, maxDistance, filter, out)
			}
		}
	}
}

func (n *boundsNode[T]) getWithinFrustum(planes []geometry.Plane, filter BoundsFilter[T], out *[]T) {
	if !geometry.TestPlanesAABB(planes, n.box.LooseBounds) {
		return
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		if geometry.TestPlanesAABB(planes, b) {
			*out = append(*out, obj)
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getWithinFrustum(planes, filter, out)
			}
		}
	}
}

// BoundsFitness scores an entry in FindBestMatch; lower is better. Returning
// false ignores the entry.
type BoundsFitness[T comparable] func(obj T, bounds geometry.AABB) (float32, bool)

func (n *boundsNode[T]) findBestMatch(depth int, fitness BoundsFitness[T], nodeFilter NodeFilter, filter BoundsFilter[T]) (T, float32, bool) {
	var best T
	var bestScore float32
	found := false
	if nodeFilter != nil && !nodeFilter(n.info(depth)) {
		return best, 0, false
	}
	for obj, b := range n.entries {
		if filter != nil && !filter(obj, b) {
			continue
		}
		score, ok := fitness(obj, b)
		if !ok {
			continue
		}
		if !found || score < bestScore {
			best, bestScore, found = obj, score, true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child == nil {
				continue
			}
			obj, score, ok := child.findBestMatch(depth+1, fitness, nodeFilter, filter)
			if ok && (!found || score < bestScore) {
				best, bestScore, found = obj, score, true
			}
		}
	}
	return best, bestScore, found
}
