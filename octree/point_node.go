package octree

import (
	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// pointNode is a node of a PointOctree. The point tree runs with looseness 1
// since points have no extent, so a node's strict and loose cubes coincide
// and every point can be pushed into its best-fit child.
type pointNode[T comparable] struct {
	tree         *PointOctree[T]
	box          BoxInfo
	childBoxes   [SectorCount]BoxInfo
	entries      map[T]math32.Vector3
	childSectors map[T]Sector
	children     *[SectorCount]*pointNode[T]
}

func newPointNode[T comparable](tree *PointOctree[T], center math32.Vector3, length float32) *pointNode[T] {
	n := &pointNode[T]{
		tree:    tree,
		entries: make(map[T]math32.Vector3),
	}
	n.setValues(center, length)
	return n
}

func (n *pointNode[T]) setValues(center math32.Vector3, length float32) {
	n.box = newBoxInfo(center, length, 1)
	n.childBoxes = n.box.childBoxes(1)
}

func (n *pointNode[T]) newChild(s Sector) *pointNode[T] {
	child := &pointNode[T]{
		tree:    n.tree,
		entries: make(map[T]math32.Vector3),
		box:     n.childBoxes[s],
	}
	child.childBoxes = child.box.childBoxes(1)
	return child
}

func (n *pointNode[T]) count() int {
	return len(n.entries) + len(n.childSectors)
}

func (n *pointNode[T]) contains(obj T) bool {
	if _, ok := n.entries[obj]; ok {
		return true
	}
	_, ok := n.childSectors[obj]
	return ok
}

// add stores the point unless it lies outside the node cube. A key already
// present is removed first and re-added at the new position.
func (n *pointNode[T]) add(obj T, point math32.Vector3) bool {
	if !n.box.ContainsPoint(point) {
		return false
	}
	if n.remove(obj, true, false) {
		n.tree.logger.Warnf("add: %v was already in the tree, replacing its position", obj)
	}
	n.nocheckAdd(obj, point)
	return true
}

func (n *pointNode[T]) nocheckAdd(obj T, point math32.Vector3) {
	if n.children == nil {
		if len(n.entries) < MaxNodeEntries || n.box.Length/2 < n.tree.minNodeSize {
			n.entries[obj] = point
			return
		}
		n.split()
	}

	s := SectorOf(point.Sub(n.box.Center))
	if !n.childBoxes[s].ContainsPoint(point) {
		// Only reachable for points on the node boundary.
		n.entries[obj] = point
		return
	}
	if n.children[s] == nil {
		n.children[s] = n.newChild(s)
	}
	n.children[s].nocheckAdd(obj, point)
	n.childSectors[obj] = s
}

// split pushes entries down one level. Every point fits its best-fit child
// by construction, so the node ends up holding none itself.
func (n *pointNode[T]) split() {
	n.children = &[SectorCount]*pointNode[T]{}
	if n.childSectors == nil {
		n.childSectors = make(map[T]Sector)
	}
	for obj, point := range n.entries {
		s := SectorOf(point.Sub(n.box.Center))
		if !n.childBoxes[s].ContainsPoint(point) {
			continue
		}
		if n.children[s] == nil {
			n.children[s] = n.newChild(s)
		}
		n.children[s].nocheckAdd(obj, point)
		n.childSectors[obj] = s
		delete(n.entries, obj)
	}
}

func (n *pointNode[T]) remove(obj T, isRoot, mergeIfAble bool) bool {
	removed := false
	if _, ok := n.entries[obj]; ok {
		delete(n.entries, obj)
		removed = true
	} else if s, ok := n.childSectors[obj]; ok {
		if n.children == nil || n.children[s] == nil {
			n.tree.logger.Errorf("remove: %v tracked in sector %d but the child is missing", obj, s)
			return false
		}
		removed = n.children[s].remove(obj, false, mergeIfAble)
		delete(n.childSectors, obj)
	}
	if removed && mergeIfAble && !isRoot && n.shouldMerge() {
		n.merge()
	}
	return removed
}

func (n *pointNode[T]) shouldMerge() bool {
	return n.children != nil && len(n.entries)+len(n.childSectors) <= MaxNodeEntries
}

func (n *pointNode[T]) merge() {
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child == nil {
			continue
		}
		child.merge()
		for obj, point := range child.entries {
			n.entries[obj] = point
		}
	}
	n.children = nil
	n.childSectors = nil
}

func (n *pointNode[T]) encapsulatesFor(isRoot bool, point math32.Vector3) bool {
	if isRoot {
		return n.box.LooseBounds.Contains(point)
	}
	return n.box.ContainsPoint(point)
}

func (n *pointNode[T]) move(obj T, point math32.Vector3, isRoot bool) MoveResult {
	if _, ok := n.entries[obj]; ok {
		delete(n.entries, obj)
		if n.encapsulatesFor(isRoot, point) {
			n.nocheckAdd(obj, point)
			return MoveResultMoved
		}
		if !isRoot && n.shouldMerge() {
			n.merge()
		}
		return MoveResultRemoved
	}

	sOld, ok := n.childSectors[obj]
	if !ok {
		return MoveResultNone
	}
	if n.children == nil || n.children[sOld] == nil {
		n.tree.logger.Errorf("move: %v tracked in sector %d but the child is missing", obj, sOld)
		return MoveResultNone
	}

	sNew := SectorOf(point.Sub(n.box.Center))
	if sNew == sOld {
		switch n.children[sOld].move(obj, point, false) {
		case MoveResultMoved:
			return MoveResultMoved
		case MoveResultNone:
			n.tree.logger.Errorf("move: %v tracked in sector %d but missing from the subtree", obj, sOld)
			return MoveResultNone
		case MoveResultRemoved:
			delete(n.childSectors, obj)
			if n.encapsulatesFor(isRoot, point) {
				n.entries[obj] = point
				return MoveResultMoved
			}
			return MoveResultRemoved
		}
	}

	n.children[sOld].remove(obj, false, true)
	delete(n.childSectors, obj)
	if n.encapsulatesFor(isRoot, point) {
		n.nocheckAdd(obj, point)
		return MoveResultMoved
	}
	if !isRoot && n.shouldMerge() {
		n.merge()
	}
	return MoveResultRemoved
}

func (n *pointNode[T]) setChildren(children *[SectorCount]*pointNode[T]) {
	n.children = children
	n.childSectors = make(map[T]Sector)
	for i, child := range children {
		if child == nil {
			continue
		}
		s := Sector(i)
		child.eachEntry(func(obj T, _ math32.Vector3) bool {
			n.childSectors[obj] = s
			return true
		})
	}
}

func (n *pointNode[T]) eachEntry(fn func(obj T, point math32.Vector3) bool) bool {
	for obj, point := range n.entries {
		if !fn(obj, point) {
			return false
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil && !child.eachEntry(fn) {
				return false
			}
		}
	}
	return true
}

func (n *pointNode[T]) shrinkIfPossible(minLength float32) *pointNode[T] {
	if n.box.Length < 2*minLength {
		return n
	}
	if n.count() == 0 {
		return n
	}

	best := -1
	for _, point := range n.entries {
		s := int(SectorOf(point.Sub(n.box.Center)))
		if (best >= 0 && s != best) || !n.childBoxes[s].ContainsPoint(point) {
			return n
		}
		best = s
	}

	if n.children != nil {
		childHadContent := false
		for i, child := range n.children {
			if child == nil || child.count() == 0 {
				continue
			}
			if childHadContent || (best >= 0 && best != i) {
				return n
			}
			childHadContent = true
			best = i
		}
	}
	if best < 0 {
		return n
	}

	if n.children != nil && n.children[best] == nil {
		n.children = nil
		n.childSectors = nil
	}

	if n.children == nil {
		// Same in-place collapse as the bounds tree: two levels at once
		// when the floor and the entries allow it, one otherwise.
		center := n.childBoxes[best].Center
		length := n.childBoxes[best].Length / 2
		if length < minLength || !n.entriesFitCube(center, length) {
			length = n.childBoxes[best].Length
		}
		n.setValues(center, length)
		return n
	}

	child := n.children[best]
	for obj, point := range n.entries {
		child.nocheckAdd(obj, point)
	}
	return child
}

func (n *pointNode[T]) entriesFitCube(center math32.Vector3, length float32) bool {
	box := newBoxInfo(center, length, 1)
	for _, point := range n.entries {
		if !box.Bounds.Contains(point) {
			return false
		}
	}
	return true
}

func (n *pointNode[T]) info(depth int) NodeInfo {
	return NodeInfo{
		Box:         n.box,
		Depth:       depth,
		EntryCount:  len(n.entries),
		HasChildren: n.children != nil,
	}
}

// PointFilter gates per-entry checks in PointOctree queries.
type PointFilter[T comparable] func(obj T, point math32.Vector3) bool

func combinePointFilters[T comparable](filters []PointFilter[T]) PointFilter[T] {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return func(obj T, point math32.Vector3) bool {
		for _, f := range filters {
			if f != nil && !f(obj, point) {
				return false
			}
		}
		return true
	}
}

// PointMatch is a radius-query result: the key, where it is, and its squared
// distance to the query point or line.
type PointMatch[T comparable] struct {
	Obj    T
	Point  math32.Vector3
	DistSq float32
}

// getNearby collects entries within maxDistance of the query point. The node
// prune measures the true distance from the sphere center to the closest
// point on the node cube.
func (n *pointNode[T]) getNearby(point math32.Vector3, maxDistance float32, filter PointFilter[T], out *[]PointMatch[T]) {
	closest := n.box.LooseBounds.ClosestPoint(point)
	if closest.DistanceSquared(point) > maxDistance*maxDistance {
		return
	}
	for obj, p := range n.entries {
		if filter != nil && !filter(obj, p) {
			continue
		}
		if distSq := p.DistanceSquared(point); distSq <= maxDistance*maxDistance {
			*out = append(*out, PointMatch[T]{Obj: obj, Point: p, DistSq: distSq})
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getNearby(point, maxDistance, filter, out)
			}
		}
	}
}

// getNearbyRay collects entries within maxDistance of the infinite line
// through the ray. ray.Dir must be normalized for the distances to be
// meaningful. The node prune expands the cube by maxDistance per side.
func (n *pointNode[T]) getNearbyRay(ray geometry.Ray, maxDistance float32, filter PointFilter[T], out *[]PointMatch[T]) {
	expanded := n.box.LooseBounds.Expand(maxDistance)
	if _, hit := ray.IntersectAABB(expanded); !hit {
		return
	}
	for obj, p := range n.entries {
		if filter != nil && !filter(obj, p) {
			continue
		}
		// Squared perpendicular distance from the point to the line.
		if distSq := ray.Dir.Cross(p.Sub(ray.Origin)).LengthSquared(); distSq <= maxDistance*maxDistance {
			*out = append(*out, PointMatch[T]{Obj: obj, Point: p, DistSq: distSq})
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getNearbyRay(ray, maxDistance, filter, out)
			}
		}
	}
}

// PointFitness scores an entry in FindBestMatch; lower is better. Returning
// false ignores the entry.
type PointFitness[T comparable] func(obj T, point math32.Vector3) (float32, bool)

func (n *pointNode[T]) findBestMatch(depth int, fitness PointFitness[T], nodeFilter NodeFilter, filter PointFilter[T]) (T, float32, bool) {
	var best T
	var bestScore float32
	found := false
	if nodeFilter != nil && !nodeFilter(n.info(depth)) {
		return best, 0, false
	}
	for obj, p := range n.entries {
		if filter != nil && !filter(obj, p) {
			continue
		}
		score, ok := fitness(obj, p)
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
