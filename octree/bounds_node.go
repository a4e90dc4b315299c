package octree

import (
	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// boundsNode is a node of a BoundsOctree. Entries whose extent fits a child's
// loose cube live in that child; entries straddling the center planes stay in
// entries at this level. childSectors records, for every entry stored deeper
// in the subtree, the sector of the child holding it, so removal and move
// descend without scanning.
type boundsNode[T comparable] struct {
	tree         *BoundsOctree[T]
	box          BoxInfo
	childBoxes   [SectorCount]BoxInfo
	entries      map[T]geometry.AABB
	childSectors map[T]Sector
	children     *[SectorCount]*boundsNode[T]
}

func newBoundsNode[T comparable](tree *BoundsOctree[T], center math32.Vector3, length float32) *boundsNode[T] {
	n := &boundsNode[T]{
		tree:    tree,
		entries: make(map[T]geometry.AABB),
	}
	n.setValues(center, length)
	return n
}

// setValues recomputes the node geometry. Also used by shrink to resize a
// childless root in place.
func (n *boundsNode[T]) setValues(center math32.Vector3, length float32) {
	n.box = newBoxInfo(center, length, n.tree.looseness)
	n.childBoxes = n.box.childBoxes(n.tree.looseness)
}

// count is the number of entries in the whole subtree.
func (n *boundsNode[T]) count() int {
	return len(n.entries) + len(n.childSectors)
}

func (n *boundsNode[T]) contains(obj T) bool {
	if _, ok := n.entries[obj]; ok {
		return true
	}
	_, ok := n.childSectors[obj]
	return ok
}

// encapsulatesFor is the re-insertion gate of move: the root accepts anything
// inside its loose cube (its caller recovers via growth), an interior node
// insists on the entry center lying in its strict cube.
func (n *boundsNode[T]) encapsulatesFor(isRoot bool, bounds geometry.AABB) bool {
	if isRoot {
		return n.box.LooseEncapsulates(bounds)
	}
	return n.box.Encapsulates(bounds)
}

// add stores the entry unless its extent does not fit the loose cube. A key
// already present is removed first and re-added with the new bounds.
func (n *boundsNode[T]) add(obj T, bounds geometry.AABB) bool {
	if !n.box.LooseEncapsulates(bounds) {
		return false
	}
	if n.remove(obj, true, false) {
		n.tree.logger.Warnf("add: %v was already in the tree, replacing its bounds", obj)
	}
	n.nocheckAdd(obj, bounds)
	return true
}

func (n *boundsNode[T]) nocheckAdd(obj T, bounds geometry.AABB) {
	if n.children == nil {
		if len(n.entries) < MaxNodeEntries || n.box.Length/2 < n.tree.minNodeSize {
			n.entries[obj] = bounds
			return
		}
		n.split()
	}

	s := SectorOf(bounds.Center().Sub(n.box.Center))
	if !n.childBoxes[s].Encapsulates(bounds) {
		// Straddles a center plane: the entry lives at this level.
		n.entries[obj] = bounds
		return
	}
	if n.children[s] == nil {
		n.children[s] = n.newChild(s)
	}
	n.children[s].nocheckAdd(obj, bounds)
	n.childSectors[obj] = s
}

// newChild materializes the node for a sector from its precomputed box.
func (n *boundsNode[T]) newChild(s Sector) *boundsNode[T] {
	child := &boundsNode[T]{
		tree:    n.tree,
		entries: make(map[T]geometry.AABB),
		box:     n.childBoxes[s],
	}
	child.childBoxes = child.box.childBoxes(n.tree.looseness)
	return child
}

// split pushes every entry that fits a child's loose cube down one level.
func (n *boundsNode[T]) split() {
	n.children = &[SectorCount]*boundsNode[T]{}
	if n.childSectors == nil {
		n.childSectors = make(map[T]Sector)
	}
	for obj, bounds := range n.entries {
		s := SectorOf(bounds.Center().Sub(n.box.Center))
		if !n.childBoxes[s].Encapsulates(bounds) {
			continue
		}
		if n.children[s] == nil {
			n.children[s] = n.newChild(s)
		}
		n.children[s].nocheckAdd(obj, bounds)
		n.childSectors[obj] = s
		delete(n.entries, obj)
	}
}

func (n *boundsNode[T]) remove(obj T, isRoot, mergeIfAble bool) bool {
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

// shouldMerge reports whether the subtree fits back into a single node. The
// threshold equals the split threshold, so a grandchild can only exist under
// a child that once held more than MaxNodeEntries and is never merged away
// from under us.
func (n *boundsNode[T]) shouldMerge() bool {
	return n.children != nil && len(n.entries)+len(n.childSectors) <= MaxNodeEntries
}

// merge pulls all child entries up into this node and drops the children.
func (n *boundsNode[T]) merge() {
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child == nil {
			continue
		}
		child.merge()
		for obj, bounds := range child.entries {
			n.entries[obj] = bounds
		}
	}
	n.children = nil
	n.childSectors = nil
}

// move relocates an entry without a full remove-and-insert where possible.
func (n *boundsNode[T]) move(obj T, bounds geometry.AABB, isRoot bool) MoveResult {
	if _, ok := n.entries[obj]; ok {
		delete(n.entries, obj)
		if n.encapsulatesFor(isRoot, bounds) {
			n.nocheckAdd(obj, bounds)
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

	sNew := SectorOf(bounds.Center().Sub(n.box.Center))
	if sNew == sOld {
		switch n.children[sOld].move(obj, bounds, false) {
		case MoveResultMoved:
			return MoveResultMoved
		case MoveResultNone:
			n.tree.logger.Errorf("move: %v tracked in sector %d but missing from the subtree", obj, sOld)
			return MoveResultNone
		case MoveResultRemoved:
			// The entry escaped the child but may still fit here.
			delete(n.childSectors, obj)
			if n.encapsulatesFor(isRoot, bounds) {
				n.entries[obj] = bounds
				return MoveResultMoved
			}
			return MoveResultRemoved
		}
	}

	// Sector changed: take it out of the old child, then push it down the
	// new one if it still belongs to this subtree.
	n.children[sOld].remove(obj, false, true)
	delete(n.childSectors, obj)
	if n.encapsulatesFor(isRoot, bounds) {
		n.nocheckAdd(obj, bounds)
		return MoveResultMoved
	}
	if !isRoot && n.shouldMerge() {
		n.merge()
	}
	return MoveResultRemoved
}

// setChildren adopts a prebuilt child array and rebuilds the childSectors
// summary from the children's contents. Used by the root grow protocol.
func (n *boundsNode[T]) setChildren(children *[SectorCount]*boundsNode[T]) {
	n.children = children
	n.childSectors = make(map[T]Sector)
	for i, child := range children {
		if child == nil {
			continue
		}
		s := Sector(i)
		child.eachEntry(func(obj T, _ geometry.AABB) bool {
			n.childSectors[obj] = s
			return true
		})
	}
}

// eachEntry visits every entry in the subtree. Returning false stops the walk.
func (n *boundsNode[T]) eachEntry(fn func(obj T, bounds geometry.AABB) bool) bool {
	for obj, bounds := range n.entries {
		if !fn(obj, bounds) {
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

// shrinkIfPossible returns this node, this node resized, or a child promoted
// to replace it, whichever is the smallest node still covering every entry.
// minLength is the floor the tree never shrinks below.
func (n *boundsNode[T]) shrinkIfPossible(minLength float32) *boundsNode[T] {
	if n.box.Length < 2*minLength {
		return n
	}
	if n.count() == 0 {
		return n
	}

	// All own entries must fit the loose cube of one and the same octant.
	best := -1
	for _, bounds := range n.entries {
		s := int(SectorOf(bounds.Center().Sub(n.box.Center)))
		if (best >= 0 && s != best) || !n.childBoxes[s].LooseEncapsulates(bounds) {
			return n
		}
		best = s
	}

	// At most one child may hold anything, and it must be the same octant.
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
		// The winning octant was never materialized, so every child is
		// empty; drop them and collapse in place below.
		n.children = nil
		n.childSectors = nil
	}

	if n.children == nil {
		// No sub-node to promote: resize in place onto the winning octant,
		// at half the child cube's length, shrinking two levels at once.
		// The extra halving is only taken when the floor allows it and
		// every entry still fits the smaller cube; otherwise the collapse
		// is a single level.
		center := n.childBoxes[best].Center
		length := n.childBoxes[best].Length / 2
		if length < minLength || !n.entriesFitCube(center, length) {
			length = n.childBoxes[best].Length
		}
		n.setValues(center, length)
		return n
	}

	// Promote the single occupied child; entries held at this level all fit
	// its loose cube, so hand them down.
	child := n.children[best]
	for obj, bounds := range n.entries {
		child.nocheckAdd(obj, bounds)
	}
	return child
}

// entriesFitCube checks that every own entry would stay loose-encapsulated
// by a node of the given center and length.
func (n *boundsNode[T]) entriesFitCube(center math32.Vector3, length float32) bool {
	box := newBoxInfo(center, length, n.tree.looseness)
	for _, bounds := range n.entries {
		if !box.LooseEncapsulates(bounds) {
			return false
		}
	}
	return true
}

func (n *boundsNode[T]) info(depth int) NodeInfo {
	return NodeInfo{
		Box:         n.box,
		Depth:       depth,
		EntryCount:  len(n.entries),
		HasChildren: n.children != nil,
	}
}
