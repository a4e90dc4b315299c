package octree

import (
	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// The enumeration hooks below let a host draw node cubes and entry geometry
// as gizmos. The library never draws anything itself.

// ForEachNode visits every node in the tree, parents before children.
func (t *BoundsOctree[T]) ForEachNode(fn func(info NodeInfo)) {
	t.root.eachNode(0, fn)
}

func (n *boundsNode[T]) eachNode(depth int, fn func(info NodeInfo)) {
	fn(n.info(depth))
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.eachNode(depth+1, fn)
			}
		}
	}
}

// ForEachEntry visits every entry in the tree with its bounds.
func (t *BoundsOctree[T]) ForEachEntry(fn func(obj T, bounds geometry.AABB)) {
	t.root.eachEntry(func(obj T, bounds geometry.AABB) bool {
		fn(obj, bounds)
		return true
	})
}

// ForEachNode visits every node in the tree, parents before children.
func (t *PointOctree[T]) ForEachNode(fn func(info NodeInfo)) {
	t.root.eachNode(0, fn)
}

func (n *pointNode[T]) eachNode(depth int, fn func(info NodeInfo)) {
	fn(n.info(depth))
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.eachNode(depth+1, fn)
			}
		}
	}
}

// ForEachEntry visits every entry in the tree with its position.
func (t *PointOctree[T]) ForEachEntry(fn func(obj T, point math32.Vector3)) {
	t.root.eachEntry(func(obj T, point math32.Vector3) bool {
		fn(obj, point)
		return true
	})
}
