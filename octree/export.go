package octree

import (
	"encoding/json"
	"fmt"

	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// TreeExport is the JSON shape of a whole tree for the viewer.
type TreeExport struct {
	Bounds      geometry.AABB `json:"bounds"`
	LooseBounds geometry.AABB `json:"loose_bounds"`
	Count       int           `json:"count"`
	Root        *NodeExport   `json:"root"`
}

// NodeExport is the JSON shape of one node.
type NodeExport struct {
	Bounds      geometry.AABB `json:"bounds"`
	LooseBounds geometry.AABB `json:"loose_bounds"`
	Entries     []EntryExport `json:"entries,omitempty"`
	Children    []*NodeExport `json:"children,omitempty"`
	Depth       int           `json:"depth"`
}

// EntryExport is the JSON shape of one entry. Bounds is set for bounds trees,
// Point for point trees.
type EntryExport struct {
	Key    string          `json:"key"`
	Bounds *geometry.AABB  `json:"bounds,omitempty"`
	Point  *math32.Vector3 `json:"point,omitempty"`
}

// Export captures the tree structure for the viewer.
func (t *BoundsOctree[T]) Export() *TreeExport {
	return &TreeExport{
		Bounds:      t.Bounds(),
		LooseBounds: t.LooseBounds(),
		Count:       t.Count(),
		Root:        t.root.export(0),
	}
}

// ToJSON serializes the tree structure for the viewer.
func (t *BoundsOctree[T]) ToJSON() ([]byte, error) {
	return json.Marshal(t.Export())
}

func (n *boundsNode[T]) export(depth int) *NodeExport {
	export := &NodeExport{
		Bounds:      n.box.Bounds,
		LooseBounds: n.box.LooseBounds,
		Depth:       depth,
	}
	for obj, bounds := range n.entries {
		b := bounds
		export.Entries = append(export.Entries, EntryExport{
			Key:    fmt.Sprintf("%v", obj),
			Bounds: &b,
		})
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				export.Children = append(export.Children, child.export(depth+1))
			}
		}
	}
	return export
}

// Export captures the tree structure for the viewer.
func (t *PointOctree[T]) Export() *TreeExport {
	return &TreeExport{
		Bounds:      t.Bounds(),
		LooseBounds: t.LooseBounds(),
		Count:       t.Count(),
		Root:        t.root.export(0),
	}
}

// ToJSON serializes the tree structure for the viewer.
func (t *PointOctree[T]) ToJSON() ([]byte, error) {
	return json.Marshal(t.Export())
}

func (n *pointNode[T]) export(depth int) *NodeExport {
	export := &NodeExport{
		Bounds:      n.box.Bounds,
		LooseBounds: n.box.LooseBounds,
		Depth:       depth,
	}
	for obj, point := range n.entries {
		p := point
		export.Entries = append(export.Entries, EntryExport{
			Key:   fmt.Sprintf("%v", obj),
			Point: &p,
		})
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				export.Children = append(export.Children, child.export(depth+1))
			}
		}
	}
	return export
}
