package geometry

import "github.com/o0olele/loose-octree/math32"

// Box is an axis-aligned box given as a center and a full size, the shape
// entry geometry usually arrives in.
type Box struct {
	Center math32.Vector3 `json:"center"`
	Size   math32.Vector3 `json:"size"`
}

// GetBounds returns the box as a min/max AABB.
func (b *Box) GetBounds() AABB {
	return NewAABB(b.Center, b.Size)
}

// IntersectsAABB checks if the box overlaps the AABB.
func (b *Box) IntersectsAABB(aabb AABB) bool {
	bounds := b.GetBounds()
	return bounds.Intersects(aabb)
}

// ContainsPoint checks if the point lies inside the box.
func (b *Box) ContainsPoint(point math32.Vector3) bool {
	bounds := b.GetBounds()
	return bounds.Contains(point)
}
