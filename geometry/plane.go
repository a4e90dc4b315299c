package geometry

import "github.com/o0olele/loose-octree/math32"

// Plane is a half-space, the set of points p with Dot(Normal, p) + Distance >= 0.
type Plane struct {
	Normal   math32.Vector3 `json:"normal"`
	Distance float32        `json:"distance"`
}

// DistanceToPoint returns the signed distance from the plane to the point,
// positive on the side the normal points to. Normal must be normalized.
func (p *Plane) DistanceToPoint(point math32.Vector3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// TestPlanesAABB checks if the AABB is at least partially inside the
// intersection of the half-spaces. For each plane it tests the AABB corner
// furthest along the plane normal; if that corner is behind any plane, the
// box is entirely outside.
func TestPlanesAABB(planes []Plane, aabb AABB) bool {
	for i := range planes {
		p := &planes[i]
		positive := aabb.Min
		if p.Normal.X >= 0 {
			positive.X = aabb.Max.X
		}
		if p.Normal.Y >= 0 {
			positive.Y = aabb.Max.Y
		}
		if p.Normal.Z >= 0 {
			positive.Z = aabb.Max.Z
		}
		if p.DistanceToPoint(positive) < 0 {
			return false
		}
	}
	return true
}
