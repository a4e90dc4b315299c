package geometry

import "github.com/o0olele/loose-octree/math32"

// AABB is an axis-aligned bounding box stored as its two extreme corners.
type AABB struct {
	Min math32.Vector3 `json:"min"`
	Max math32.Vector3 `json:"max"`
}

// NewAABB creates an AABB from a center point and a full size.
func NewAABB(center, size math32.Vector3) AABB {
	half := size.Mul(0.5)
	return AABB{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// NewCubeAABB creates a cube AABB from a center point and a side length.
func NewCubeAABB(center math32.Vector3, side float32) AABB {
	return NewAABB(center, math32.Vector3{X: side, Y: side, Z: side})
}

// ClosestPoint returns the point on or inside the AABB closest to the given
// point, clamping it per axis.
func (aabb *AABB) ClosestPoint(point math32.Vector3) math32.Vector3 {
	return point.ClampV(aabb.Min, aabb.Max)
}

// Contains checks if the point is inside the AABB. Faces count as inside.
func (aabb *AABB) Contains(point math32.Vector3) bool {
	return aabb.ClosestPoint(point) == point
}

// Encapsulates checks if the other AABB lies entirely inside this AABB.
func (aabb *AABB) Encapsulates(other AABB) bool {
	return aabb.Contains(other.Min) && aabb.Contains(other.Max)
}

// Center returns the midpoint of the AABB.
func (aabb *AABB) Center() math32.Vector3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the extent of the AABB along each axis.
func (aabb *AABB) Size() math32.Vector3 {
	return aabb.Max.Sub(aabb.Min)
}

// Intersects checks if the two AABBs overlap. The overlap region is the box
// spanned by the larger of the two minima and the smaller of the two maxima;
// the boxes intersect when it is non-degenerate. Touching faces count.
func (aabb *AABB) Intersects(other AABB) bool {
	lo := aabb.Min.MaxV(other.Min)
	hi := aabb.Max.MinV(other.Max)
	return lo.X <= hi.X && lo.Y <= hi.Y && lo.Z <= hi.Z
}

// IsEmpty checks if the AABB has no volume.
func (aabb *AABB) IsEmpty() bool {
	s := aabb.Size()
	return s.X <= 0 || s.Y <= 0 || s.Z <= 0
}

// Expand returns the AABB grown by margin on every side.
func (aabb *AABB) Expand(margin float32) AABB {
	m := math32.Vector3{X: margin, Y: margin, Z: margin}
	return AABB{
		Min: aabb.Min.Sub(m),
		Max: aabb.Max.Add(m),
	}
}
