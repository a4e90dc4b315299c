package geometry

import "github.com/o0olele/loose-octree/math32"

// Ray is a ray with an origin and a direction. Dir does not need to be
// normalized for AABB intersection, but must be normalized for the
// perpendicular-distance queries of the point octree.
type Ray struct {
	Origin math32.Vector3 `json:"origin"`
	Dir    math32.Vector3 `json:"dir"`
}

// PointAt returns the point at parameter t along the ray.
func (r *Ray) PointAt(t float32) math32.Vector3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectAABB checks if the ray intersects with the AABB, returning the
// entry distance along the ray.
func (r *Ray) IntersectAABB(aabb AABB) (float32, bool) {
	enter, _, hit := RayAABB(r.Origin, r.Dir, aabb)
	return enter, hit
}

// RayAABB intersects a ray with an AABB using the slab method: each axis
// contributes an interval of ray parameters between its two faces, and the
// ray hits the box iff the three intervals overlap at some t >= 0. Returns
// the entry and exit parameters and whether the box is hit.
func RayAABB(origin, dir math32.Vector3, aabb AABB) (float32, float32, bool) {
	const eps = 1e-6

	o := [3]float32{origin.X, origin.Y, origin.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{aabb.Min.X, aabb.Min.Y, aabb.Min.Z}
	hi := [3]float32{aabb.Max.X, aabb.Max.Y, aabb.Max.Z}

	enter := float32(-math32.MaxFloat32)
	exit := float32(math32.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(d[axis]) < eps {
			// Parallel to this slab: the origin must already lie between
			// its two faces.
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, 0, false
			}
			continue
		}
		near := (lo[axis] - o[axis]) / d[axis]
		far := (hi[axis] - o[axis]) / d[axis]
		if far < near {
			near, far = far, near
		}
		enter = math32.Max(enter, near)
		exit = math32.Min(exit, far)
		if enter > exit {
			return 0, 0, false
		}
	}
	if exit < 0 {
		// The whole overlap lies behind the origin.
		return 0, 0, false
	}
	return math32.Max(enter, 0), exit, true
}
