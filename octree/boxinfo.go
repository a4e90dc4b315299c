package octree

import (
	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
)

// BoxInfo caches the geometry of a node or a prospective child: the strict
// cube of side Length and the loose cube of side Length*looseness, both
// centered on Center. A looseness of 1 makes the two cubes identical.
type BoxInfo struct {
	Center      math32.Vector3
	Length      float32
	Bounds      geometry.AABB
	LooseBounds geometry.AABB
}

func newBoxInfo(center math32.Vector3, length, looseness float32) BoxInfo {
	return BoxInfo{
		Center:      center,
		Length:      length,
		Bounds:      geometry.NewCubeAABB(center, length),
		LooseBounds: geometry.NewCubeAABB(center, length*looseness),
	}
}

// LooseEncapsulates checks if the loose cube contains both corners of the AABB.
func (b *BoxInfo) LooseEncapsulates(bounds geometry.AABB) bool {
	return b.LooseBounds.Encapsulates(bounds)
}

// Encapsulates checks if the loose cube contains the AABB and the strict
// cube contains its center. An entry belongs to a node when its center lies
// in the strict cube; it is admissible as long as its extent fits in the
// loose cube.
func (b *BoxInfo) Encapsulates(bounds geometry.AABB) bool {
	return b.LooseEncapsulates(bounds) && b.Bounds.Contains(bounds.Center())
}

// ContainsPoint checks if the strict cube contains the point.
func (b *BoxInfo) ContainsPoint(point math32.Vector3) bool {
	return b.Bounds.Contains(point)
}

// childBoxes precomputes the eight would-be children: centers offset by a
// quarter of the length along each axis, half the length, same looseness.
func (b *BoxInfo) childBoxes(looseness float32) [SectorCount]BoxInfo {
	quarter := b.Length / 4
	var boxes [SectorCount]BoxInfo
	for s := Sector(0); s < SectorCount; s++ {
		boxes[s] = newBoxInfo(b.Center.Add(s.Direction().Mul(quarter)), b.Length/2, looseness)
	}
	return boxes
}
