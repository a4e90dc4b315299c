package octree

import "github.com/o0olele/loose-octree/math32"

// Sector identifies one of the eight octants around a node center, encoded
// as a three bit mask: bit 0 = +X, bit 1 = +Y, bit 2 = +Z.
type Sector uint8

// SectorCount is the number of octants of a node.
const SectorCount = 8

// sectorDirections maps each sector to its unit direction from the node center.
var sectorDirections = [SectorCount]math32.Vector3{
	{X: -1, Y: -1, Z: -1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: -1},
	{X: 1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: 1},
	{X: -1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: 1},
}

// SectorOf returns the sector of a point offset relative to a node center.
// Zero components land on the negative side.
func SectorOf(offset math32.Vector3) Sector {
	var s Sector
	if offset.X > 0 {
		s |= 1
	}
	if offset.Y > 0 {
		s |= 2
	}
	if offset.Z > 0 {
		s |= 4
	}
	return s
}

// Direction returns the unit direction from a node center into the sector,
// with components in {-1, +1}.
func (s Sector) Direction() math32.Vector3 {
	return sectorDirections[s]
}

// Opposite returns the sector mirrored through the node center.
func (s Sector) Opposite() Sector {
	return s ^ 0b111
}
