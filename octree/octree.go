// Package octree implements a pair of dynamic loose octrees for indexing 3D
// entities by spatial location: BoundsOctree indexes axis-aligned bounding
// boxes, PointOctree indexes points. Both support incremental insertion,
// removal and relocation, grow outward to cover entries added beyond their
// bounds and shrink back when the upper levels empty out.
//
// Neither tree is safe for concurrent use; callers must serialize access.
package octree

// MaxNodeEntries is the per-node capacity threshold. A node holding more
// entries splits, a node with children holding this many or fewer merges.
const MaxNodeEntries = 8

// DefaultMaxGrowAttempts is how many root doublings Add performs before
// giving up on an entry outside the tree bounds.
const DefaultMaxGrowAttempts = 20

// MoveResult is the outcome of a Move operation.
type MoveResult uint8

const (
	// MoveResultNone means the entry was not in the tree.
	MoveResultNone = MoveResult(iota)
	// MoveResultRemoved means the entry left its subtree and could not be
	// re-inserted where it was found.
	MoveResultRemoved
	// MoveResultMoved means the entry was relocated.
	MoveResultMoved
)

func (r MoveResult) String() string {
	switch r {
	case MoveResultNone:
		return "none"
	case MoveResultRemoved:
		return "removed"
	case MoveResultMoved:
		return "moved"
	}
	return "unknown"
}

// NodeInfo describes a node to traversal callbacks without exposing the node
// itself.
type NodeInfo struct {
	Box         BoxInfo
	Depth       int
	EntryCount  int
	HasChildren bool
}

// NodeFilter prunes node traversal in FindBestMatch; returning false skips
// the node and its whole subtree.
type NodeFilter func(info NodeInfo) bool
