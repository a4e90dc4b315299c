package octree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// checkBoundsInvariants asserts the structural invariants that must hold
// after every public operation: loose containment of every entry, strict
// center containment below the root, unique key placement, consistent
// child-sector summaries, leaf capacity, and count sums.
func checkBoundsInvariants(t *testing.T, tree *BoundsOctree[int]) {
	t.Helper()
	seen := make(map[int]bool)
	total := checkBoundsNode(t, tree, tree.root, true, seen)
	require.Equal(t, tree.Count(), total)
	require.Equal(t, tree.Count(), len(seen))
}

func checkBoundsNode(t *testing.T, tree *BoundsOctree[int], n *boundsNode[int], isRoot bool, seen map[int]bool) int {
	t.Helper()
	for obj, bounds := range n.entries {
		require.False(t, seen[obj], "key %d stored in more than one node", obj)
		seen[obj] = true
		require.True(t, n.box.LooseEncapsulates(bounds), "key %d extent escapes its node", obj)
		if !isRoot {
			center := bounds.Center()
			require.True(t, n.box.Bounds.Contains(center), "key %d center outside its node", obj)
		}
	}

	childTotal := 0
	if n.children == nil {
		require.Empty(t, n.childSectors)
		if n.box.Length >= 2*tree.minNodeSize {
			require.LessOrEqual(t, len(n.entries), MaxNodeEntries)
		}
	} else {
		for s, child := range n.children {
			if child == nil {
				continue
			}
			require.Equal(t, n.childBoxes[s].Center, child.box.Center)
			require.Equal(t, n.childBoxes[s].Length, child.box.Length)
			childTotal += checkBoundsNode(t, tree, child, false, seen)
		}
		for obj, s := range n.childSectors {
			require.NotNil(t, n.children[s], "key %d tracked in a missing child", obj)
			require.True(t, n.children[s].contains(obj), "key %d tracked in sector %d but absent", obj, s)
		}
		require.Equal(t, len(n.childSectors), childTotal)
	}
	return len(n.entries) + childTotal
}

func checkPointInvariants(t *testing.T, tree *PointOctree[int]) {
	t.Helper()
	seen := make(map[int]bool)
	total := checkPointNode(t, tree, tree.root, true, seen)
	require.Equal(t, tree.Count(), total)
	require.Equal(t, tree.Count(), len(seen))
}

func checkPointNode(t *testing.T, tree *PointOctree[int], n *pointNode[int], isRoot bool, seen map[int]bool) int {
	t.Helper()
	for obj, point := range n.entries {
		require.False(t, seen[obj], "key %d stored in more than one node", obj)
		seen[obj] = true
		if !isRoot {
			require.True(t, n.box.ContainsPoint(point), "key %d outside its node", obj)
		}
	}

	childTotal := 0
	if n.children == nil {
		require.Empty(t, n.childSectors)
		if n.box.Length >= 2*tree.minNodeSize {
			require.LessOrEqual(t, len(n.entries), MaxNodeEntries)
		}
	} else {
		for s, child := range n.children {
			if child == nil {
				continue
			}
			require.Equal(t, n.childBoxes[s].Center, child.box.Center)
			childTotal += checkPointNode(t, tree, child, false, seen)
		}
		for obj, s := range n.childSectors {
			require.NotNil(t, n.children[s], "key %d tracked in a missing child", obj)
			require.True(t, n.children[s].contains(obj), "key %d tracked in sector %d but absent", obj, s)
		}
		require.Equal(t, len(n.childSectors), childTotal)
	}
	return len(n.entries) + childTotal
}
