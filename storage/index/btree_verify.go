package index

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/errors"
	"github.com/kfujita/HibariDB/types"
)

const (
	BrokenLeafChainErr  = errors.Error("leaf chain revisits a page")
	KeyOrderErr         = errors.Error("leaf chain keys are not non-decreasing")
	NodeOverflowErr     = errors.Error("node holds more keys than the order allows")
	LeafChainMissingErr = errors.Error("leaf chain does not cover all records")
)

// VerifyLeafChain walks the leaf chain from the leftmost leaf and
// checks the tree invariants: every leaf, and every internal node on
// the leftmost path, within its key cap, keys non-decreasing across
// the whole chain, no page visited twice. Other internal nodes are not
// visited.
// Returns the number of chained entries so callers can compare it
// against the expected record count.
func (b *BPlusTreeIndex) VerifyLeafChain() (int, error) {
	if b.rootPageID == 0 {
		return 0, nil
	}

	pageID := b.rootPageID
	node := b.getNode(pageID)
	for !node.isLeaf {
		if len(node.keys) > b.maxKeys {
			return 0, NodeOverflowErr
		}
		if len(node.children) == 0 || node.children[0] == 0 {
			common.HbPrintf(common.ERROR, "index: internal node %d has no leftmost child\n", pageID)
			return 0, LeafChainMissingErr
		}
		pageID = node.children[0]
		node = b.getNode(pageID)
	}

	visited := mapset.NewSet[types.PageID]()
	entries := 0
	var prev *types.Value
	for pageID != 0 {
		if visited.Contains(pageID) {
			return entries, BrokenLeafChainErr
		}
		visited.Add(pageID)

		node := b.getNode(pageID)
		if len(node.keys) > b.maxKeys {
			return entries, NodeOverflowErr
		}
		for i := range node.keys {
			if prev != nil && node.keys[i].CompareLessThan(*prev) {
				return entries, KeyOrderErr
			}
			prev = &node.keys[i]
			entries++
		}
		pageID = node.nextLeaf
	}
	return entries, nil
}
