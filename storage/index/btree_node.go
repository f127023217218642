package index

import (
	"encoding/binary"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/types"
)

// node wire layout: isLeaf byte, key type uint32, key count uint64,
// the keys in declared-type form, then for a leaf the record ids and
// the next-leaf page id, for an internal node the child page ids.
const nodeHeaderSize = 1 + 4 + 8

// BPlusTreeNode is the in-memory form of one index page
type BPlusTreeNode struct {
	isLeaf   bool
	keys     []types.Value
	children []types.PageID  // internal nodes: len(keys)+1 entries
	records  []types.RecordID // leaf nodes: parallel to keys
	nextLeaf types.PageID    // leaf chain link, 0 if none
}

// maxKeysForType caps the key count so a serialized node always fits
// in one page. Scalar keys hit the BTreeOrder bound; 256-byte string
// keys are page-bound.
func maxKeysForType(keyType types.TypeID) int {
	perKey := int(keyType.Size()) + 8
	capacity := (common.PageSize - nodeHeaderSize - 8) / perKey
	if capacity > common.BTreeOrder-1 {
		return common.BTreeOrder - 1
	}
	return capacity
}

// repair clamps the node's parallel slices back to a consistent shape.
// Returns true when anything had to change.
func (n *BPlusTreeNode) repair(pageID types.PageID) bool {
	if n.isLeaf {
		if len(n.keys) == len(n.records) {
			return false
		}
		common.HbPrintf(common.ERROR, "index: leaf node %d inconsistent - keys: %d, records: %d\n",
			pageID, len(n.keys), len(n.records))
		min := len(n.keys)
		if len(n.records) < min {
			min = len(n.records)
		}
		n.keys = n.keys[:min]
		n.records = n.records[:min]
		return true
	}

	if len(n.children) == len(n.keys)+1 {
		return false
	}
	common.HbPrintf(common.ERROR, "index: internal node %d inconsistent - keys: %d, children: %d\n",
		pageID, len(n.keys), len(n.children))
	for len(n.children) < len(n.keys)+1 {
		n.children = append(n.children, 0)
	}
	n.children = n.children[:len(n.keys)+1]
	return true
}

// serializeNode writes the node into the page buffer, zeroing it
// first. Overflow past the page boundary is a programming error.
func serializeNode(node *BPlusTreeNode, keyType types.TypeID, data *[common.PageSize]byte) {
	for i := range data {
		data[i] = 0
	}

	offset := 0
	if node.isLeaf {
		data[offset] = 1
	}
	offset++

	binary.LittleEndian.PutUint32(data[offset:], uint32(keyType))
	offset += 4

	binary.LittleEndian.PutUint64(data[offset:], uint64(len(node.keys)))
	offset += 8

	for _, key := range node.keys {
		offset += copy(data[offset:], key.Serialize())
	}

	if node.isLeaf {
		for _, rid := range node.records {
			binary.LittleEndian.PutUint64(data[offset:], uint64(rid))
			offset += 8
		}
		binary.LittleEndian.PutUint64(data[offset:], uint64(node.nextLeaf))
		offset += 8
	} else {
		for _, child := range node.children {
			binary.LittleEndian.PutUint64(data[offset:], uint64(child))
			offset += 8
		}
	}

	common.HB_Assert(offset <= common.PageSize, "index: serialized node exceeds page size")
}

// deserializeNode decodes a node from its page buffer. An all-zero
// page is a fresh empty leaf. Inconsistent shapes are logged and
// repaired; the operation continues best effort.
func deserializeNode(data *[common.PageSize]byte, keyType types.TypeID, pageID types.PageID) *BPlusTreeNode {
	if isZeroPage(data) {
		return &BPlusTreeNode{isLeaf: true}
	}

	node := &BPlusTreeNode{}
	offset := 0
	node.isLeaf = data[offset] != 0
	offset++

	storedType := types.TypeID(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if storedType != keyType {
		common.HbPrintf(common.ERROR, "index: node %d declares key type %v, index expects %v\n",
			pageID, storedType, keyType)
		if common.EnableDebug {
			common.RuntimeStack()
		}
		return &BPlusTreeNode{isLeaf: true}
	}

	keyCount := binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	if keyCount > uint64(maxKeysForType(keyType)) {
		common.HbPrintf(common.ERROR, "index: node %d has invalid key count %d\n", pageID, keyCount)
		return &BPlusTreeNode{isLeaf: true}
	}

	keySize := int(keyType.Size())
	node.keys = make([]types.Value, 0, keyCount)
	for i := uint64(0); i < keyCount; i++ {
		node.keys = append(node.keys, *types.NewValueFromBytes(data[offset:offset+keySize], keyType))
		offset += keySize
	}

	if node.isLeaf {
		node.records = make([]types.RecordID, 0, keyCount)
		for i := uint64(0); i < keyCount; i++ {
			node.records = append(node.records, types.RecordID(binary.LittleEndian.Uint64(data[offset:])))
			offset += 8
		}
		node.nextLeaf = types.PageID(binary.LittleEndian.Uint64(data[offset:]))
		offset += 8
	} else {
		node.children = make([]types.PageID, 0, keyCount+1)
		for i := uint64(0); i <= keyCount; i++ {
			node.children = append(node.children, types.PageID(binary.LittleEndian.Uint64(data[offset:])))
			offset += 8
		}
	}

	if node.repair(pageID) && common.EnableDebug {
		common.RuntimeStack()
	}
	return node
}

func isZeroPage(data *[common.PageSize]byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
