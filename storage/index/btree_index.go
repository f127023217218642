package index

import (
	"sort"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/golang-collections/collections/stack"
	pair "github.com/notEpsilon/go-pair"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/storage/buffer"
	"github.com/kfujita/HibariDB/types"
)

// decoded-node cache sizing. Cost is one node per entry.
const (
	nodeCacheCounters = 1 << 14
	nodeCacheMaxCost  = 1 << 12
)

// BPlusTreeIndex is a persistent ordered index from typed key to
// record ids. Nodes occupy one page each in the index file; decoded
// nodes are additionally cached in memory and written through on any
// mutation. Duplicate keys are legal; record ids for equal keys come
// back in insertion order.
type BPlusTreeIndex struct {
	fileName   string
	keyType    types.TypeID
	rootPageID types.PageID // 0 when the tree is empty
	nextPageID types.PageID // page id allocator, 0 is reserved
	maxKeys    int
	bpm        *buffer.BufferPoolManager
	nodeCache  *ristretto.Cache[uint64, *BPlusTreeNode]
}

// descentStep remembers one internal node on the path from the root
// down to a leaf, along with the child slot the descent took.
type descentStep struct {
	pageID     types.PageID
	node       *BPlusTreeNode
	childIndex int
}

// NewBPlusTreeIndex returns an index whose nodes live in fileName.
// The root and the page id allocator start empty; index files are
// truncated at creation so the tree is rebuilt per process run.
func NewBPlusTreeIndex(fileName string, keyType types.TypeID, bpm *buffer.BufferPoolManager) *BPlusTreeIndex {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, *BPlusTreeNode]{
		NumCounters: nodeCacheCounters,
		MaxCost:     nodeCacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		common.HbPrintf(common.WARN, "index: node cache unavailable: %v\n", err)
		cache = nil
	}

	return &BPlusTreeIndex{
		fileName:   fileName,
		keyType:    keyType,
		rootPageID: 0,
		nextPageID: 1,
		maxKeys:    maxKeysForType(keyType),
		bpm:        bpm,
		nodeCache:  cache,
	}
}

func (b *BPlusTreeIndex) KeyType() types.TypeID { return b.keyType }

func (b *BPlusTreeIndex) allocatePageID() types.PageID {
	pageID := b.nextPageID
	b.nextPageID++
	return pageID
}

// getNode fetches and decodes the node stored at pageID, preferring
// the decoded-node cache over a page decode.
func (b *BPlusTreeIndex) getNode(pageID types.PageID) *BPlusTreeNode {
	if b.nodeCache != nil {
		if node, ok := b.nodeCache.Get(uint64(pageID)); ok {
			return node
		}
	}

	pg := b.bpm.FetchPage(b.fileName, pageID)
	if pg == nil {
		common.HbPrintf(common.ERROR, "index: cannot fetch node page %d of %s\n", pageID, b.fileName)
		return &BPlusTreeNode{isLeaf: true}
	}
	node := deserializeNode(pg.Data(), b.keyType, pageID)
	b.bpm.UnpinPage(b.fileName, pageID, false)

	if b.nodeCache != nil {
		b.nodeCache.Set(uint64(pageID), node, 1)
		b.nodeCache.Wait()
	}
	return node
}

// saveNode serializes the node into its page, marks the page dirty
// and refreshes the decoded-node cache
func (b *BPlusTreeIndex) saveNode(pageID types.PageID, node *BPlusTreeNode) {
	if node.repair(pageID) && common.EnableDebug {
		common.RuntimeStack()
	}

	pg := b.bpm.FetchPage(b.fileName, pageID)
	if pg == nil {
		common.HbPrintf(common.ERROR, "index: cannot fetch node page %d of %s for write\n", pageID, b.fileName)
		return
	}
	serializeNode(node, b.keyType, pg.Data())
	b.bpm.UnpinPage(b.fileName, pageID, true)

	if b.nodeCache != nil {
		b.nodeCache.Set(uint64(pageID), node, 1)
		b.nodeCache.Wait()
	}
}

// findChildIndex returns the index of the first key >= k
func findChildIndex(node *BPlusTreeNode, key types.Value) int {
	return sort.Search(len(node.keys), func(i int) bool {
		return !node.keys[i].CompareLessThan(key)
	})
}

// insertChildIndex returns the index of the first key > k, so that
// descent and leaf placement land after every existing equal key and
// duplicates keep insertion order
func insertChildIndex(node *BPlusTreeNode, key types.Value) int {
	return sort.Search(len(node.keys), func(i int) bool {
		return key.CompareLessThan(node.keys[i])
	})
}

func clampChildIndex(node *BPlusTreeNode, index int, pageID types.PageID) int {
	if index < len(node.children) {
		return index
	}
	common.HbPrintf(common.ERROR, "index: child index %d out of range on node %d (children: %d)\n",
		index, pageID, len(node.children))
	if len(node.children) == 0 {
		return 0
	}
	return len(node.children) - 1
}

// Insert adds a (key, record id) pair to the tree, splitting nodes on
// the way back up as needed
func (b *BPlusTreeIndex) Insert(key types.Value, recordID types.RecordID) {
	if b.rootPageID == 0 {
		b.rootPageID = b.allocatePageID()
		b.saveNode(b.rootPageID, &BPlusTreeNode{isLeaf: true})
	}

	breadcrumbs := stack.New()
	pageID := b.rootPageID
	node := b.getNode(pageID)
	for !node.isLeaf {
		index := clampChildIndex(node, insertChildIndex(node, key), pageID)
		breadcrumbs.Push(descentStep{pageID, node, index})
		if node.children[index] == 0 {
			common.HbPrintf(common.ERROR, "index: node %d references the reserved page 0\n", pageID)
			return
		}
		pageID = node.children[index]
		node = b.getNode(pageID)
	}

	insertIntoLeaf(node, key, recordID)
	if len(node.keys) <= b.maxKeys {
		b.saveNode(pageID, node)
		return
	}

	split := b.splitLeaf(pageID, node)
	leftPageID := pageID
	for {
		if breadcrumbs.Len() == 0 {
			rootPageID := b.allocatePageID()
			root := &BPlusTreeNode{
				isLeaf:   false,
				keys:     []types.Value{split.First},
				children: []types.PageID{leftPageID, split.Second},
			}
			b.saveNode(rootPageID, root)
			b.rootPageID = rootPageID
			return
		}

		step := breadcrumbs.Pop().(descentStep)
		insertIntoInternal(step.node, split.First, split.Second, step.childIndex)
		if len(step.node.keys) <= b.maxKeys {
			b.saveNode(step.pageID, step.node)
			return
		}
		split = b.splitInternal(step.pageID, step.node)
		leftPageID = step.pageID
	}
}

// insertIntoLeaf places the pair after any existing equal keys
func insertIntoLeaf(node *BPlusTreeNode, key types.Value, recordID types.RecordID) {
	index := insertChildIndex(node, key)
	node.keys = append(node.keys, types.Value{})
	copy(node.keys[index+1:], node.keys[index:])
	node.keys[index] = key

	node.records = append(node.records, 0)
	copy(node.records[index+1:], node.records[index:])
	node.records[index] = recordID
}

// insertIntoInternal places the promoted key and the new right child
// produced by a split of the child at childIndex
func insertIntoInternal(node *BPlusTreeNode, key types.Value, newChild types.PageID, childIndex int) {
	node.keys = append(node.keys, types.Value{})
	copy(node.keys[childIndex+1:], node.keys[childIndex:])
	node.keys[childIndex] = key

	node.children = append(node.children, 0)
	copy(node.children[childIndex+2:], node.children[childIndex+1:])
	node.children[childIndex+1] = newChild
}

// splitLeaf moves the upper half of a leaf into a new node, links the
// leaf chain and returns the copied-up separator with the new page id
func (b *BPlusTreeIndex) splitLeaf(pageID types.PageID, node *BPlusTreeNode) pair.Pair[types.Value, types.PageID] {
	mid := len(node.keys) / 2

	newPageID := b.allocatePageID()
	right := &BPlusTreeNode{
		isLeaf:   true,
		keys:     append([]types.Value(nil), node.keys[mid:]...),
		records:  append([]types.RecordID(nil), node.records[mid:]...),
		nextLeaf: node.nextLeaf,
	}

	node.keys = node.keys[:mid]
	node.records = node.records[:mid]
	node.nextLeaf = newPageID

	b.saveNode(pageID, node)
	b.saveNode(newPageID, right)

	return pair.Pair[types.Value, types.PageID]{First: right.keys[0], Second: newPageID}
}

// splitInternal moves the upper half of an internal node into a new
// node; the separator at mid moves up rather than being copied
func (b *BPlusTreeIndex) splitInternal(pageID types.PageID, node *BPlusTreeNode) pair.Pair[types.Value, types.PageID] {
	mid := len(node.keys) / 2
	promoted := node.keys[mid]

	newPageID := b.allocatePageID()
	right := &BPlusTreeNode{
		isLeaf:   false,
		keys:     append([]types.Value(nil), node.keys[mid+1:]...),
		children: append([]types.PageID(nil), node.children[mid+1:]...),
	}

	node.keys = node.keys[:mid]
	node.children = node.children[:mid+1]

	b.saveNode(pageID, node)
	b.saveNode(newPageID, right)

	return pair.Pair[types.Value, types.PageID]{First: promoted, Second: newPageID}
}

// findLeaf descends to the leftmost leaf that can contain key
func (b *BPlusTreeIndex) findLeaf(key types.Value) types.PageID {
	pageID := b.rootPageID
	node := b.getNode(pageID)
	for !node.isLeaf {
		index := clampChildIndex(node, findChildIndex(node, key), pageID)
		if node.children[index] == 0 {
			common.HbPrintf(common.ERROR, "index: node %d references the reserved page 0\n", pageID)
			return 0
		}
		pageID = node.children[index]
		node = b.getNode(pageID)
	}
	return pageID
}

// PointSearch returns every record id stored under key, in insertion
// order. Equal keys may span several leaves, so the scan follows the
// leaf chain until it passes the key.
func (b *BPlusTreeIndex) PointSearch(key types.Value) []types.RecordID {
	results := make([]types.RecordID, 0)
	if b.rootPageID == 0 {
		return results
	}

	pageID := b.findLeaf(key)
	for pageID != 0 {
		node := b.getNode(pageID)
		for i, k := range node.keys {
			if k.CompareEquals(key) {
				results = append(results, node.records[i])
			} else if key.CompareLessThan(k) {
				return results
			}
		}
		pageID = node.nextLeaf
	}
	return results
}

// RangeSearch returns every record id whose key lies in [start, end],
// both bounds inclusive, walking the leaf chain from the leaf
// covering start
func (b *BPlusTreeIndex) RangeSearch(start types.Value, end types.Value) []types.RecordID {
	results := make([]types.RecordID, 0)
	if b.rootPageID == 0 {
		return results
	}

	pageID := b.findLeaf(start)
	for pageID != 0 {
		node := b.getNode(pageID)
		for i, k := range node.keys {
			if end.CompareLessThan(k) {
				return results
			}
			if start.CompareLessThanOrEqual(k) {
				results = append(results, node.records[i])
			}
		}
		pageID = node.nextLeaf
	}
	return results
}
