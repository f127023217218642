package buffer

import (
	"github.com/sasha-s/go-deadlock"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/errors"
	"github.com/kfujita/HibariDB/storage/disk"
	"github.com/kfujita/HibariDB/storage/page"
	"github.com/kfujita/HibariDB/types"
)

// pageKey identifies a page across all files managed by the pool
type pageKey struct {
	fileName string
	pageID   types.PageID
}

// BufferPoolManager keeps a bounded set of pages in memory keyed by
// (file, page id), evicting by LRU and writing dirty pages back on
// eviction. It serves every file of one database.
type BufferPoolManager struct {
	diskManager disk.DiskManager
	pages       []*page.Page
	replacer    *LRUReplacer
	freeList    []FrameID
	pageTable   map[pageKey]FrameID
	mutex       deadlock.Mutex
}

// NewBufferPoolManager returns an empty buffer pool of poolSize frames
func NewBufferPoolManager(poolSize uint32, diskManager disk.DiskManager) *BufferPoolManager {
	freeList := make([]FrameID, poolSize)
	pages := make([]*page.Page, poolSize)
	for i := uint32(0); i < poolSize; i++ {
		freeList[i] = FrameID(i)
		pages[i] = nil
	}

	return &BufferPoolManager{
		diskManager: diskManager,
		pages:       pages,
		replacer:    NewLRUReplacer(),
		freeList:    freeList,
		pageTable:   make(map[pageKey]FrameID),
	}
}

// FetchPage fetches the requested page from the buffer pool. If the
// page is not resident it is read from disk, evicting the LRU page
// when the pool is full. Returns nil only when every frame is pinned.
func (b *BufferPoolManager) FetchPage(fileName string, pageID types.PageID) *page.Page {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	key := pageKey{fileName, pageID}
	if frameID, ok := b.pageTable[key]; ok {
		pg := b.pages[frameID]
		pg.IncPinCount()
		b.replacer.Pin(frameID)
		return pg
	}

	frameID := b.getFrameID()
	if frameID == nil {
		common.HbPrintf(common.ERROR, "buffer: no evictable frame for page %d of %s\n", pageID, fileName)
		return nil
	}

	// write back whatever occupied the frame before reuse
	if currentPage := b.pages[*frameID]; currentPage != nil {
		if currentPage.IsDirty() {
			data := currentPage.Data()
			b.diskManager.WritePage(currentPage.FileName(), currentPage.ID(), data[:])
		}
		delete(b.pageTable, pageKey{currentPage.FileName(), currentPage.ID()})
	}

	data := &[common.PageSize]byte{}
	if err := b.diskManager.ReadPage(fileName, pageID, data[:]); err != nil {
		common.HbPrintf(common.ERROR, "buffer: read of page %d of %s failed: %v\n", pageID, fileName, err)
	}
	pg := page.New(fileName, pageID, data)
	b.pageTable[key] = *frameID
	b.pages[*frameID] = pg

	return pg
}

// UnpinPage unpins the target page, recording whether the caller
// dirtied it. When the pin count reaches zero the page becomes
// evictable.
func (b *BufferPoolManager) UnpinPage(fileName string, pageID types.PageID, isDirty bool) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable[pageKey{fileName, pageID}]
	if !ok {
		return errors.PageNotFoundErr
	}

	pg := b.pages[frameID]
	pg.DecPinCount()
	if pg.PinCount() <= 0 {
		b.replacer.Unpin(frameID)
	}
	if isDirty {
		pg.SetIsDirty(true)
	}
	return nil
}

// FlushPage writes the target page through to disk if it is resident
// and dirty, then clears the dirty flag. No-op otherwise.
func (b *BufferPoolManager) FlushPage(fileName string, pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.flushPageNoLock(pageKey{fileName, pageID})
}

func (b *BufferPoolManager) flushPageNoLock(key pageKey) bool {
	frameID, ok := b.pageTable[key]
	if !ok {
		return false
	}

	pg := b.pages[frameID]
	if !pg.IsDirty() {
		return false
	}

	data := pg.Data()
	b.diskManager.WritePage(key.fileName, key.pageID, data[:])
	pg.SetIsDirty(false)
	return true
}

// FlushAllPages flushes every resident dirty page to disk
func (b *BufferPoolManager) FlushAllPages() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for key := range b.pageTable {
		b.flushPageNoLock(key)
	}
}

// ResidentPageCount returns the number of pages currently held
func (b *BufferPoolManager) ResidentPageCount() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return len(b.pageTable)
}

func (b *BufferPoolManager) getFrameID() *FrameID {
	if len(b.freeList) > 0 {
		frameID := b.freeList[0]
		b.freeList = b.freeList[1:]
		return &frameID
	}

	return b.replacer.Victim()
}
