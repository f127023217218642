package buffer

import (
	"crypto/rand"
	"testing"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/storage/disk"
	testingpkg "github.com/kfujita/HibariDB/testing/testing_assert"
	"github.com/kfujita/HibariDB/types"
)

func TestBinaryDataSurvivesEviction(t *testing.T) {
	poolSize := uint32(10)

	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(poolSize, dm)

	pg := bpm.FetchPage("f.data", types.PageID(0))
	testingpkg.SimpleAssert(t, pg != nil)

	randomBinaryData := make([]byte, common.PageSize)
	rand.Read(randomBinaryData)
	// terminal characters in the middle and at the end must survive
	randomBinaryData[common.PageSize/2] = 0
	randomBinaryData[common.PageSize-1] = 0

	var fixedRandomBinaryData [common.PageSize]byte
	copy(fixedRandomBinaryData[:], randomBinaryData)

	pg.Copy(0, randomBinaryData)
	testingpkg.Equals(t, fixedRandomBinaryData, *pg.Data())
	testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(0), true))

	// churn enough other pages through the pool to evict page 0
	for i := uint64(1); i <= uint64(poolSize)*2; i++ {
		p := bpm.FetchPage("f.data", types.PageID(i))
		testingpkg.SimpleAssert(t, p != nil)
		testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(i), false))
	}

	pg = bpm.FetchPage("f.data", types.PageID(0))
	testingpkg.Equals(t, fixedRandomBinaryData, *pg.Data())
	testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(0), false))
}

func TestResidencyNeverExceedsPoolSize(t *testing.T) {
	poolSize := uint32(5)

	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(poolSize, dm)

	for i := uint64(0); i < 20; i++ {
		pg := bpm.FetchPage("f.data", types.PageID(i))
		testingpkg.SimpleAssert(t, pg != nil)
		testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(i), false))
		testingpkg.SimpleAssert(t, bpm.ResidentPageCount() <= int(poolSize))
	}
}

func TestFetchFailsWhenAllPagesPinned(t *testing.T) {
	poolSize := uint32(3)

	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(poolSize, dm)

	for i := uint64(0); i < uint64(poolSize); i++ {
		testingpkg.SimpleAssert(t, bpm.FetchPage("f.data", types.PageID(i)) != nil)
	}

	// every frame is pinned, nothing can be evicted
	testingpkg.SimpleAssert(t, bpm.FetchPage("f.data", types.PageID(99)) == nil)

	testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(0), false))
	testingpkg.SimpleAssert(t, bpm.FetchPage("f.data", types.PageID(99)) != nil)
}

func TestFlushPageClearsDirtyFlag(t *testing.T) {
	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(4, dm)

	pg := bpm.FetchPage("f.data", types.PageID(0))
	pg.Copy(0, []byte("hibari"))
	testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(0), true))

	testingpkg.SimpleAssert(t, bpm.FlushPage("f.data", types.PageID(0)))
	// second flush is a no-op on a clean page
	testingpkg.SimpleAssert(t, !bpm.FlushPage("f.data", types.PageID(0)))

	data := make([]byte, common.PageSize)
	testingpkg.Ok(t, dm.ReadPage("f.data", types.PageID(0), data))
	testingpkg.Equals(t, []byte("hibari"), data[:6])
}

func TestFlushAllPages(t *testing.T) {
	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(8, dm)

	for i := uint64(0); i < 4; i++ {
		pg := bpm.FetchPage("f.data", types.PageID(i))
		pg.Copy(0, []byte{byte('a' + i)})
		testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(i), true))
	}

	bpm.FlushAllPages()

	data := make([]byte, common.PageSize)
	for i := uint64(0); i < 4; i++ {
		testingpkg.Ok(t, dm.ReadPage("f.data", types.PageID(i), data))
		testingpkg.Equals(t, byte('a'+i), data[0])
	}
}

func TestDirtyVictimIsWrittenBack(t *testing.T) {
	poolSize := uint32(2)

	dm := disk.NewDiskManagerTest()
	defer dm.ShutDown()
	bpm := NewBufferPoolManager(poolSize, dm)

	pg := bpm.FetchPage("f.data", types.PageID(0))
	pg.Copy(0, []byte("dirty"))
	testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(0), true))

	// evict page 0 without ever flushing explicitly
	for i := uint64(1); i <= 2; i++ {
		p := bpm.FetchPage("f.data", types.PageID(i))
		testingpkg.SimpleAssert(t, p != nil)
		testingpkg.Ok(t, bpm.UnpinPage("f.data", types.PageID(i), false))
	}

	data := make([]byte, common.PageSize)
	testingpkg.Ok(t, dm.ReadPage("f.data", types.PageID(0), data))
	testingpkg.Equals(t, []byte("dirty"), data[:5])
}
