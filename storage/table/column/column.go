package column

import (
	"fmt"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/storage/buffer"
	"github.com/kfujita/HibariDB/storage/index"
	"github.com/kfujita/HibariDB/storage/page"
	"github.com/kfujita/HibariDB/types"
)

// DiskBasedColumn is an append-only sequence of fixed-width values of
// one declared type, packed into pages of its own data file and
// indexed by a per-column B+ tree. The name is the column path
// relative to the database directory, e.g. "employees/salary".
type DiskBasedColumn struct {
	name           string
	columnType     types.TypeID
	dataFile       string
	index          *index.BPlusTreeIndex
	bpm            *buffer.BufferPoolManager
	totalRecords   types.RecordID
	recordsPerPage uint64
}

func NewDiskBasedColumn(name string, columnType types.TypeID, bpm *buffer.BufferPoolManager) *DiskBasedColumn {
	recordSize := uint64(columnType.Size())
	return &DiskBasedColumn{
		name:           name,
		columnType:     columnType,
		dataFile:       name + ".data",
		index:          index.NewBPlusTreeIndex(name+".idx", columnType, bpm),
		bpm:            bpm,
		recordsPerPage: common.PageSize / recordSize,
	}
}

// Append stores value as the next record, indexes it and returns the
// assigned record id
func (c *DiskBasedColumn) Append(value types.Value) types.RecordID {
	common.HB_Assert(value.ValueType() == c.columnType,
		fmt.Sprintf("column %s: append of mismatched type %v", c.name, value.ValueType()))

	recordID := c.totalRecords
	pageID := types.PageID(uint64(recordID) / c.recordsPerPage)
	slot := uint64(recordID) % c.recordsPerPage

	pg := c.bpm.FetchPage(c.dataFile, pageID)
	if pg == nil {
		common.HbPrintf(common.ERROR, "column %s: cannot fetch page %d for append\n", c.name, pageID)
		return recordID
	}
	c.writeValueToPage(pg, slot, value)
	c.bpm.UnpinPage(c.dataFile, pageID, true)

	c.index.Insert(value, recordID)

	c.totalRecords++
	return recordID
}

// Get decodes the record stored under recordID. Out-of-range ids are
// a caller contract violation.
func (c *DiskBasedColumn) Get(recordID types.RecordID) types.Value {
	common.HB_Assert(recordID < c.totalRecords,
		fmt.Sprintf("column %s: get of record %d past size %d", c.name, recordID, c.totalRecords))

	pageID := types.PageID(uint64(recordID) / c.recordsPerPage)
	slot := uint64(recordID) % c.recordsPerPage

	pg := c.bpm.FetchPage(c.dataFile, pageID)
	if pg == nil {
		common.HbPrintf(common.ERROR, "column %s: cannot fetch page %d for get\n", c.name, pageID)
		return types.NewDefaultValue(c.columnType)
	}
	value := c.readValueFromPage(pg, slot)
	c.bpm.UnpinPage(c.dataFile, pageID, false)
	return value
}

// FindRecords returns the record ids whose value equals value, in
// insertion order
func (c *DiskBasedColumn) FindRecords(value types.Value) []types.RecordID {
	return c.index.PointSearch(value)
}

// FindRecordsInRange returns the record ids whose value lies in
// [start, end], both inclusive
func (c *DiskBasedColumn) FindRecordsInRange(start types.Value, end types.Value) []types.RecordID {
	return c.index.RangeSearch(start, end)
}

// Sum adds up the column page by page so datasets larger than the
// buffer pool stream through it. Non-numeric columns yield 0.
func (c *DiskBasedColumn) Sum() float64 {
	if !c.columnType.IsNumeric() {
		return 0.0
	}

	result := 0.0
	total := uint64(c.totalRecords)
	for pageID := types.PageID(0); uint64(pageID)*c.recordsPerPage < total; pageID++ {
		pg := c.bpm.FetchPage(c.dataFile, pageID)
		if pg == nil {
			common.HbPrintf(common.ERROR, "column %s: cannot fetch page %d for sum\n", c.name, pageID)
			continue
		}

		start := uint64(pageID) * c.recordsPerPage
		end := start + c.recordsPerPage
		if end > total {
			end = total
		}
		for i := start; i < end; i++ {
			result += c.readValueFromPage(pg, i-start).NumericValue()
		}
		c.bpm.UnpinPage(c.dataFile, pageID, false)
	}
	return result
}

// Average returns Sum divided by the record count, 0 when empty
func (c *DiskBasedColumn) Average() float64 {
	if c.totalRecords == 0 {
		return 0.0
	}
	return c.Sum() / float64(c.totalRecords)
}

func (c *DiskBasedColumn) Size() uint64 {
	return uint64(c.totalRecords)
}

func (c *DiskBasedColumn) Name() string {
	return c.name
}

func (c *DiskBasedColumn) GetType() types.TypeID {
	return c.columnType
}

// Index exposes the column's B+ tree for invariant checks
func (c *DiskBasedColumn) Index() *index.BPlusTreeIndex {
	return c.index
}

func (c *DiskBasedColumn) writeValueToPage(pg *page.Page, slot uint64, value types.Value) {
	offset := uint32(slot * uint64(c.columnType.Size()))
	pg.Copy(offset, value.Serialize())
}

func (c *DiskBasedColumn) readValueFromPage(pg *page.Page, slot uint64) types.Value {
	recordSize := uint64(c.columnType.Size())
	offset := slot * recordSize
	data := pg.Data()
	return *types.NewValueFromBytes(data[offset:offset+recordSize], c.columnType)
}
