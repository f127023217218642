package table

import (
	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/errors"
	"github.com/kfujita/HibariDB/storage/buffer"
	"github.com/kfujita/HibariDB/storage/table/column"
	"github.com/kfujita/HibariDB/types"
)

// DiskBasedTable is a named ordered set of columns sharing one row
// count. Row-level operations fan out to the per-column stores; all
// columns always hold the same number of records.
type DiskBasedTable struct {
	name        string
	columns     map[string]*column.DiskBasedColumn
	columnOrder []string
	bpm         *buffer.BufferPoolManager
	rowCount    uint64
}

func NewDiskBasedTable(name string, bpm *buffer.BufferPoolManager) *DiskBasedTable {
	return &DiskBasedTable{
		name:    name,
		columns: make(map[string]*column.DiskBasedColumn),
		bpm:     bpm,
	}
}

// AddColumn declares a new column. When the table already has rows
// the new column is back-filled with type-appropriate defaults so all
// columns stay equally long.
func (t *DiskBasedTable) AddColumn(name string, columnType types.TypeID) error {
	if _, ok := t.columns[name]; ok {
		return errors.ColumnAlreadyExistsErr
	}

	col := column.NewDiskBasedColumn(t.name+"/"+name, columnType, t.bpm)
	for i := uint64(0); i < t.rowCount; i++ {
		col.Append(types.NewDefaultValue(columnType))
	}

	t.columns[name] = col
	t.columnOrder = append(t.columnOrder, name)
	return nil
}

// InsertRow appends one value per column in declared order, falling
// back to the column default when the row omits a value
func (t *DiskBasedTable) InsertRow(rowData map[string]types.Value) {
	for _, columnName := range t.columnOrder {
		col := t.columns[columnName]
		if value, ok := rowData[columnName]; ok {
			col.Append(value)
		} else {
			col.Append(types.NewDefaultValue(col.GetType()))
		}
	}
	t.rowCount++
}

// BulkInsert applies InsertRow to each row, flushing the buffer pool
// periodically to bound dirty memory growth
func (t *DiskBasedTable) BulkInsert(rows []map[string]types.Value) {
	for _, row := range rows {
		t.InsertRow(row)
		if t.rowCount%common.BulkFlushInterval == 0 {
			t.bpm.FlushAllPages()
		}
	}
}

// GetColumn returns the named column, nil when absent
func (t *DiskBasedTable) GetColumn(name string) *column.DiskBasedColumn {
	return t.columns[name]
}

// IndexedSelect materializes the rows whose indexColumn value equals
// value. selectedColumns picks the projection; empty means every
// column in declared order.
func (t *DiskBasedTable) IndexedSelect(indexColumn string, value types.Value, selectedColumns []string) []map[string]types.Value {
	col := t.GetColumn(indexColumn)
	if col == nil {
		return []map[string]types.Value{}
	}
	return t.materializeRows(col.FindRecords(value), selectedColumns)
}

// RangeSelect materializes the rows whose indexColumn value lies in
// [startValue, endValue]
func (t *DiskBasedTable) RangeSelect(indexColumn string, startValue types.Value, endValue types.Value, selectedColumns []string) []map[string]types.Value {
	col := t.GetColumn(indexColumn)
	if col == nil {
		return []map[string]types.Value{}
	}
	return t.materializeRows(col.FindRecordsInRange(startValue, endValue), selectedColumns)
}

func (t *DiskBasedTable) materializeRows(recordIDs []types.RecordID, selectedColumns []string) []map[string]types.Value {
	projection := selectedColumns
	if len(projection) == 0 {
		projection = t.columnOrder
	}

	result := make([]map[string]types.Value, 0, len(recordIDs))
	for _, recordID := range recordIDs {
		row := make(map[string]types.Value, len(projection))
		for _, columnName := range projection {
			if col := t.GetColumn(columnName); col != nil {
				row[columnName] = col.Get(recordID)
			}
		}
		result = append(result, row)
	}
	return result
}

func (t *DiskBasedTable) Name() string {
	return t.name
}

func (t *DiskBasedTable) RowCount() uint64 {
	return t.rowCount
}

// ColumnNames returns the column names in declared order
func (t *DiskBasedTable) ColumnNames() []string {
	return t.columnOrder
}
