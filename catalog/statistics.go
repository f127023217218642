package catalog

import (
	"github.com/kfujita/HibariDB/container/hash"
	"github.com/kfujita/HibariDB/storage/table"
	"github.com/kfujita/HibariDB/storage/table/column"
	"github.com/kfujita/HibariDB/types"
)

// ColumnStatistics summarizes one column: record count, extrema and
// an approximate distinct count derived from murmur3 hashes of the
// serialized values (hash collisions undercount slightly).
type ColumnStatistics struct {
	Name     string
	Type     types.TypeID
	Count    uint64
	Min      *types.Value
	Max      *types.Value
	Distinct int64
}

// TableStatistics aggregates the per-column summaries of one table
type TableStatistics struct {
	TableName string
	RowCount  uint64
	Columns   []*ColumnStatistics
}

// CalcColumnStatistics scans the column once and computes its summary
func CalcColumnStatistics(col *column.DiskBasedColumn) *ColumnStatistics {
	stats := &ColumnStatistics{
		Name:  col.Name(),
		Type:  col.GetType(),
		Count: col.Size(),
	}

	seen := make(map[uint32]struct{})
	for recordID := types.RecordID(0); uint64(recordID) < col.Size(); recordID++ {
		value := col.Get(recordID)
		seen[hash.HashValue(&value)] = struct{}{}

		if stats.Min == nil || value.CompareLessThan(*stats.Min) {
			v := value
			stats.Min = &v
		}
		if stats.Max == nil || value.CompareGreaterThan(*stats.Max) {
			v := value
			stats.Max = &v
		}
	}
	stats.Distinct = int64(len(seen))
	return stats
}

// CalcTableStatistics computes the summary of every column of tbl
func CalcTableStatistics(tbl *table.DiskBasedTable) *TableStatistics {
	stats := &TableStatistics{
		TableName: tbl.Name(),
		RowCount:  tbl.RowCount(),
	}
	for _, columnName := range tbl.ColumnNames() {
		stats.Columns = append(stats.Columns, CalcColumnStatistics(tbl.GetColumn(columnName)))
	}
	return stats
}
