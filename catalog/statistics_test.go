package catalog

import (
	"testing"

	"github.com/kfujita/HibariDB/storage/table"
	"github.com/kfujita/HibariDB/storage/table/column"
	"github.com/kfujita/HibariDB/test_util"
	testingpkg "github.com/kfujita/HibariDB/testing/testing_assert"
	"github.com/kfujita/HibariDB/types"
)

func TestColumnStatistics(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := column.NewDiskBasedColumn("t/cat", types.Integer, hi.GetBufferPoolManager())
	for i := 0; i < 100; i++ {
		col.Append(types.NewInteger(int32(i % 10)))
	}

	stats := CalcColumnStatistics(col)
	testingpkg.Equals(t, uint64(100), stats.Count)
	testingpkg.Equals(t, int64(10), stats.Distinct)
	testingpkg.Equals(t, int32(0), stats.Min.ToInteger())
	testingpkg.Equals(t, int32(9), stats.Max.ToInteger())
}

func TestEmptyColumnStatistics(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := column.NewDiskBasedColumn("t/empty", types.Double, hi.GetBufferPoolManager())
	stats := CalcColumnStatistics(col)
	testingpkg.Equals(t, uint64(0), stats.Count)
	testingpkg.Equals(t, int64(0), stats.Distinct)
	testingpkg.SimpleAssert(t, stats.Min == nil)
	testingpkg.SimpleAssert(t, stats.Max == nil)
}

func TestTableStatistics(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	tbl := table.NewDiskBasedTable("people", hi.GetBufferPoolManager())
	testingpkg.Ok(t, tbl.AddColumn("name", types.Varchar))
	testingpkg.Ok(t, tbl.AddColumn("age", types.Integer))

	tbl.InsertRow(map[string]types.Value{
		"name": types.NewVarchar("suzuki"), "age": types.NewInteger(20),
	})
	tbl.InsertRow(map[string]types.Value{
		"name": types.NewVarchar("aoki"), "age": types.NewInteger(22),
	})
	tbl.InsertRow(map[string]types.Value{
		"name": types.NewVarchar("suzuki"), "age": types.NewInteger(25),
	})

	stats := CalcTableStatistics(tbl)
	testingpkg.Equals(t, uint64(3), stats.RowCount)
	testingpkg.Equals(t, 2, len(stats.Columns))
	testingpkg.Equals(t, int64(2), stats.Columns[0].Distinct)
	testingpkg.Equals(t, int64(3), stats.Columns[1].Distinct)
	testingpkg.Equals(t, "aoki", stats.Columns[0].Min.ToVarchar())
	testingpkg.Equals(t, int32(25), stats.Columns[1].Max.ToInteger())
}
