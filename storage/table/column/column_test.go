package column

import (
	"fmt"
	"testing"

	"github.com/kfujita/HibariDB/test_util"
	testingpkg "github.com/kfujita/HibariDB/testing/testing_assert"
	"github.com/kfujita/HibariDB/types"
)

func TestAppendGetRoundTrip(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := NewDiskBasedColumn("t/ints", types.Integer, hi.GetBufferPoolManager())
	for i := 0; i < 100; i++ {
		rid := col.Append(types.NewInteger(int32(i * 3)))
		testingpkg.Equals(t, types.RecordID(i), rid)
	}
	testingpkg.Equals(t, uint64(100), col.Size())

	for i := 0; i < 100; i++ {
		testingpkg.Equals(t, int32(i*3), col.Get(types.RecordID(i)).ToInteger())
	}
}

func TestAppendGetAcrossPagesAndEviction(t *testing.T) {
	// a tiny pool so data pages cycle through disk during the test
	hi := test_util.NewHibariInstance(8)
	defer hi.Finalize()

	col := NewDiskBasedColumn("t/strs", types.Varchar, hi.GetBufferPoolManager())
	// 16 strings per page; 200 records span 13 pages
	const n = 200
	for i := 0; i < n; i++ {
		col.Append(types.NewVarchar(fmt.Sprintf("value-%04d", i)))
	}

	for i := 0; i < n; i++ {
		testingpkg.Equals(t, fmt.Sprintf("value-%04d", i), col.Get(types.RecordID(i)).ToVarchar())
	}
}

func TestFindRecords(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := NewDiskBasedColumn("t/cat", types.Integer, hi.GetBufferPoolManager())
	const n = 1000
	for i := 0; i < n; i++ {
		col.Append(types.NewInteger(int32(i % 10)))
	}

	results := col.FindRecords(types.NewInteger(7))
	testingpkg.Equals(t, n/10, len(results))
	for j, rid := range results {
		testingpkg.Equals(t, types.RecordID(j*10+7), rid)
	}
}

func TestFindRecordsInRange(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := NewDiskBasedColumn("t/vals", types.Double, hi.GetBufferPoolManager())
	const n = 500
	for i := 0; i < n; i++ {
		col.Append(types.NewDouble(float64(i)))
	}

	results := col.FindRecordsInRange(types.NewDouble(100.0), types.NewDouble(200.0))
	testingpkg.Equals(t, 101, len(results))
	testingpkg.Equals(t, types.RecordID(100), results[0])
	testingpkg.Equals(t, types.RecordID(200), results[100])
}

func TestSumAndAverage(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	col := NewDiskBasedColumn("t/vals", types.Double, hi.GetBufferPoolManager())
	testingpkg.Equals(t, 0.0, col.Sum())
	testingpkg.Equals(t, 0.0, col.Average())

	const n = 1000
	for i := 0; i < n; i++ {
		col.Append(types.NewDouble(float64(i) * 1.5))
	}

	// 1.5 * (0 + 1 + ... + 999)
	expected := 1.5 * float64(n-1) * float64(n) / 2
	testingpkg.Equals(t, expected, col.Sum())
	testingpkg.Equals(t, expected/float64(n), col.Average())
}

func TestSumOfNonNumericColumnIsZero(t *testing.T) {
	hi := test_util.NewHibariInstance(32)
	defer hi.Finalize()

	strs := NewDiskBasedColumn("t/strs", types.Varchar, hi.GetBufferPoolManager())
	strs.Append(types.NewVarchar("12"))
	strs.Append(types.NewVarchar("30"))
	testingpkg.Equals(t, 0.0, strs.Sum())
	testingpkg.Equals(t, 0.0, strs.Average())

	bools := NewDiskBasedColumn("t/bools", types.Boolean, hi.GetBufferPoolManager())
	bools.Append(types.NewBoolean(true))
	testingpkg.Equals(t, 0.0, bools.Sum())
}

func TestValueSurvivesFlushAndEviction(t *testing.T) {
	hi := test_util.NewHibariInstance(4)
	defer hi.Finalize()
	bpm := hi.GetBufferPoolManager()

	col := NewDiskBasedColumn("t/ids", types.BigInt, bpm)
	col.Append(types.NewBigInt(424242))
	bpm.FlushAllPages()

	// churn unrelated pages through the small pool to evict the data page
	other := NewDiskBasedColumn("t/other", types.Integer, bpm)
	for i := 0; i < 5000; i++ {
		other.Append(types.NewInteger(int32(i)))
	}

	testingpkg.Equals(t, int64(424242), col.Get(0).ToBigInt())
}
