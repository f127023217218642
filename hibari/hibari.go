package hibari

import (
	"sort"

	"github.com/kfujita/HibariDB/catalog"
	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/errors"
	"github.com/kfujita/HibariDB/storage/buffer"
	"github.com/kfujita/HibariDB/storage/disk"
	"github.com/kfujita/HibariDB/storage/table"
)

// HibariDB owns the storage substrate of one database directory and
// namespaces its tables. All tables share the disk manager and the
// buffer pool. Access is single-threaded; the engine provides no
// synchronization for concurrent callers.
type HibariDB struct {
	name        string
	dbPath      string
	diskManager disk.DiskManager
	bpm         *buffer.BufferPoolManager
	tables      map[string]*table.DiskBasedTable
}

// NewHibariDB opens a database rooted at dbPath, creating the
// directory when absent
func NewHibariDB(name string, dbPath string) *HibariDB {
	diskManager := disk.NewDiskManagerImpl(dbPath)
	if diskManager == nil {
		return nil
	}
	return &HibariDB{
		name:        name,
		dbPath:      dbPath,
		diskManager: diskManager,
		bpm:         buffer.NewBufferPoolManager(common.BufferPoolSize, diskManager),
		tables:      make(map[string]*table.DiskBasedTable),
	}
}

// NewHibariDBOnMemory backs the database with in-memory page files.
// Intended for tests.
func NewHibariDBOnMemory(name string) *HibariDB {
	diskManager := disk.NewVirtualDiskManagerImpl()
	return &HibariDB{
		name:        name,
		diskManager: diskManager,
		bpm:         buffer.NewBufferPoolManager(common.BufferPoolSize, diskManager),
		tables:      make(map[string]*table.DiskBasedTable),
	}
}

// CreateTable registers a new empty table
func (db *HibariDB) CreateTable(tableName string) (*table.DiskBasedTable, error) {
	if _, ok := db.tables[tableName]; ok {
		return nil, errors.TableAlreadyExistsErr
	}
	tbl := table.NewDiskBasedTable(tableName, db.bpm)
	db.tables[tableName] = tbl
	return tbl, nil
}

// GetTable returns the named table, nil when absent
func (db *HibariDB) GetTable(tableName string) *table.DiskBasedTable {
	return db.tables[tableName]
}

// DropTable removes the in-memory handle. The table's files stay on
// disk; reclaiming them is left to the caller.
func (db *HibariDB) DropTable(tableName string) {
	delete(db.tables, tableName)
}

// Optimize flushes every dirty page to disk
func (db *HibariDB) Optimize() {
	db.bpm.FlushAllPages()
}

// BufferPoolManager exposes the shared pool, mainly for tests and
// diagnostics
func (db *HibariDB) BufferPoolManager() *buffer.BufferPoolManager {
	return db.bpm
}

// PrintStatistics reports table and column summaries through the
// diagnostic sink
func (db *HibariDB) PrintStatistics() {
	common.HbPrintf(common.INFO, "Database Statistics:\n")
	common.HbPrintf(common.INFO, "Database Name: %s\n", db.name)
	common.HbPrintf(common.INFO, "Table Count: %d\n", len(db.tables))
	common.HbPrintf(common.INFO, "Resident Pages: %d\n", db.bpm.ResidentPageCount())

	tableNames := make([]string, 0, len(db.tables))
	for tableName := range db.tables {
		tableNames = append(tableNames, tableName)
	}
	sort.Strings(tableNames)

	for _, tableName := range tableNames {
		stats := catalog.CalcTableStatistics(db.tables[tableName])
		common.HbPrintf(common.INFO, "  Table %s: %d rows\n", stats.TableName, stats.RowCount)
		for _, colStats := range stats.Columns {
			if colStats.Count == 0 {
				common.HbPrintf(common.INFO, "    Column %s (%v): empty\n", colStats.Name, colStats.Type)
				continue
			}
			common.HbPrintf(common.INFO, "    Column %s (%v): count=%d distinct~%d min=%v max=%v\n",
				colStats.Name, colStats.Type, colStats.Count, colStats.Distinct, *colStats.Min, *colStats.Max)
		}
	}
}

// ShutDown flushes all dirty pages and closes the database files
func (db *HibariDB) ShutDown() {
	db.bpm.FlushAllPages()
	db.diskManager.ShutDown()
}
