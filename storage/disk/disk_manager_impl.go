package disk

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sasha-s/go-deadlock"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/types"
)

// DiskManagerImpl is the file backed implementation of DiskManager.
// Files are rooted at the database directory and opened lazily on
// first access, truncated at creation.
type DiskManagerImpl struct {
	dbPath    string
	files     map[string]*os.File
	numWrites uint64
	fileMutex deadlock.Mutex
}

// NewDiskManagerImpl returns a DiskManager rooted at dbPath. The
// directory is created if absent.
func NewDiskManagerImpl(dbPath string) DiskManager {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		common.HbPrintf(common.FATAL, "disk: cannot create database directory %s: %v\n", dbPath, err)
		return nil
	}
	return &DiskManagerImpl{dbPath: dbPath, files: make(map[string]*os.File)}
}

func (d *DiskManagerImpl) getFile(fileName string) (*os.File, error) {
	if file, ok := d.files[fileName]; ok {
		return file, nil
	}

	filePath := filepath.Join(d.dbPath, fileName)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	d.files[fileName] = file
	return file, nil
}

// WritePage writes exactly one page at pageID * PageSize and forces a
// flush to the OS. A failed write is retried once; a persistent
// failure is reported through the diagnostic sink, not returned as a
// panic.
func (d *DiskManagerImpl) WritePage(fileName string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	file, err := d.getFile(fileName)
	if err != nil {
		common.HbPrintf(common.ERROR, "disk: cannot open file %s: %v\n", fileName, err)
		return err
	}

	offset := int64(pageID) * common.PageSize
	_, err = file.WriteAt(pageData, offset)
	if err != nil {
		common.HbPrintf(common.ERROR, "disk: write of page %d to %s failed: %v (retrying)\n", pageID, fileName, err)
		_, err = file.WriteAt(pageData, offset)
		if err != nil {
			common.HbPrintf(common.ERROR, "disk: retry write of page %d to %s also failed: %v\n", pageID, fileName, err)
			return err
		}
	}

	d.numWrites++
	file.Sync()
	return nil
}

// ReadPage reads one page at pageID * PageSize. When the file ends
// early or does not exist yet, the unread suffix of pageData is zero
// filled; this is not an error.
func (d *DiskManagerImpl) ReadPage(fileName string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	file, err := d.getFile(fileName)
	if err != nil {
		common.HbPrintf(common.ERROR, "disk: cannot open file %s: %v\n", fileName, err)
		zeroFill(pageData, 0)
		return nil
	}

	offset := int64(pageID) * common.PageSize
	bytesRead, err := file.ReadAt(pageData, offset)
	if err != nil && err != io.EOF {
		common.HbPrintf(common.ERROR, "disk: read of page %d from %s failed: %v\n", pageID, fileName, err)
		zeroFill(pageData, 0)
		return nil
	}
	if bytesRead < len(pageData) {
		zeroFill(pageData, bytesRead)
	}
	return nil
}

// GetNumWrites returns the number of page writes issued so far
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites
}

// ShutDown flushes and closes all open files
func (d *DiskManagerImpl) ShutDown() {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	for fileName, file := range d.files {
		if err := file.Sync(); err != nil {
			common.HbPrintf(common.WARN, "disk: sync of %s at shutdown failed: %v\n", fileName, err)
		}
		file.Close()
	}
	d.files = make(map[string]*os.File)
}

func zeroFill(data []byte, from int) {
	for i := from; i < len(data); i++ {
		data[i] = 0
	}
}
