package disk

import (
	"github.com/dsnet/golib/memfile"
	"github.com/sasha-s/go-deadlock"

	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/types"
)

// VirtualDiskManagerImpl keeps all page files in memory. It exists so
// tests can run hermetically with the same semantics as the file
// backed implementation.
type VirtualDiskManagerImpl struct {
	files     map[string]*memfile.File
	fileMutex deadlock.Mutex
}

func NewVirtualDiskManagerImpl() DiskManager {
	return &VirtualDiskManagerImpl{files: make(map[string]*memfile.File)}
}

func (d *VirtualDiskManagerImpl) getFile(fileName string) *memfile.File {
	if file, ok := d.files[fileName]; ok {
		return file
	}
	file := memfile.New(make([]byte, 0))
	d.files[fileName] = file
	return file
}

func (d *VirtualDiskManagerImpl) WritePage(fileName string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	file := d.getFile(fileName)
	offset := int64(pageID) * common.PageSize
	_, err := file.WriteAt(pageData, offset)
	return err
}

func (d *VirtualDiskManagerImpl) ReadPage(fileName string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	file := d.getFile(fileName)
	offset := int64(pageID) * common.PageSize
	bytesRead, _ := file.ReadAt(pageData, offset)
	if bytesRead < len(pageData) {
		zeroFill(pageData, bytesRead)
	}
	return nil
}

func (d *VirtualDiskManagerImpl) ShutDown() {
	// nothing to close
}
