package disk

import (
	"github.com/kfujita/HibariDB/types"
)

// DiskManager is responsible for interacting with disk. Pages are
// addressed by (file name, page id) where the file name is relative to
// the database directory.
type DiskManager interface {
	ReadPage(fileName string, pageID types.PageID, pageData []byte) error
	WritePage(fileName string, pageID types.PageID, pageData []byte) error
	ShutDown()
}
