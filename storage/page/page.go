package page

import (
	"github.com/kfujita/HibariDB/common"
	"github.com/kfujita/HibariDB/types"
)

// Page is the basic unit of storage. It wraps one 4KiB on-disk page
// held in main memory together with the book-keeping the buffer pool
// needs: identity, pin count and dirty flag. A handle to a Page is
// transient; callers must unpin it before fetching other pages.
type Page struct {
	fileName string
	id       types.PageID
	pinCount int32
	isDirty  bool
	data     *[common.PageSize]byte
}

// IncPinCount increments pin count
func (p *Page) IncPinCount() {
	p.pinCount++
}

// DecPinCount decrements pin count
func (p *Page) DecPinCount() {
	if p.pinCount > 0 {
		p.pinCount--
	}
}

// PinCount returns the pin count
func (p *Page) PinCount() int32 {
	return p.pinCount
}

// FileName returns the file this page belongs to
func (p *Page) FileName() string {
	return p.fileName
}

// ID returns the page id
func (p *Page) ID() types.PageID {
	return p.id
}

func (p *Page) Data() *[common.PageSize]byte {
	return p.data
}

func (p *Page) SetIsDirty(isDirty bool) {
	p.isDirty = isDirty
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

// Copy copies data into the page starting at offset
func (p *Page) Copy(offset uint32, data []byte) {
	copy(p.data[offset:], data)
}

func New(fileName string, id types.PageID, data *[common.PageSize]byte) *Page {
	return &Page{fileName, id, 1, false, data}
}

func NewEmpty(fileName string, id types.PageID) *Page {
	return &Page{fileName, id, 1, false, &[common.PageSize]byte{}}
}
