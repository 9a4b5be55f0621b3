package disk

import (
	"sync"

	"lruk-buffer-golang/src/common"
)

// Page is a buffer pool frame together with the disk page it currently holds.
type Page struct {
	data     []byte
	frameId  common.FrameId
	pageId   common.PageId
	pinCount int
	isDirty  bool
	sync.RWMutex
}

func (p *Page) Data() []byte { return p.data }

func (p *Page) PageId() common.PageId { return p.pageId }

func (p *Page) FrameId() common.FrameId { return p.frameId }

func (p *Page) PinCount() int { return p.pinCount }

func (p *Page) IsDirty() bool { return p.isDirty }

func (p *Page) reset() {
	p.pageId = common.InvalidPageId
	p.pinCount = 0
	p.isDirty = false
}
