package disk

import (
	"encoding/binary"

	"lruk-buffer-golang/src/common"
)

// Layout of page 0:
//
//	[0:4)  next never-allocated page id
//	[4:8)  number of entries in the free list
//	[8:)   free list of deallocated page ids, oldest first
const (
	headerNextPageIdOffset = 0
	headerNumFreeOffset    = 4
	headerFreeListOffset   = 8
	headerMaxFreePages     = (pageSize - headerFreeListOffset) / 4
)

type headerPageInfo struct {
	data []byte
}

func createHeaderPageInfo(data []byte) *headerPageInfo {
	return &headerPageInfo{data: data}
}

func (hdr *headerPageInfo) init() {
	hdr.setNextPageId(1)
	hdr.setNumFreePages(0)
}

func (hdr *headerPageInfo) nextPageId() common.PageId {
	return common.PageId(binary.LittleEndian.Uint32(hdr.data[headerNextPageIdOffset:]))
}

func (hdr *headerPageInfo) setNextPageId(pageId common.PageId) {
	binary.LittleEndian.PutUint32(hdr.data[headerNextPageIdOffset:], uint32(pageId))
}

func (hdr *headerPageInfo) numFreePages() int {
	return int(binary.LittleEndian.Uint32(hdr.data[headerNumFreeOffset:]))
}

func (hdr *headerPageInfo) setNumFreePages(n int) {
	binary.LittleEndian.PutUint32(hdr.data[headerNumFreeOffset:], uint32(n))
}

func (hdr *headerPageInfo) get(i int) common.PageId {
	offset := headerFreeListOffset + 4*i
	return common.PageId(binary.LittleEndian.Uint32(hdr.data[offset:]))
}

func (hdr *headerPageInfo) set(i int, pageId common.PageId) {
	offset := headerFreeListOffset + 4*i
	binary.LittleEndian.PutUint32(hdr.data[offset:], uint32(pageId))
}

func (hdr *headerPageInfo) hasFreePage() bool {
	return hdr.numFreePages() > 0
}

func (hdr *headerPageInfo) isFree(pageId common.PageId) bool {
	for i := 0; i < hdr.numFreePages(); i++ {
		if hdr.get(i) == pageId {
			return true
		}
	}
	return false
}

func (hdr *headerPageInfo) popFreePage() common.PageId {
	n := hdr.numFreePages()
	ret := hdr.get(0)
	start := headerFreeListOffset
	copy(hdr.data[start:start+4*(n-1)], hdr.data[start+4:start+4*n])
	hdr.setNumFreePages(n - 1)
	return ret
}

// pushFreePage returns false when the free list is full; the page is then leaked.
func (hdr *headerPageInfo) pushFreePage(pageId common.PageId) bool {
	n := hdr.numFreePages()
	if n >= headerMaxFreePages {
		return false
	}
	hdr.set(n, pageId)
	hdr.setNumFreePages(n + 1)
	return true
}
