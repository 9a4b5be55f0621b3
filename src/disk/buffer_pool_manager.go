package disk

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"lruk-buffer-golang/src/common"
)

type BufferPoolStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// BufferPoolManager caches disk pages in a fixed number of frames. Its mutex
// is held across every call into the replacer.
type BufferPoolManager struct {
	size        int
	pages       []Page
	replacer    Replacer
	freeList    list.List
	pageTable   map[common.PageId]common.FrameId
	diskManager *DiskManager
	stats       BufferPoolStats
	mu          sync.Mutex
}

func NewBufferPoolManager(size int, diskManager *DiskManager, replacer Replacer) *BufferPoolManager {
	bpm := &BufferPoolManager{
		size:        size,
		pages:       make([]Page, size),
		replacer:    replacer,
		pageTable:   make(map[common.PageId]common.FrameId),
		diskManager: diskManager,
	}
	for i := 0; i < size; i++ {
		bpm.pages[i] = Page{
			data:    directio.AlignedBlock(pageSize),
			frameId: common.FrameId(i),
			pageId:  common.InvalidPageId,
		}
		bpm.freeList.PushBack(common.FrameId(i))
	}
	return bpm
}

func (bpm *BufferPoolManager) FetchPage(pageId common.PageId) (*Page, error) {
	return bpm.FetchPageWithType(pageId, common.AccessLookup)
}

// FetchPageWithType pins the page, reading it from disk if it is not resident.
// accessType is passed through to the replacer.
func (bpm *BufferPoolManager) FetchPageWithType(pageId common.PageId, accessType common.AccessType) (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if frameId, ok := bpm.pageTable[pageId]; ok {
		bpm.stats.Hits++
		if err := bpm.pin(frameId, accessType); err != nil {
			return nil, err
		}
		page := &bpm.pages[frameId]
		page.pinCount += 1
		return page, nil
	}
	bpm.stats.Misses++

	frameId, err := bpm.findAvailableFrame()
	if err != nil {
		return nil, err
	}
	page := &bpm.pages[frameId]
	if err := bpm.diskManager.ReadPage(pageId, page.Data()); err != nil {
		log.WithError(err).Warnf("Cannot read page %d from disk.", pageId)
		bpm.freeList.PushFront(frameId)
		return nil, err
	}
	if err := bpm.pin(frameId, accessType); err != nil {
		bpm.freeList.PushFront(frameId)
		return nil, err
	}
	page.pageId = pageId
	page.pinCount = 1
	bpm.pageTable[pageId] = frameId
	return page, nil
}

func (bpm *BufferPoolManager) UnpinPage(pageId common.PageId, isDirty bool) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Trying to unpin page %d, but the page is not in the buffer.", pageId)
		return fmt.Errorf("%w: page %d", ErrPageNotResident, pageId)
	}
	page := &bpm.pages[frameId]
	if page.PinCount() == 0 {
		log.Warnf("Trying to unpin a page %d, but page's pin count is zero. ", pageId)
		return fmt.Errorf("%w: page %d", ErrPageNotPinned, pageId)
	}
	page.pinCount--
	page.isDirty = page.isDirty || isDirty
	if page.pinCount == 0 {
		return bpm.replacer.SetEvictable(frameId, true)
	}
	return nil
}

func (bpm *BufferPoolManager) FlushPage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Page %d is not in buffer. Cannot flush page.", pageId)
		return nil
	}
	return bpm.flushFrame(frameId)
}

func (bpm *BufferPoolManager) NewPage() (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, err := bpm.findAvailableFrame()
	if err != nil {
		return nil, err
	}
	newPageId, err := bpm.diskManager.AllocatePage()
	if err != nil {
		log.WithError(err).Errorf("Allocate page failed.")
		bpm.freeList.PushFront(frameId)
		return nil, err
	}
	page := &bpm.pages[frameId]
	if err := bpm.diskManager.ReadPage(newPageId, page.Data()); err != nil {
		log.WithError(err).Errorf("Cannot read page %d from disk.", newPageId)
		bpm.freeList.PushFront(frameId)
		return nil, err
	}
	if err := bpm.pin(frameId, common.AccessUnknown); err != nil {
		bpm.freeList.PushFront(frameId)
		if deallocErr := bpm.diskManager.DeallocatePage(newPageId); deallocErr != nil {
			return nil, errors.Join(err, deallocErr)
		}
		return nil, err
	}
	page.pinCount = 1
	page.pageId = newPageId
	bpm.pageTable[newPageId] = frameId
	return page, nil
}

func (bpm *BufferPoolManager) DeletePage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		return bpm.diskManager.DeallocatePage(pageId)
	}
	page := &bpm.pages[frameId]
	if page.PinCount() > 0 {
		return fmt.Errorf("%w: page %d", ErrPagePinned, pageId)
	}
	if err := bpm.replacer.Remove(frameId); err != nil {
		return err
	}
	if err := bpm.diskManager.DeallocatePage(pageId); err != nil {
		return err
	}
	page.reset()
	delete(bpm.pageTable, pageId)
	bpm.freeList.PushBack(frameId)
	return nil
}

func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	for _, frameId := range bpm.pageTable {
		if err := bpm.flushFrame(frameId); err != nil {
			return err
		}
	}
	return nil
}

func (bpm *BufferPoolManager) Stats() BufferPoolStats {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	return bpm.stats
}

func (bpm *BufferPoolManager) flushFrame(frameId common.FrameId) error {
	page := &bpm.pages[frameId]
	if !page.isDirty {
		return nil
	}
	if err := bpm.diskManager.WritePage(page.PageId(), page.Data()); err != nil {
		log.WithError(err).Errorf("Cannot flush page %d.", page.PageId())
		return err
	}
	page.isDirty = false
	return nil
}

func (bpm *BufferPoolManager) pin(frameId common.FrameId, accessType common.AccessType) error {
	if err := bpm.replacer.RecordAccess(frameId, accessType); err != nil {
		return err
	}
	return bpm.replacer.SetEvictable(frameId, false)
}

// findAvailableFrame returns an empty frame, taking it from the free list or
// evicting a victim chosen by the replacer. A dirty victim is written back.
func (bpm *BufferPoolManager) findAvailableFrame() (common.FrameId, error) {
	if elem := bpm.freeList.Front(); elem != nil {
		bpm.freeList.Remove(elem)
		return elem.Value.(common.FrameId), nil
	}
	frameId, ok := bpm.replacer.Evict()
	if !ok {
		log.Warnf("Buffer pool is full.")
		return 0, ErrBufferPoolFull
	}
	page := &bpm.pages[frameId]
	oldPageId := page.PageId()
	if err := bpm.flushFrame(frameId); err != nil {
		err = fmt.Errorf("write back page %d: %w", oldPageId, err)
		// The replacer already dropped the victim's history; re-track it as evictable.
		return 0, errors.Join(err,
			bpm.replacer.RecordAccess(frameId, common.AccessUnknown),
			bpm.replacer.SetEvictable(frameId, true))
	}
	bpm.stats.Evictions++
	delete(bpm.pageTable, oldPageId)
	page.reset()
	return frameId, nil
}
