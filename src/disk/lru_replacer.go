package disk

import (
	"container/list"
	"fmt"

	"lruk-buffer-golang/src/common"
)

type lruEntry struct {
	frameId     common.FrameId
	isEvictable bool
}

// LRUReplacer evicts the least recently accessed evictable frame.
type LRUReplacer struct {
	capacity       int
	dataList       list.List
	index          map[common.FrameId]*list.Element
	evictableCount int
}

func NewLRUReplacer(capacity int) (*LRUReplacer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive but %d was requested", ErrInvalidConfig, capacity)
	}
	return &LRUReplacer{
		capacity: capacity,
		index:    make(map[common.FrameId]*list.Element),
	}, nil
}

func (lru *LRUReplacer) checkFrameId(frameId common.FrameId) error {
	if frameId < 0 || int(frameId) >= lru.capacity {
		return invalidFrameError(frameId, lru.capacity)
	}
	return nil
}

func (lru *LRUReplacer) RecordAccess(frameId common.FrameId, _ common.AccessType) error {
	if err := lru.checkFrameId(frameId); err != nil {
		return err
	}
	if elem, ok := lru.index[frameId]; ok {
		lru.dataList.MoveToFront(elem)
		return nil
	}
	lru.index[frameId] = lru.dataList.PushFront(&lruEntry{frameId: frameId})
	return nil
}

func (lru *LRUReplacer) SetEvictable(frameId common.FrameId, evictable bool) error {
	if err := lru.checkFrameId(frameId); err != nil {
		return err
	}
	elem, ok := lru.index[frameId]
	if !ok {
		return nil
	}
	entry := elem.Value.(*lruEntry)
	if entry.isEvictable == evictable {
		return nil
	}
	entry.isEvictable = evictable
	if evictable {
		lru.evictableCount++
	} else {
		lru.evictableCount--
	}
	return nil
}

func (lru *LRUReplacer) Evict() (common.FrameId, bool) {
	if lru.evictableCount == 0 {
		return 0, false
	}
	for elem := lru.dataList.Back(); elem != nil; elem = elem.Prev() {
		entry := elem.Value.(*lruEntry)
		if !entry.isEvictable {
			continue
		}
		lru.dataList.Remove(elem)
		delete(lru.index, entry.frameId)
		lru.evictableCount--
		return entry.frameId, true
	}
	return 0, false
}

func (lru *LRUReplacer) Remove(frameId common.FrameId) error {
	if err := lru.checkFrameId(frameId); err != nil {
		return err
	}
	elem, ok := lru.index[frameId]
	if !ok {
		return nil
	}
	if !elem.Value.(*lruEntry).isEvictable {
		return fmt.Errorf("%w: frame %d", ErrRemovePinnedFrame, frameId)
	}
	lru.dataList.Remove(elem)
	delete(lru.index, frameId)
	lru.evictableCount--
	return nil
}

func (lru *LRUReplacer) Size() int {
	return lru.evictableCount
}
