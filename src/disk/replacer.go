package disk

import (
	"fmt"

	"lruk-buffer-golang/src/common"
)

// Replacer decides which unpinned frame of the buffer pool is reclaimed next.
// Implementations hold no lock; the buffer pool serializes every call.
type Replacer interface {
	RecordAccess(frameId common.FrameId, accessType common.AccessType) error
	SetEvictable(frameId common.FrameId, evictable bool) error
	Evict() (common.FrameId, bool)
	Remove(frameId common.FrameId) error
	Size() int
}

const (
	PolicyLRUK = "lru-k"
	PolicyLRU  = "lru"
)

// NewReplacer creates a replacer for the named policy. An empty name selects LRU-K.
// k is ignored by the LRU policy.
func NewReplacer(policy string, capacity int, k int) (Replacer, error) {
	switch policy {
	case PolicyLRUK, "":
		r, err := NewLRUKReplacer(capacity, k)
		if err != nil {
			return nil, err
		}
		return r, nil
	case PolicyLRU:
		r, err := NewLRUReplacer(capacity)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, policy)
	}
}
