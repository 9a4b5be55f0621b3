package disk

import (
	"fmt"

	"lruk-buffer-golang/src/common"
)

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrInvalidFrameId is returned when a frame id lies outside [0, capacity).
	ErrInvalidFrameId = constError("invalid frame id")
	// ErrRemovePinnedFrame is returned by Remove on a tracked frame that is not evictable.
	ErrRemovePinnedFrame = constError("cannot remove a non-evictable frame")
	// ErrInvalidConfig is returned by constructors given unusable parameters.
	ErrInvalidConfig = constError("invalid replacer config")

	ErrBufferPoolFull  = constError("buffer pool is full")
	ErrPagePinned      = constError("page is still pinned")
	ErrPageNotResident = constError("page is not in the buffer pool")
	ErrPageNotPinned   = constError("page is not pinned")

	// ErrPageNotAllocated is returned when deallocating a page that is free or was never allocated.
	ErrPageNotAllocated = constError("page is not allocated")
)

func invalidFrameError(frameId common.FrameId, capacity int) error {
	return fmt.Errorf("%w: %d is not in [0, %d)", ErrInvalidFrameId, frameId, capacity)
}
