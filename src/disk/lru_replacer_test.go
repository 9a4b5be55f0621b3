package disk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lruk-buffer-golang/src/common"
)

func newTestLRUReplacer(t *testing.T, capacity int) *LRUReplacer {
	replacer, err := NewLRUReplacer(capacity)
	require.NoError(t, err)
	return replacer
}

func TestLRUReplacer_RecordAccess(t *testing.T) {
	replacer := newTestLRUReplacer(t, 10)

	for i := 0; i < 10; i++ {
		require.NoError(t, replacer.RecordAccess(common.FrameId(i), common.AccessLookup))
		require.Equal(t, common.FrameId(i), replacer.dataList.Front().Value.(*lruEntry).frameId)
		require.Contains(t, replacer.index, common.FrameId(i))
	}
	require.Equal(t, 0, replacer.Size())

	require.NoError(t, replacer.RecordAccess(3, common.AccessLookup))
	require.Equal(t, common.FrameId(3), replacer.dataList.Front().Value.(*lruEntry).frameId)
	require.Equal(t, 10, replacer.dataList.Len())

	require.ErrorIs(t, replacer.RecordAccess(10, common.AccessLookup), ErrInvalidFrameId)
	require.NotContains(t, replacer.index, common.FrameId(10))
}

func TestLRUReplacer_Remove(t *testing.T) {
	replacer := newTestLRUReplacer(t, 10)
	for i := 0; i < 10; i++ {
		recordAccesses(t, replacer, common.FrameId(i))
	}
	require.ErrorIs(t, replacer.Remove(5), ErrRemovePinnedFrame)

	require.NoError(t, replacer.SetEvictable(5, true))
	require.NoError(t, replacer.Remove(5))
	require.NotContains(t, replacer.index, common.FrameId(5))
	elem4 := replacer.index[4]
	elem6 := replacer.index[6]
	require.Equal(t, elem6.Next(), elem4)
	require.Equal(t, 0, replacer.Size())

	require.NoError(t, replacer.Remove(5))
}

func TestLRUReplacer_Evict(t *testing.T) {
	replacer := newTestLRUReplacer(t, 10)
	for i := 0; i < 10; i++ {
		recordAccesses(t, replacer, common.FrameId(i))
		require.NoError(t, replacer.SetEvictable(common.FrameId(i), true))
	}
	for i := 0; i < 10; i++ {
		frameId, ok := replacer.Evict()
		require.Equal(t, true, ok)
		require.Equal(t, common.FrameId(i), frameId)
	}
	_, ok := replacer.Evict()
	require.Equal(t, false, ok)
}

func TestLRUReplacer_Hybrid(t *testing.T) {
	replacer := newTestLRUReplacer(t, 10)
	for i := 0; i < 10; i++ {
		recordAccesses(t, replacer, common.FrameId(i))
		require.NoError(t, replacer.SetEvictable(common.FrameId(i), true))
	}
	require.NoError(t, replacer.Remove(0))
	require.NoError(t, replacer.SetEvictable(3, false))
	require.NoError(t, replacer.Remove(5))
	require.Equal(t, 7, replacer.Size())

	frameId, ok := replacer.Evict()
	require.Equal(t, true, ok)
	require.Equal(t, common.FrameId(1), frameId)
	frameId, ok = replacer.Evict()
	require.Equal(t, true, ok)
	require.Equal(t, common.FrameId(2), frameId)
	frameId, ok = replacer.Evict()
	require.Equal(t, true, ok)
	require.Equal(t, common.FrameId(4), frameId)

	recordAccesses(t, replacer, 6)
	frameId, ok = replacer.Evict()
	require.Equal(t, true, ok)
	require.Equal(t, common.FrameId(7), frameId)
	require.Equal(t, 3, replacer.Size())
}
