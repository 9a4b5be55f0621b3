package disk

import (
	"math/rand"
	"os"
	"testing"

	"github.com/ncw/directio"
	"github.com/stretchr/testify/require"

	"lruk-buffer-golang/src/common"
)

var testFileName = "tmp-file"

func newTestDiskManager(t *testing.T) *DiskManager {
	dm, err := NewDiskManager(testFileName)
	require.NoError(t, err)
	return dm
}

func TestNewDiskManager(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	require.Equal(t, testFileName, dm.fileName)
	require.Equal(t, 0, dm.header.numFreePages())
	require.Equal(t, common.PageId(1), dm.header.nextPageId())

	// Check whether the header page is written.
	fi, err := os.Open(testFileName)
	require.NoError(t, err)
	defer fi.Close()
	headerPageData := directio.AlignedBlock(pageSize)
	n, err := fi.Read(headerPageData)
	require.Nil(t, err)
	require.Equal(t, pageSize, n)
	expectedHeader := createHeaderPageInfo(headerPageData)
	require.Equal(t, 0, expectedHeader.numFreePages())
	require.Equal(t, common.PageId(1), expectedHeader.nextPageId())
}

func TestReadWrite(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)

	allData := make([][]byte, 0)
	for i := 0; i < 10; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		data := directio.AlignedBlock(pageSize)
		rand.Read(data)
		allData = append(allData, data)
		require.NoError(t, dm.WritePage(pageId, data))

		secondData := directio.AlignedBlock(pageSize)
		require.NoError(t, dm.ReadPage(pageId, secondData))
		require.Equal(t, data, secondData)
	}
	dm.Close()

	newDm := newTestDiskManager(t)
	defer newDm.Close()
	for i := 0; i < 10; i++ {
		data := directio.AlignedBlock(pageSize)
		require.NoError(t, newDm.ReadPage(common.PageId(i+1), data))
		require.Equal(t, allData[i], data)
	}

	err := newDm.ReadPage(common.PageId(11), directio.AlignedBlock(pageSize))
	require.Error(t, err) // Past end of file.
}

func TestAllocateAndDeallocate(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	// Allocate pages in sequence.
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, common.PageId(i), pageId)
		require.Equal(t, common.PageId(i+1), dm.header.nextPageId())
		require.Equal(t, 0, dm.header.numFreePages())
	}

	// Deallocate pages in sequence.
	for i := 1; i <= 5; i++ {
		require.NoError(t, dm.DeallocatePage(common.PageId(i)))
		require.Equal(t, common.PageId(6), dm.header.nextPageId())
		require.Equal(t, i, dm.header.numFreePages())
		require.Equal(t, common.PageId(i), dm.header.get(i-1))
	}

	// Reuse the free list in order, then extend the file again.
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, common.PageId(i), pageId)
		require.Equal(t, common.PageId(6), dm.header.nextPageId())
		require.Equal(t, 5-i, dm.header.numFreePages())
	}
	pageId, err := dm.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, common.PageId(6), pageId)

	require.ErrorIs(t, dm.DeallocatePage(common.PageId(0)), ErrPageNotAllocated)
	require.ErrorIs(t, dm.DeallocatePage(common.PageId(100)), ErrPageNotAllocated)
}

func TestHeaderPage(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)

	for i := 0; i < 5; i++ {
		_, err := dm.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, dm.DeallocatePage(common.PageId(2)))
	require.NoError(t, dm.DeallocatePage(common.PageId(4)))
	require.ErrorIs(t, dm.DeallocatePage(common.PageId(2)), ErrPageNotAllocated)
	dm.Close()

	newDm := newTestDiskManager(t)
	defer newDm.Close()

	require.Equal(t, 2, newDm.header.numFreePages())
	require.Equal(t, common.PageId(6), newDm.header.nextPageId())
	require.Equal(t, common.PageId(2), newDm.header.get(0))
	require.Equal(t, common.PageId(4), newDm.header.get(1))
}
