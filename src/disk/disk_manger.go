package disk

import (
	"fmt"
	"os"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"lruk-buffer-golang/src/common"
)

const (
	pageSize = directio.BlockSize
)

// DiskManager reads and writes fixed size pages of a single file, bypassing
// the OS page cache. Page 0 holds the allocation header.
type DiskManager struct {
	fileName      string
	header        *headerPageInfo
	headerRawData []byte

	fi *os.File
}

func NewDiskManager(fileName string) (*DiskManager, error) {
	fi, err := directio.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_SYNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open page file %s: %w", fileName, err)
	}
	dm := &DiskManager{
		fileName:      fileName,
		fi:            fi,
		headerRawData: directio.AlignedBlock(pageSize),
	}
	dm.header = createHeaderPageInfo(dm.headerRawData)

	size, err := dm.getFileSize()
	if err != nil {
		fi.Close()
		return nil, err
	}
	if size == 0 { // New file
		dm.header.init()
		if err := dm.writeHeaderPage(); err != nil {
			fi.Close()
			return nil, fmt.Errorf("write header page: %w", err)
		}
	} else if err := dm.readPageData(common.PageId(0), dm.headerRawData); err != nil {
		fi.Close()
		return nil, fmt.Errorf("read header page: %w", err)
	}
	log.WithFields(log.Fields{
		"file":       fileName,
		"nextPageId": dm.header.nextPageId(),
		"freePages":  dm.header.numFreePages(),
	}).Debug("Opened page file.")
	return dm, nil
}

func (dm *DiskManager) Close() error {
	return dm.fi.Close()
}

// AllocatePage reuses a deallocated page if there is one, otherwise it
// extends the file by one zeroed page.
func (dm *DiskManager) AllocatePage() (common.PageId, error) {
	var pageId common.PageId
	if dm.header.hasFreePage() {
		pageId = dm.header.popFreePage()
	} else {
		pageId = dm.header.nextPageId()
		if err := dm.writePageData(pageId, directio.AlignedBlock(pageSize)); err != nil {
			return common.InvalidPageId, fmt.Errorf("extend file with page %d: %w", pageId, err)
		}
		dm.header.setNextPageId(pageId + 1)
	}
	if err := dm.writeHeaderPage(); err != nil {
		return common.InvalidPageId, fmt.Errorf("write header page: %w", err)
	}
	return pageId, nil
}

func (dm *DiskManager) DeallocatePage(pageId common.PageId) error {
	if pageId <= 0 || pageId >= dm.header.nextPageId() {
		return fmt.Errorf("%w: page %d", ErrPageNotAllocated, pageId)
	}
	if dm.header.isFree(pageId) {
		return fmt.Errorf("%w: page %d is already free", ErrPageNotAllocated, pageId)
	}
	if !dm.header.pushFreePage(pageId) {
		log.Warnf("Free page list is full, page %d is leaked.", pageId)
		return nil
	}
	return dm.writeHeaderPage()
}

// ReadPage fills data, which must be an aligned block of pageSize bytes.
func (dm *DiskManager) ReadPage(pageId common.PageId, data []byte) error {
	return dm.readPageData(pageId, data)
}

func (dm *DiskManager) WritePage(pageId common.PageId, data []byte) error {
	return dm.writePageData(pageId, data)
}

func (dm *DiskManager) getFileSize() (int64, error) {
	stat, err := dm.fi.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (dm *DiskManager) readPageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("Page id is negative.")
	}
	offset := int64(pageId) * pageSize
	size, err := dm.getFileSize()
	if err != nil {
		return err
	}
	if offset >= size {
		return fmt.Errorf("Read page %d past end of file.", pageId)
	}
	n, err := dm.fi.ReadAt(data[:pageSize], offset)
	if err != nil {
		return err
	}
	if n < pageSize {
		return fmt.Errorf("Read less than a page.")
	}
	return nil
}

func (dm *DiskManager) writePageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("Page id is negative.")
	}
	_, err := dm.fi.WriteAt(data[:pageSize], int64(pageId)*pageSize)
	return err
}

func (dm *DiskManager) writeHeaderPage() error {
	return dm.writePageData(common.PageId(0), dm.headerRawData)
}
