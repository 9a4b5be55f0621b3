package common

import "fmt"

type PageId int32

const InvalidPageId = PageId(-1)

// FrameId indexes a slot of the buffer pool, in [0, pool size).
type FrameId int

// AccessType classifies why a frame was referenced. Replacers may record it
// but the LRU-K ranking does not depend on it.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex

	numAccessTypes
)

func (at AccessType) String() string {
	switch at {
	case AccessUnknown:
		return "unknown"
	case AccessLookup:
		return "lookup"
	case AccessScan:
		return "scan"
	case AccessIndex:
		return "index"
	}
	return fmt.Sprintf("AccessType(%d)", int(at))
}

// NumAccessTypes is the number of defined access types.
const NumAccessTypes = int(numAccessTypes)
