package disk

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"lruk-buffer-golang/src/common"
)

type accessRecord struct {
	frameId common.FrameId
	// Most recent k access timestamps, oldest first.
	history []uint64
	// Timestamp of the first access since the record was created. Kept apart
	// from history because history only retains the last k entries.
	firstSeen   uint64
	isEvictable bool
}

func (rec *accessRecord) push(timestamp uint64, k int) {
	if len(rec.history) < k {
		rec.history = append(rec.history, timestamp)
		return
	}
	copy(rec.history, rec.history[1:])
	rec.history[k-1] = timestamp
}

// kthRecent returns the k-th most recent access, or false when the record has
// fewer than k accesses and its backward k-distance is infinite.
func (rec *accessRecord) kthRecent(k int) (uint64, bool) {
	if len(rec.history) < k {
		return 0, false
	}
	return rec.history[len(rec.history)-k], true
}

type ReplacerStats struct {
	Accesses  [common.NumAccessTypes]uint64
	Evictions uint64
	Removals  uint64
}

// LRUKReplacer evicts the evictable frame whose backward k-distance is the
// largest. The backward k-distance of a frame is the difference between the
// current timestamp and the timestamp of its k-th most recent access.
//
// A frame with fewer than k recorded accesses has an infinite distance and is
// always preferred over frames with a finite one. Among several such frames
// the one first seen earliest is evicted.
//
// LRUKReplacer is not safe for concurrent use.
type LRUKReplacer struct {
	capacity       int
	k              int
	clock          uint64
	records        map[common.FrameId]*accessRecord
	evictableCount int
	stats          ReplacerStats
}

func NewLRUKReplacer(capacity int, k int) (*LRUKReplacer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive but %d was requested", ErrInvalidConfig, capacity)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >=1 but %d was requested", ErrInvalidConfig, k)
	}
	return &LRUKReplacer{
		capacity: capacity,
		k:        k,
		records:  make(map[common.FrameId]*accessRecord),
	}, nil
}

func (lrk *LRUKReplacer) checkFrameId(frameId common.FrameId) error {
	if frameId < 0 || int(frameId) >= lrk.capacity {
		return invalidFrameError(frameId, lrk.capacity)
	}
	return nil
}

// RecordAccess records that frameId was referenced at the current timestamp,
// creating a non-evictable record if the frame is not tracked yet.
func (lrk *LRUKReplacer) RecordAccess(frameId common.FrameId, accessType common.AccessType) error {
	if err := lrk.checkFrameId(frameId); err != nil {
		return err
	}
	rec, ok := lrk.records[frameId]
	if !ok {
		rec = &accessRecord{
			frameId:   frameId,
			history:   make([]uint64, 0, lrk.k),
			firstSeen: lrk.clock,
		}
		lrk.records[frameId] = rec
	}
	rec.push(lrk.clock, lrk.k)
	lrk.clock++

	if accessType < 0 || int(accessType) >= common.NumAccessTypes {
		accessType = common.AccessUnknown
	}
	lrk.stats.Accesses[accessType]++
	return nil
}

func (lrk *LRUKReplacer) SetEvictable(frameId common.FrameId, evictable bool) error {
	if err := lrk.checkFrameId(frameId); err != nil {
		return err
	}
	rec, ok := lrk.records[frameId]
	if !ok || rec.isEvictable == evictable {
		return nil
	}
	rec.isEvictable = evictable
	if evictable {
		lrk.evictableCount++
	} else {
		lrk.evictableCount--
	}
	return nil
}

// preferred reports whether a should be evicted before b.
func (lrk *LRUKReplacer) preferred(a, b *accessRecord) bool {
	aKth, aFinite := a.kthRecent(lrk.k)
	bKth, bFinite := b.kthRecent(lrk.k)
	if aFinite != bFinite {
		return !aFinite
	}
	// Distance is clock minus the k-th recent access, so the older access is farther.
	if aFinite && aKth != bKth {
		return aKth < bKth
	}
	if a.firstSeen != b.firstSeen {
		return a.firstSeen < b.firstSeen
	}
	return a.frameId < b.frameId
}

// Evict removes the evictable frame with the largest backward k-distance and
// returns its id. It returns false when no frame is evictable.
func (lrk *LRUKReplacer) Evict() (common.FrameId, bool) {
	if lrk.evictableCount == 0 {
		return 0, false
	}
	var victim *accessRecord
	for _, rec := range lrk.records {
		if !rec.isEvictable {
			continue
		}
		if victim == nil || lrk.preferred(rec, victim) {
			victim = rec
		}
	}
	if victim == nil {
		log.Errorf("Replacer reports %d evictable frames but none was found.", lrk.evictableCount)
		return 0, false
	}

	delete(lrk.records, victim.frameId)
	lrk.evictableCount--
	lrk.stats.Evictions++
	log.WithFields(log.Fields{
		"frame":     victim.frameId,
		"accesses":  len(victim.history),
		"firstSeen": victim.firstSeen,
		"clock":     lrk.clock,
	}).Debug("Evicted frame.")
	return victim.frameId, true
}

// Remove drops the access history of an evictable frame regardless of its
// backward k-distance. Removing an untracked frame does nothing.
func (lrk *LRUKReplacer) Remove(frameId common.FrameId) error {
	if err := lrk.checkFrameId(frameId); err != nil {
		return err
	}
	rec, ok := lrk.records[frameId]
	if !ok {
		return nil
	}
	if !rec.isEvictable {
		return fmt.Errorf("%w: frame %d", ErrRemovePinnedFrame, frameId)
	}
	delete(lrk.records, frameId)
	lrk.evictableCount--
	lrk.stats.Removals++
	return nil
}

func (lrk *LRUKReplacer) Size() int {
	return lrk.evictableCount
}

func (lrk *LRUKReplacer) Stats() ReplacerStats {
	return lrk.stats
}
