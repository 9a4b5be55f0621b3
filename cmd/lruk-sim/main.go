// Command lruk-sim replays a workload of hot lookups polluted by one-off
// sequential scans through the buffer pool and reports the hit ratio of each
// replacement policy.
package main

import (
	"flag"
	"fmt"
	"os"

	arc "github.com/hashicorp/golang-lru/arc/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"lruk-buffer-golang/src/common"
	"lruk-buffer-golang/src/config"
	"lruk-buffer-golang/src/disk"
)

type access struct {
	pageId     common.PageId
	accessType common.AccessType
}

// buildTrace returns rounds of: every hot page read twice, then a scan over
// scan pages never touched before. Hot pages are 1..hot.
func buildTrace(hot, scan, rounds int) ([]access, int) {
	trace := make([]access, 0, rounds*(2*hot+scan))
	next := common.PageId(hot + 1)
	for r := 0; r < rounds; r++ {
		for pass := 0; pass < 2; pass++ {
			for i := 1; i <= hot; i++ {
				trace = append(trace, access{pageId: common.PageId(i), accessType: common.AccessLookup})
			}
		}
		for i := 0; i < scan; i++ {
			trace = append(trace, access{pageId: next, accessType: common.AccessScan})
			next++
		}
	}
	return trace, int(next) - 1
}

func runPolicy(cfg *config.Config, policy string, trace []access, numPages int) (disk.BufferPoolStats, error) {
	defer os.Remove(cfg.Pool.File)
	os.Remove(cfg.Pool.File)

	dm, err := disk.NewDiskManager(cfg.Pool.File)
	if err != nil {
		return disk.BufferPoolStats{}, err
	}
	defer dm.Close()
	for i := 0; i < numPages; i++ {
		if _, err := dm.AllocatePage(); err != nil {
			return disk.BufferPoolStats{}, err
		}
	}

	replacer, err := disk.NewReplacer(policy, cfg.Pool.Size, cfg.Pool.K)
	if err != nil {
		return disk.BufferPoolStats{}, err
	}
	bpm := disk.NewBufferPoolManager(cfg.Pool.Size, dm, replacer)
	for _, a := range trace {
		if _, err := bpm.FetchPageWithType(a.pageId, a.accessType); err != nil {
			return disk.BufferPoolStats{}, fmt.Errorf("fetch page %d: %w", a.pageId, err)
		}
		if err := bpm.UnpinPage(a.pageId, false); err != nil {
			return disk.BufferPoolStats{}, err
		}
	}
	return bpm.Stats(), nil
}

type pageCache interface {
	Get(key common.PageId) (struct{}, bool)
	Add(key common.PageId, value struct{}) bool
}

type arcCache struct {
	*arc.ARCCache[common.PageId, struct{}]
}

func (c arcCache) Add(key common.PageId, value struct{}) bool {
	c.ARCCache.Add(key, value)
	return false
}

func replayReference(cache pageCache, trace []access) (hits uint64) {
	for _, a := range trace {
		if _, ok := cache.Get(a.pageId); ok {
			hits++
			continue
		}
		cache.Add(a.pageId, struct{}{})
	}
	return hits
}

// policyOrder returns the configured policy followed by the other one it is
// compared against.
func policyOrder(configured string) []string {
	if configured == disk.PolicyLRU {
		return []string{disk.PolicyLRU, disk.PolicyLRUK}
	}
	return []string{disk.PolicyLRUK, disk.PolicyLRU}
}

func logResult(name string, hits uint64, total int) {
	log.WithFields(log.Fields{
		"policy":   name,
		"hits":     hits,
		"misses":   uint64(total) - hits,
		"hitRatio": fmt.Sprintf("%.3f", float64(hits)/float64(total)),
	}).Info("Replay finished.")
}

func run(configPath string, hot, scan, rounds int) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.LoadConfig(configPath)
	}
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	log.SetLevel(level)

	if hot >= cfg.Pool.Size {
		log.Warnf("Hot set of %d pages does not fit in %d frames.", hot, cfg.Pool.Size)
	}
	trace, numPages := buildTrace(hot, scan, rounds)
	log.WithFields(log.Fields{
		"frames":   cfg.Pool.Size,
		"k":        cfg.Pool.K,
		"policy":   cfg.Pool.Policy,
		"pages":    numPages,
		"accesses": len(trace),
	}).Info("Replaying trace.")

	for _, policy := range policyOrder(cfg.Pool.Policy) {
		stats, err := runPolicy(cfg, policy, trace, numPages)
		if err != nil {
			return fmt.Errorf("policy %s: %w", policy, err)
		}
		logResult(policy, stats.Hits, len(trace))
	}

	lruCache, err := lru.New[common.PageId, struct{}](cfg.Pool.Size)
	if err != nil {
		return err
	}
	logResult("golang-lru", replayReference(lruCache, trace), len(trace))

	arcRef, err := arc.NewARC[common.PageId, struct{}](cfg.Pool.Size)
	if err != nil {
		return err
	}
	logResult("golang-arc", replayReference(arcCache{arcRef}, trace), len(trace))
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	hot := flag.Int("hot", 8, "Number of frequently read pages")
	scan := flag.Int("scan", 64, "Number of pages read once by each scan")
	rounds := flag.Int("rounds", 4, "Number of hot-read/scan rounds")
	flag.Parse()

	if err := run(*configPath, *hot, *scan, *rounds); err != nil {
		log.WithError(err).Fatal("Simulation failed.")
	}
}
