package simulation

import (
	"fmt"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

const (
	accessTableName = "cache_accesses"
	evictTableName  = "cache_evictions"
	runTableName    = "cache_runs"
)

// Addresses and tags are stored as hex strings because SQLite integers are
// signed. Set IDs are below the number of sets, which is at most 2^63.
type accessEntry struct {
	RunID        string
	Seq          uint64
	Op           string
	Address      string
	BlockAddress string
	SetID        uint64
	Tag          string
	Hit          bool
}

type evictEntry struct {
	RunID        string
	AccessIndex  uint64
	BlockAddress string
	SetID        uint64
	ByPrefetch   bool
}

type runEntry struct {
	RunID         string
	Source        string
	CacheSize     uint64
	BlockSize     uint64
	Associativity string
	NumSets       uint64
	Ways          uint64
	PrefetchSize  uint64
	Hits          uint64
	Misses        uint64
	Reads         uint64
	Writes        uint64
	Prefetches    uint64
	Evictions     uint64
	HitRate       float64
}

// dbRecorder is a hook that writes accesses and evictions into a database.
type dbRecorder struct {
	runID       string
	recorder    datarecording.DataRecorder
	accessIndex uint64
}

func newDBRecorder(
	runID string,
	recorder datarecording.DataRecorder,
) *dbRecorder {
	return &dbRecorder{
		runID:    runID,
		recorder: recorder,
	}
}

func (r *dbRecorder) createTables() {
	r.recorder.CreateTable(accessTableName, accessEntry{})
	r.recorder.CreateTable(evictTableName, evictEntry{})
	r.recorder.CreateTable(runTableName, runEntry{})
}

func (r *dbRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		e := ctx.Item.(cache.AccessEvent)
		r.accessIndex++
		r.recorder.InsertData(accessTableName, accessEntry{
			RunID:        r.runID,
			Seq:          r.accessIndex,
			Op:           e.Op.String(),
			Address:      hex(e.Address),
			BlockAddress: hex(e.BlockAddress),
			SetID:        e.SetID,
			Tag:          hex(e.Tag),
			Hit:          e.Result == cache.Hit,
		})
	case cache.HookPosEvict:
		e := ctx.Item.(cache.EvictEvent)
		r.recorder.InsertData(evictTableName, evictEntry{
			RunID:        r.runID,
			AccessIndex:  r.accessIndex,
			BlockAddress: hex(e.BlockAddress),
			SetID:        e.SetID,
			ByPrefetch:   e.ByPrefetch,
		})
	}
}

func (r *dbRecorder) recordRun(
	source string,
	c *cache.Cache,
	stats cache.Statistics,
) {
	g := c.Geometry()
	hits, misses := c.Results()

	r.recorder.InsertData(runTableName, runEntry{
		RunID:         r.runID,
		Source:        source,
		CacheSize:     g.CacheSize,
		BlockSize:     g.BlockSize,
		Associativity: g.Associativity.String(),
		NumSets:       g.NumSets,
		Ways:          g.Ways,
		PrefetchSize:  c.PrefetchSize(),
		Hits:          hits,
		Misses:        misses,
		Reads:         stats.Reads,
		Writes:        stats.Writes,
		Prefetches:    stats.Prefetches,
		Evictions:     stats.Evictions,
		HitRate:       stats.HitRate(),
	})
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

func (r *dbRecorder) flush() {
	r.recorder.Flush()
}
