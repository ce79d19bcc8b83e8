package cache

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Statistics summarizes what happened in a cache.
type Statistics struct {
	Reads             uint64 `json:"reads"`
	Writes            uint64 `json:"writes"`
	Hits              uint64 `json:"hits"`
	Misses            uint64 `json:"misses"`
	Prefetches        uint64 `json:"prefetches"`
	Evictions         uint64 `json:"evictions"`
	PrefetchEvictions uint64 `json:"prefetch_evictions"`
}

// Accesses returns the number of accesses processed.
func (s Statistics) Accesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns hits over accesses, or 0 if there was no access.
func (s Statistics) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses())
}

// StatsCollector is a hook that accumulates Statistics.
type StatsCollector struct {
	stats Statistics
}

// NewStatsCollector creates a StatsCollector with all counters at zero.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// Func updates the counters.
func (s *StatsCollector) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosAccess:
		s.countAccess(ctx.Item.(AccessEvent))
	case HookPosEvict:
		s.stats.Evictions++
		if ctx.Item.(EvictEvent).ByPrefetch {
			s.stats.PrefetchEvictions++
		}
	case HookPosPrefetch:
		if ctx.Item.(PrefetchEvent).Inserted {
			s.stats.Prefetches++
		}
	}
}

func (s *StatsCollector) countAccess(e AccessEvent) {
	if e.Op == mem.Write {
		s.stats.Writes++
	} else {
		s.stats.Reads++
	}

	if e.Result == Hit {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
}

// Stats returns a copy of the current counters.
func (s *StatsCollector) Stats() Statistics {
	return s.stats
}
