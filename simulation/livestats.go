package simulation

import (
	"sync"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// liveStats collects statistics on the simulation goroutine and lets the
// monitor read them from its own goroutines.
type liveStats struct {
	lock      sync.Mutex
	collector *cache.StatsCollector
}

func newLiveStats() *liveStats {
	return &liveStats{
		collector: cache.NewStatsCollector(),
	}
}

func (l *liveStats) Func(ctx hooking.HookCtx) {
	l.lock.Lock()
	l.collector.Func(ctx)
	l.lock.Unlock()
}

func (l *liveStats) Stats() cache.Statistics {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.collector.Stats()
}

func (l *liveStats) Snapshot() any {
	stats := l.Stats()
	return &stats
}
