package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Builder can be used to build a simulation.
type Builder struct {
	cacheBuilder cache.Builder
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// MakeBuilder creates a new builder. Without further configuration the
// simulation uses the default cache of cache.MakeBuilder and records nothing.
func MakeBuilder() Builder {
	return Builder{
		cacheBuilder: cache.MakeBuilder(),
	}
}

// WithCacheBuilder sets how the simulated cache is built.
func (b Builder) WithCacheBuilder(cacheBuilder cache.Builder) Builder {
	b.cacheBuilder = cacheBuilder
	return b
}

// WithDataRecorder records every access and the run summary.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

// WithMonitor publishes progress and statistics to a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// Build builds the simulation. It fails without side effects if the cache
// configuration is invalid.
func (b Builder) Build() (*Simulation, error) {
	s := &Simulation{
		id:      xid.New().String(),
		monitor: b.monitor,
	}

	cacheBuilder := b.cacheBuilder

	if b.monitor != nil {
		live := newLiveStats()
		s.stats = live
		b.monitor.RegisterStats("cache", live)
	} else {
		s.stats = cache.NewStatsCollector()
	}

	cacheBuilder = cacheBuilder.WithHook(s.stats)

	var recorder *dbRecorder
	if b.dataRecorder != nil {
		recorder = newDBRecorder(s.id, b.dataRecorder)
		cacheBuilder = cacheBuilder.WithHook(hooking.OnlyAt(recorder,
			cache.HookPosAccess, cache.HookPosEvict))
	}

	c, err := cacheBuilder.Build()
	if err != nil {
		return nil, err
	}

	if recorder != nil {
		recorder.createTables()
	}

	s.cache = c
	s.recorder = recorder

	return s, nil
}
