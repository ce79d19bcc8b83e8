package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Builder can build caches.
type Builder struct {
	cacheSize     uint64
	blockSize     uint64
	associativity string
	prefetchSize  int
	hooks         []hooking.Hook
}

// MakeBuilder creates a new builder with a 16KB direct-mapped cache with
// 64-byte blocks and no prefetching.
func MakeBuilder() Builder {
	return Builder{
		cacheSize:     16 * mem.KB,
		blockSize:     64,
		associativity: "direct",
	}
}

// WithCacheSize sets the total capacity of the cache in bytes.
func (b Builder) WithCacheSize(cacheSize uint64) Builder {
	b.cacheSize = cacheSize
	return b
}

// WithBlockSize sets the block size in bytes.
func (b Builder) WithBlockSize(blockSize uint64) Builder {
	b.blockSize = blockSize
	return b
}

// WithAssociativity sets the associativity descriptor, one of "direct",
// "full", "assoc", "set:N" and "assoc:N".
func (b Builder) WithAssociativity(associativity string) Builder {
	b.associativity = associativity
	return b
}

// WithPrefetchSize sets the number of blocks to prefetch after each miss.
func (b Builder) WithPrefetchSize(prefetchSize int) Builder {
	b.prefetchSize = prefetchSize
	return b
}

// WithHook registers a hook on the cache that is built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Geometry validates the configuration and returns the shape of the cache
// that Build would create.
func (b Builder) Geometry() (Geometry, error) {
	if b.prefetchSize < 0 {
		return Geometry{}, fmt.Errorf(
			"%w: prefetch size must not be negative, got %d",
			ErrInvalidConfig, b.prefetchSize)
	}

	assoc, err := ParseAssociativity(b.associativity)
	if err != nil {
		return Geometry{}, err
	}

	return ResolveGeometry(b.cacheSize, b.blockSize, assoc)
}

// Build validates the configuration and builds a cache. No cache is created
// if the configuration is invalid.
func (b Builder) Build() (*Cache, error) {
	geometry, err := b.Geometry()
	if err != nil {
		return nil, err
	}

	c := &Cache{
		geometry: geometry,
		tags: tagging.NewTagArray(
			int(geometry.NumSets),
			int(geometry.Ways),
			tagging.NewFIFOVictimFinder(),
		),
		prefetcher: nextLinePrefetcher{depth: uint64(b.prefetchSize)},
	}

	for _, hook := range b.hooks {
		c.AcceptHook(hook)
	}

	return c, nil
}
