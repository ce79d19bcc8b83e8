// Package simulation replays memory traces through a cache model.
package simulation

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
)

type statsHook interface {
	hooking.Hook
	Stats() cache.Statistics
}

// Result is the outcome of a replayed trace.
type Result struct {
	Hits   uint64
	Misses uint64
	Stats  cache.Statistics
}

// A Simulation owns a cache and feeds it traces. It is not safe for
// concurrent use.
type Simulation struct {
	id       string
	cache    *cache.Cache
	stats    statsHook
	recorder *dbRecorder
	monitor  *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Cache returns the simulated cache.
func (s *Simulation) Cache() *cache.Cache {
	return s.cache
}

// RunFile replays the trace stored at path.
func (s *Simulation) RunFile(path string) (Result, error) {
	f, err := trace.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return s.RunSeeker(path, f)
}

// RunSeeker replays a trace that has already been opened. With a monitor, the
// trace is read twice so that progress can be shown against the total.
func (s *Simulation) RunSeeker(source string, r io.ReadSeeker) (Result, error) {
	var total uint64
	if s.monitor != nil {
		start, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return Result{}, err
		}

		total, err = countAccesses(r)
		if err != nil {
			return Result{}, err
		}

		if _, err := r.Seek(start, io.SeekStart); err != nil {
			return Result{}, err
		}
	}

	return s.run(source, r, total)
}

// Run replays the trace read from r. source names the trace in records.
func (s *Simulation) Run(source string, r io.Reader) (Result, error) {
	return s.run(source, r, 0)
}

// run stops at the first malformed line. No result is returned in that case,
// even though the cache has processed the preceding accesses.
func (s *Simulation) run(
	source string,
	r io.Reader,
	total uint64,
) (Result, error) {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Trace "+source, total)
		defer s.monitor.CompleteProgressBar(bar)
	}

	reader := trace.NewReader(r)

	for {
		access, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Result{}, err
		}

		s.cache.Access(access.Op, access.Address)

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	result := s.Results()

	if s.recorder != nil {
		s.recorder.recordRun(source, s.cache, result.Stats)
		s.recorder.flush()
	}

	return result, nil
}

// Results returns the totals of everything replayed so far.
func (s *Simulation) Results() Result {
	hits, misses := s.cache.Results()

	return Result{
		Hits:   hits,
		Misses: misses,
		Stats:  s.stats.Stats(),
	}
}

// countAccesses counts the lines before the terminator.
func countAccesses(r io.Reader) (uint64, error) {
	scanner := bufio.NewScanner(r)

	var n uint64
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == trace.EOFMarker {
			break
		}

		n++
	}

	return n, scanner.Err()
}
