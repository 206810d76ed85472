// control/stats.go
// Author: momentics <momentics@gmail.com>
//
// Per-worker stream statistics and the periodic stats-dump collaborator
// described in spec §3 (StreamStats) and §6 (persistent state).

package control

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ndagtelescope/telescope/internal/concurrency"
)

// StreamStats holds the counters spec §3 assigns to one worker. All
// fields are accessed with the sync/atomic package so the walker and
// the publisher can update them from their respective goroutines without
// a mutex on the hot path.
type StreamStats struct {
	StreamIndex int

	WalkedBuffers   atomic.Uint64
	WalkedRecords   atomic.Uint64
	WalkedBytes     atomic.Uint64
	WalkedWireBytes atomic.Uint64

	TxDatagrams atomic.Uint64
	TxRecords   atomic.Uint64
	TxBytes     atomic.Uint64
	TxWireBytes atomic.Uint64

	DroppedRecords   atomic.Uint64
	TruncatedRecords atomic.Uint64
}

// Snapshot returns a point-in-time copy of every counter, suitable for
// handing to a StatsDumper or a debug probe.
func (s *StreamStats) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"walked_buffers":    s.WalkedBuffers.Load(),
		"walked_records":    s.WalkedRecords.Load(),
		"walked_bytes":      s.WalkedBytes.Load(),
		"walked_wire_bytes": s.WalkedWireBytes.Load(),
		"tx_datagrams":      s.TxDatagrams.Load(),
		"tx_records":        s.TxRecords.Load(),
		"tx_bytes":          s.TxBytes.Load(),
		"tx_wire_bytes":     s.TxWireBytes.Load(),
		"dropped_records":   s.DroppedRecords.Load(),
		"truncated_records": s.TruncatedRecords.Load(),
	}
}

// StatsDumper periodically writes one line per counter, per stream, to a
// file under statdir -- spec §6's "persistent state" collaborator. The
// actual file writes run on a one-worker concurrency.Executor so a slow
// disk never stalls the ticker goroutine, which otherwise free-runs
// independent of every capture worker's hot loop.
type StatsDumper struct {
	dir      string
	interval time.Duration
	streams  []*StreamStats
	stop     chan struct{}
	exec     *concurrency.Executor
}

// NewStatsDumper builds a dumper for the given streams. interval <= 0
// disables dumping entirely, matching statinterval=0 in spec §6.
func NewStatsDumper(dir string, interval time.Duration, streams []*StreamStats) *StatsDumper {
	return &StatsDumper{
		dir:      dir,
		interval: interval,
		streams:  streams,
		stop:     make(chan struct{}),
		exec:     concurrency.NewExecutor(1),
	}
}

// Run blocks, dumping on every tick, until Stop is called. Intended to
// run on its own goroutine.
func (d *StatsDumper) Run() {
	if d.interval <= 0 || d.dir == "" {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C:
			if err := d.exec.Submit(func() { d.dumpOnce(now) }); err != nil {
				fmt.Fprintf(os.Stderr, "stats: submit dump task: %v\n", err)
			}
		}
	}
}

// Stop ends the dump loop and the backing executor.
func (d *StatsDumper) Stop() {
	close(d.stop)
	d.exec.Close()
}

func (d *StatsDumper) dumpOnce(now time.Time) {
	for _, s := range d.streams {
		path := filepath.Join(d.dir, fmt.Sprintf("stream-%d.stats", s.StreamIndex))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stats: failed to open %s: %v\n", path, err)
			continue
		}
		snap := s.Snapshot()
		for _, key := range statKeyOrder {
			fmt.Fprintf(f, "%s %s %d\n", now.Format(time.RFC3339), key, snap[key])
		}
		f.Close()
	}
}

var statKeyOrder = []string{
	"walked_buffers", "walked_records", "walked_bytes", "walked_wire_bytes",
	"tx_datagrams", "tx_records", "tx_bytes", "tx_wire_bytes",
	"dropped_records", "truncated_records",
}
