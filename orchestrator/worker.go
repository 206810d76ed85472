// File: orchestrator/worker.go
// Author: momentics <momentics@gmail.com>
//
// worker runs the hot loop spec §2 describes: request a window from C1,
// hand it to C2 (gated by C3 via a StreamFilterFactory), push completed
// iovec bundles to every configured C4 publisher, release the consumed
// prefix. Pinned to a NUMA-local CPU with internal/affinity when
// params.NUMANode >= 0, grounded on the teacher's goroutine-per-concern
// style (examples/lowlevel/broadcast and echo main.go's reactor +
// accept-loop goroutines).

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/ndagtelescope/telescope/affinity"
	"github.com/ndagtelescope/telescope/capture"
	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/encap"
	"github.com/ndagtelescope/telescope/pool"
	"github.com/ndagtelescope/telescope/record"
)

// worker owns one even-numbered stream end to end.
type worker struct {
	params        StreamParams
	ring          capture.Ring
	publishers    []*encap.Publisher
	filter        record.Filter
	filterFactory StreamFilterFactory
	stats         *control.StreamStats
	flags         *control.Flags
	iovp          *pool.IovecPool
	budget        int
}

// newWorker assembles everything one stream needs: one publisher per
// sink, the configured darknet filter (if any), and a fresh iovec pool.
func newWorker(params StreamParams, ring capture.Ring, filterFactory StreamFilterFactory, flags *control.Flags, stats *control.StreamStats) (*worker, error) {
	filter, err := filterFactory.Init(params)
	if err != nil {
		return nil, fmt.Errorf("filter init for stream %d: %w", params.StreamIndex, err)
	}

	budget := 0
	var publishers []*encap.Publisher
	for _, sink := range params.Sinks {
		pub, err := encap.NewPublisher(sink, params.StreamIndex, params.GlobalStart, 0, stats)
		if err != nil {
			return nil, fmt.Errorf("publisher for stream %d sink port %d: %w", params.StreamIndex, sink.Port, err)
		}
		publishers = append(publishers, pub)
		if budget == 0 || sink.Budget() < budget {
			budget = sink.Budget()
		}
	}

	return &worker{
		params:        params,
		ring:          ring,
		publishers:    publishers,
		filter:        filter,
		filterFactory: filterFactory,
		stats:         stats,
		flags:         flags,
		iovp:          pool.NewIovecPool(record.ColorSlots),
		budget:        budget,
	}, nil
}

// run executes the hot loop until flags.Halted() or a fatal error is
// observed, pinning the OS thread to params.CPUID first when
// params.NUMANode >= 0.
func (w *worker) run(ctx context.Context) error {
	if w.params.NUMANode >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		pinner := affinity.NewPinner()
		if err := pinner.Pin(w.params.CPUID, w.params.NUMANode); err != nil {
			fmt.Fprintf(os.Stderr, "stream %d: affinity pin to cpu %d failed: %v\n", w.params.StreamIndex, w.params.CPUID, err)
		}
	}

	for !w.flags.Halted() {
		for w.flags.Paused() && !w.flags.Halted() {
			time.Sleep(10 * time.Millisecond)
		}
		if w.flags.Halted() {
			break
		}

		buf, bottom, top, err := w.ring.Advance(ctx, capture.PollMinData, capture.PollMaxWait)
		if err != nil {
			return fmt.Errorf("stream %d: advance: %w", w.params.StreamIndex, err)
		}
		if bottom == top {
			continue
		}
		w.stats.WalkedBuffers.Add(1)
		windowStart := bottom

		for bottom < top {
			res, err := record.Walk(bottom, top, buf, w.budget, w.iovp, w.filter, w.stats, w.params.StreamIndex)
			if err != nil {
				return err
			}
			if res.IovecCount > 0 {
				iovecs := w.iovp.Underlying()
				for _, pub := range w.publishers {
					if err := pub.Push(iovecs, res.RecordCount); err != nil {
						return fmt.Errorf("stream %d: publish: %w", w.params.StreamIndex, err)
					}
					if err := pub.Flush(); err != nil {
						return fmt.Errorf("stream %d: flush: %w", w.params.StreamIndex, err)
					}
				}
			}
			if res.Bottom == bottom {
				// No progress possible this pass (partial tail or
				// budget exhausted with nothing walked); wait for more
				// data before retrying.
				break
			}
			bottom = res.Bottom
		}

		if err := w.ring.Release(bottom - windowStart); err != nil {
			return fmt.Errorf("stream %d: release: %w", w.params.StreamIndex, err)
		}
	}
	return nil
}

func (w *worker) close() {
	for _, pub := range w.publishers {
		pub.Close()
	}
	if err := w.filterFactory.Close(w.filter); err != nil {
		fmt.Fprintf(os.Stderr, "stream %d: filter close: %v\n", w.params.StreamIndex, err)
	}
	_ = w.ring.Close()
}
