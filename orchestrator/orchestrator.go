// File: orchestrator/orchestrator.go
// Author: momentics <momentics@gmail.com>
//
// Orchestrator is C5: spawns one worker per even card stream plus one
// beacon worker, owns the process-wide control plane, and waits for
// every worker to exit -- spec §2's "C5 starts N workers" control flow
// and §4.5's run_dag_streams port-assignment sequence.

package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/ndagtelescope/telescope/capture"
	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/encap"
)

// firstPortMin and firstPortMax bound the random base export port
// chosen once at startup -- spec §4.5, step 2.
const (
	firstPortMin = 10000
	firstPortMax = 60000
)

// Orchestrator owns the control plane, the capture-card opener, the
// filter capability, and the worker/beacon lifecycle.
type Orchestrator struct {
	Flags         *control.Flags
	Opener        capture.Opener
	Device        string
	FilterFactory StreamFilterFactory
}

// New builds an orchestrator with a fresh control plane. filterFactory
// may be NoFilterFactory{} when no exclusion file was configured.
func New(opener capture.Opener, device string, filterFactory StreamFilterFactory) *Orchestrator {
	if filterFactory == nil {
		filterFactory = NoFilterFactory{}
	}
	return &Orchestrator{
		Flags:         control.NewFlags(),
		Opener:        opener,
		Device:        device,
		FilterFactory: filterFactory,
	}
}

// Run opens every stream named in params, starts one worker goroutine
// per stream plus one beacon goroutine, and blocks until every worker
// exits (on halt or a fatal error). Returns the first fatal error
// observed, if any.
func (o *Orchestrator) Run(ctx context.Context, params []StreamParams, beacon *encap.Beacon) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	go beacon.Run()
	defer beacon.Close()

	for _, p := range params {
		for _, sink := range p.Sinks {
			beacon.Advertise(p.StreamIndex, sink.Port)
		}

		ring, err := o.Opener.Open(o.Device, p.StreamIndex)
		if err != nil {
			o.Flags.Halt()
			return fmt.Errorf("open stream %d: %w", p.StreamIndex, err)
		}

		stats := &control.StreamStats{StreamIndex: p.StreamIndex}
		w, err := newWorker(p, ring, o.FilterFactory, o.Flags, stats)
		if err != nil {
			o.Flags.Halt()
			return fmt.Errorf("build worker for stream %d: %w", p.StreamIndex, err)
		}

		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			defer w.close()
			if err := w.run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "stream %d: %v\n", w.params.StreamIndex, err)
				o.Flags.Halt()
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(w)
	}

	wg.Wait()
	return firstErr
}

// AssignPorts computes the export_port for each even stream index
// 0, 2, 4, ... starting at a random firstPort in [firstPortMin,
// firstPortMax) -- spec §4.5/§6's port formula, export_port(i) =
// first_port + 2*i for the i-th used stream.
func AssignPorts(numStreams int) (firstPort int, ports []int) {
	firstPort = firstPortMin + rand.Intn(firstPortMax-firstPortMin)
	ports = make([]int, numStreams)
	for i := range ports {
		ports[i] = firstPort + 2*i
	}
	return firstPort, ports
}
