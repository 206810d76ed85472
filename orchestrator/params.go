// File: orchestrator/params.go
// Author: momentics <momentics@gmail.com>
//
// StreamParams is spec §3's immutable per-worker configuration: built
// once by the orchestrator and borrowed read-only by every worker.

package orchestrator

import (
	"time"

	"github.com/ndagtelescope/telescope/encap"
)

// globalStartEpoch is the fixed reference instant spec §9 directs us to
// subtract before computing the millisecond-resolution global-start
// timestamp baked into every outer framing header.
const globalStartEpoch = 1509494400 // 2017-11-01T00:00:00Z

// StreamParams is immutable configuration shared read-only by every
// worker once built.
type StreamParams struct {
	Device       string
	StreamIndex  int // even only; odd slots are inbound-only mirrors
	Compression  bool
	GlobalStart  uint64 // milliseconds since globalStartEpoch, big-endian on the wire
	StatInterval time.Duration
	StatDir      string
	Sinks        []encap.Sink
	NUMANode     int // -1 disables affinity pinning
	CPUID        int // logical CPU this worker pins to when NUMANode >= 0
}

// ComputeGlobalStart derives the §9 global-start timestamp from now,
// preserving millisecond resolution and dropping the original's
// floating-point microsecond remainder entirely (per the resolved open
// question).
func ComputeGlobalStart(now time.Time) uint64 {
	return uint64((now.Unix() - globalStartEpoch) * 1000)
}
