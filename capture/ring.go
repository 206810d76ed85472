// File: capture/ring.go
// Author: momentics <momentics@gmail.com>
//
// The capture-ring adapter (spec §4.1): exposes one card stream as a
// byte window that grows over time. The real driver lives outside this
// module's scope (spec §1); Ring is the contract the core requires of
// it, and Fake (capture/fake.go) is a deterministic stand-in for tests
// and the bundled load generator.

package capture

import (
	"context"
	"time"
)

// Tunables from spec §4.1.
const (
	PollMinData = 8000            // DAG_POLL_MINDATA
	PollMaxWait = 100 * time.Millisecond // DAG_POLL_MAXWAIT, expressed in time.Duration (100000us)
	PollFreq    = 10 * time.Millisecond  // DAG_POLL_FREQ
)

// Ring presents one even-numbered card stream as a growing byte window.
type Ring interface {
	// Advance yields the current readable window (bottom, top) as a
	// byte-range view into buf. It blocks up to maxWait for at least
	// minBytes to become available, returning whatever is available
	// when maxWait elapses or ctx is done.
	Advance(ctx context.Context, minBytes int, maxWait time.Duration) (buf []byte, bottom, top int, err error)

	// Release returns a consumed prefix to the ring; the next Advance
	// begins at bottom+consumed.
	Release(consumed int) error

	// Close releases any pending window and closes the stream.
	Close() error
}

// Opener reserves a card stream for exclusive use. Only even stream
// indices are usable (spec §4.1: odd slots are inbound-only mirrors).
type Opener interface {
	Open(device string, streamIndex int) (Ring, error)
}
