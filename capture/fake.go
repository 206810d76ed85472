// File: capture/fake.go
// Author: momentics <momentics@gmail.com>
//
// FakeRing is a trivial in-memory stand-in for the real capture-card
// ring, used by tests and the bundled load generator. Grounded on the
// teacher's fake/ package convention of small stub types exposing just
// enough surface to satisfy the production interface.

package capture

import (
	"context"
	"sync"
	"time"
)

// FakeRing is a deterministic Ring backed by a plain byte slice the test
// feeds records into with Feed.
type FakeRing struct {
	mu       sync.Mutex
	data     []byte
	bottom   int
	closed   bool
	lossNext uint16
}

var _ Ring = (*FakeRing)(nil)

// NewFakeRing builds an empty fake ring.
func NewFakeRing() *FakeRing {
	return &FakeRing{}
}

// Feed appends bytes to the simulated ring as if the card had captured
// them.
func (f *FakeRing) Feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data, b...)
}

// Advance returns whatever is currently available; it never blocks the
// full maxWait because the fake has no real hardware to wait on.
func (f *FakeRing) Advance(ctx context.Context, minBytes int, maxWait time.Duration) (buf []byte, bottom, top int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, f.bottom, f.bottom, ErrClosed
	}
	return f.data, f.bottom, len(f.data), nil
}

// Release advances the consumed prefix.
func (f *FakeRing) Release(consumed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bottom += consumed
	return nil
}

// Close marks the ring closed; subsequent Advance calls fail.
func (f *FakeRing) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
