// control/flags.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide control plane: a small immutable handle shared by every
// worker, carrying the halted/paused pair the original design exposed as
// bare globals. No locks, no subscription -- halted is write-once,
// paused toggles, both read every hot-loop iteration.

package control

import "sync/atomic"

// Flags is the process-wide control plane. Construct one with NewFlags
// and share the pointer with every worker and the signal handler.
type Flags struct {
	halted atomic.Bool
	paused atomic.Bool
}

// NewFlags builds a fresh, unhalted, unpaused control plane.
func NewFlags() *Flags {
	return &Flags{}
}

// Halt sets the halted flag. Monotonic: once set, stays set.
func (f *Flags) Halt() {
	f.halted.Store(true)
}

// Halted reports whether the process has been told to stop.
func (f *Flags) Halted() bool {
	return f.halted.Load()
}

// TogglePause flips the paused flag.
func (f *Flags) TogglePause() {
	for {
		old := f.paused.Load()
		if f.paused.CompareAndSwap(old, !old) {
			return
		}
	}
}

// Paused reports whether workers should idle.
func (f *Flags) Paused() bool {
	return f.paused.Load()
}
