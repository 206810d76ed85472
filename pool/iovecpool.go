// File: pool/iovecpool.go
// Author: momentics <momentics@gmail.com>
//
// Per-color iovec pool: an ordered sequence of (base, length) slices into
// the current capture window. Grown by amortised doubling at iovec-slot
// boundaries only -- never mid-datagram, since an already-recorded iovec
// base pointer must stay valid until publication completes.

package pool

import "github.com/ndagtelescope/telescope/api"

// Iovec references a contiguous slice of a capture window.
type Iovec struct {
	Base []byte
	Len  int
}

// Ensure IovecPool satisfies the generic Batch contract.
var _ api.Batch[Iovec] = (*IovecPool)(nil)

// IovecPool holds one color slot's worth of iovecs for the datagram
// currently being assembled. Not safe for concurrent mutation -- each
// worker owns its own pool (or one per color slot).
type IovecPool struct {
	slots []Iovec
	n     int
}

// NewIovecPool allocates a pool with room for `capacity` iovecs.
func NewIovecPool(capacity int) *IovecPool {
	if capacity < 1 {
		capacity = 1
	}
	return &IovecPool{slots: make([]Iovec, capacity), n: 1}
}

// Reset clears the pool for the next datagram batch; underlying storage
// is retained and reused. Per §4.2 the walker starts each pass with one
// open, empty iovec.
func (p *IovecPool) Reset() {
	p.n = 1
	p.slots[0] = Iovec{}
}

// Len returns the number of iovec slots in use.
func (p *IovecPool) Len() int {
	return p.n
}

// Get retrieves iovec i -- bounds-checked, never panics.
func (p *IovecPool) Get(i int) Iovec {
	if i < 0 || i >= p.n {
		return Iovec{}
	}
	return p.slots[i]
}

// OpenLen returns the length accumulated in the currently open iovec.
func (p *IovecPool) OpenLen() int {
	return p.slots[p.n-1].Len
}

// Append extends the currently open iovec by len bytes starting at base,
// recording base as the iovec's start if this is the first byte added.
func (p *IovecPool) Append(base []byte, length int) {
	cur := &p.slots[p.n-1]
	if cur.Len == 0 {
		cur.Base = base
	}
	cur.Len += length
}

// CloseAndAdvance closes the currently open iovec and opens the next one,
// growing the backing array by doubling when full. A no-op if the current
// iovec is still empty -- advancing an empty iovec would waste a slot.
func (p *IovecPool) CloseAndAdvance() {
	if p.slots[p.n-1].Len == 0 {
		return
	}
	if p.n == len(p.slots) {
		grown := make([]Iovec, len(p.slots)*2)
		copy(grown, p.slots)
		p.slots = grown
	}
	p.n++
	p.slots[p.n-1] = Iovec{}
}

// Underlying returns the in-use iovec slice.
func (p *IovecPool) Underlying() []Iovec {
	return p.slots[:p.n]
}

// Slice returns a zero-copy sub-batch [start:end).
func (p *IovecPool) Slice(start, end int) api.Batch[Iovec] {
	sub := &IovecPool{slots: p.slots[start:end]}
	sub.n = end - start
	return sub
}

// Split divides the pool at idx into two zero-copy sub-batches.
func (p *IovecPool) Split(idx int) (first, second api.Batch[Iovec]) {
	return p.Slice(0, idx), p.Slice(idx, p.n)
}
