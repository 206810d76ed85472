// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
//
// Reusable []byte scratch buffers for datagram assembly, built atop SyncPool.

package pool

import "github.com/ndagtelescope/telescope/api"

var _ api.BytePool = (*BytePool)(nil)

// BytePool hands out []byte buffers of at least the requested size and
// recycles them on Release, avoiding a per-datagram allocation on the
// publish hot path.
type BytePool struct {
	sp *SyncPool[[]byte]
}

// NewBytePool creates a pool whose buffers start at the given capacity.
func NewBytePool(initialCap int) *BytePool {
	return &BytePool{
		sp: NewSyncPool(func() []byte {
			return make([]byte, 0, initialCap)
		}),
	}
}

// Acquire returns a slice with capacity for at least n bytes.
func (b *BytePool) Acquire(n int) []byte {
	buf := b.sp.Get()
	if cap(buf) < n {
		buf = make([]byte, 0, n)
	}
	return buf[:0]
}

// Release returns buf to the pool for reuse.
func (b *BytePool) Release(buf []byte) {
	b.sp.Put(buf)
}
