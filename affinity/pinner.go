// File: affinity/pinner.go
// Author: momentics <momentics@gmail.com>
//
// Pinner adapts SetAffinity to the api.Affinity contract, giving callers
// a value they can pass around instead of a bare function, and a place
// to remember what they last pinned to.

package affinity

import "github.com/ndagtelescope/telescope/api"

// Pinner implements api.Affinity for one OS thread. Callers must call
// runtime.LockOSThread before Pin, same as a direct SetAffinity call.
type Pinner struct {
	desc api.AffinityDescriptor
}

var _ api.Affinity = (*Pinner)(nil)

// NewPinner builds an unpinned thread-scoped Pinner. NUMA-aware pinning
// is out of scope (spec's NUMA field is carried for future use but
// SetAffinity only pins a logical CPU), so numaID is recorded as-is in
// the descriptor without affecting the underlying syscall.
func NewPinner() *Pinner {
	return &Pinner{desc: api.AffinityDescriptor{CPUID: -1, NUMAID: -1, Scope: api.ScopeThread}}
}

// Pin binds the calling OS thread to cpuID.
func (p *Pinner) Pin(cpuID, numaID int) error {
	if err := SetAffinity(cpuID); err != nil {
		return err
	}
	p.desc = api.AffinityDescriptor{CPUID: cpuID, NUMAID: numaID, Scope: api.ScopeThread, Pinned: true}
	return nil
}

// Unpin clears the recorded binding. The underlying OS thread is not
// re-pinned elsewhere; callers that need to move off a CPU should pin
// somewhere else instead.
func (p *Pinner) Unpin() error {
	p.desc.Pinned = false
	return nil
}

// Get reports the last CPU/NUMA pair passed to Pin.
func (p *Pinner) Get() (cpuID, numaID int, err error) {
	return p.desc.CPUID, p.desc.NUMAID, nil
}

// Scope reports the binding scope -- always thread-level for Pinner.
func (p *Pinner) Scope() api.AffinityScope {
	return p.desc.Scope
}

// ImmutableDescriptor returns a snapshot of the current binding state.
func (p *Pinner) ImmutableDescriptor() api.AffinityDescriptor {
	return p.desc
}
