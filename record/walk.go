// File: record/walk.go
// Author: momentics <momentics@gmail.com>
//
// The record walker (spec §4.2): parses framing headers, enforces the
// per-datagram size budget, and decides datagram/iovec boundaries. Pure
// over its arguments -- no I/O, no blocking, so it is trivially unit
// tested against spec §8's scenarios.

package record

import (
	"github.com/ndagtelescope/telescope/api"
	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/pool"
)

// Result carries the outcome of one Walk call.
type Result struct {
	Bottom      int // unconsumed suffix start
	IovecCount  int // completed iovec slots ready for publication
	RecordCount int // kept records added to those iovecs
}

// Walk walks buf[bottom:top], filling iovp with (base, len) slices of
// kept records and stopping before the budget would be exceeded, before
// a partial record at the tail, or on a non-zero loss counter.
//
// A non-zero loss counter is fatal: Walk returns immediately with the
// unchanged bottom and an *api.Error of kind ErrKindHardwareLoss; the
// caller is expected to set the process halted flag.
func Walk(bottom, top int, buf []byte, budget int, iovp *pool.IovecPool,
	filter Filter, stats *control.StreamStats, streamIndex int) (Result, error) {

	walked := 0
	recCount := 0
	iovp.Reset()

	for bottom < top && walked < budget {
		if top-bottom < HeaderLen {
			// Partial tail: not even a full header available.
			break
		}
		hdr := ParseHeader(buf[bottom:])
		length := int(hdr.RecordLen)

		if hdr.LossCtr != 0 {
			stats.DroppedRecords.Add(uint64(hdr.LossCtr))
			return Result{Bottom: bottom}, api.NewError(api.ErrKindHardwareLoss, streamIndex,
				"non-zero hardware loss counter observed", nil)
		}

		if top-bottom < length {
			// Partial record in the buffer; stop, leave it for next call.
			break
		}

		if filter != nil {
			keep, err := filter.Apply(buf[bottom : bottom+length])
			if err != nil {
				return Result{Bottom: bottom}, api.NewError(api.ErrKindFilterError, streamIndex,
					"darknet filter failed", err)
			}
			// Filtered path increments walked_records on both keep and
			// drop, per the original (possibly buggy) behavior spec §9
			// directs us to preserve.
			stats.WalkedRecords.Add(1)
			if !keep {
				if iovp.OpenLen() > 0 {
					iovp.CloseAndAdvance()
				}
				bottom += length
				continue
			}
		}

		if walked > 0 && walked+length > budget {
			// Next record would push us over the datagram budget.
			break
		}

		iovp.Append(buf[bottom:bottom+length], length)
		walked += length
		bottom += length
		recCount++
		if filter == nil {
			stats.WalkedRecords.Add(1)
		}
		stats.WalkedBytes.Add(uint64(length))
		stats.WalkedWireBytes.Add(uint64(hdr.WireLen))
	}

	return Result{Bottom: bottom, IovecCount: iovp.Len(), RecordCount: recCount}, nil
}
