// File: capture/loadgen.go
// Author: momentics <momentics@gmail.com>
//
// Bundled load generator: since the real capture-card driver is an
// external collaborator (spec §1/§6) outside this module's scope, this
// feeds a FakeRing with synthetic framed records at a configured rate so
// the rest of the pipeline can be exercised end to end without
// hardware. Grounded on the teacher's fake/ package convention of small
// deterministic stand-ins.

package capture

import (
	"encoding/binary"
	"math/rand"
	"time"
)

const recordHeaderLen = 16 // mirrors record.HeaderLen; duplicated to avoid a capture->record dependency

// LoadGenerator feeds synthetic records into a FakeRing on a timer,
// simulating one card stream under load.
type LoadGenerator struct {
	ring      *FakeRing
	recordLen int
	interval  time.Duration
	stop      chan struct{}
}

// NewLoadGenerator builds a generator that appends one synthetic record
// of recordLen bytes (header included) to ring every interval.
func NewLoadGenerator(ring *FakeRing, recordLen int, interval time.Duration) *LoadGenerator {
	if recordLen < recordHeaderLen {
		recordLen = recordHeaderLen
	}
	return &LoadGenerator{ring: ring, recordLen: recordLen, interval: interval, stop: make(chan struct{})}
}

// Run blocks, feeding one record per tick, until Stop is called.
// Intended to run on its own goroutine.
func (g *LoadGenerator) Run() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.ring.Feed(syntheticRecord(g.recordLen))
		}
	}
}

// Stop ends the feed loop.
func (g *LoadGenerator) Stop() {
	close(g.stop)
}

func syntheticRecord(length int) []byte {
	buf := make([]byte, length)
	binary.BigEndian.PutUint64(buf[0:8], uint64(time.Now().UnixNano()))
	buf[8] = 0 // type
	buf[9] = 0 // flags
	binary.BigEndian.PutUint16(buf[10:12], uint16(length))
	binary.BigEndian.PutUint16(buf[12:14], 0) // loss counter
	binary.BigEndian.PutUint16(buf[14:16], uint16(length-recordHeaderLen))
	rand.Read(buf[recordHeaderLen:])
	return buf
}
