// File: encap/beacon.go
// Author: momentics <momentics@gmail.com>
//
// Beacon is the second publisher variant described in spec §4.4/§6: its
// own socket, its own sequence space, emitting an advertisement
// datagram every BeaconFreq listing the monitor id and the currently
// active (stream_index, export_port) pairs.

package encap

import (
	"sync"
	"sync/atomic"
	"time"
)

// BeaconFreq is DAG_MULTIPLEX_BEACON_FREQ.
const BeaconFreq = 1000 * time.Millisecond

// Beacon periodically advertises the publisher's active export ports.
type Beacon struct {
	monitorID uint16
	sock      Sender
	seq       atomic.Uint32

	mu      sync.Mutex
	entries []beaconEntry

	stop chan struct{}
}

// NewBeacon opens the beacon socket bound to group:port.
func NewBeacon(sink Sink) (*Beacon, error) {
	sock, err := newMulticastSocket(sink.GroupAddr, sink.SourceIP, sink.Port, 0)
	if err != nil {
		return nil, err
	}
	return NewBeaconWithSender(sink.MonitorID, sock), nil
}

// NewBeaconWithSender builds a beacon over a caller-supplied Sender --
// used by tests.
func NewBeaconWithSender(monitorID uint16, sock Sender) *Beacon {
	return &Beacon{monitorID: monitorID, sock: sock, stop: make(chan struct{})}
}

// Advertise registers (or re-registers) one active export port. Workers
// call this once at startup; the beacon never removes an entry since
// the stream count is fixed for the process lifetime (spec's
// no-dynamic-stream-count-change non-goal).
func (b *Beacon) Advertise(streamIndex, exportPort int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, beaconEntry{streamIndex: streamIndex, exportPort: exportPort})
}

// Run blocks, emitting one advertisement datagram every BeaconFreq,
// until Stop is called. Intended to run on its own goroutine.
func (b *Beacon) Run() {
	ticker := time.NewTicker(BeaconFreq)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.EmitOnce()
		}
	}
}

// Stop ends the beacon loop.
func (b *Beacon) Stop() {
	close(b.stop)
}

// EmitOnce sends a single advertisement datagram immediately, without
// waiting for the next tick. Exported so tests can exercise the payload
// deterministically.
func (b *Beacon) EmitOnce() {
	b.mu.Lock()
	entries := append([]beaconEntry(nil), b.entries...)
	b.mu.Unlock()

	hdr := make([]byte, CommonHeaderLen)
	commonHeader{magic: magic, version: 1, kind: typeBeacon, monitorID: b.monitorID}.encode(hdr)
	payload := encodeBeaconPayload(b.monitorID, uint32(BeaconFreq/time.Millisecond), entries)

	b.seq.Add(1)
	b.sock.SendBatch([][][]byte{{hdr, payload}})
}

// Close releases the beacon socket.
func (b *Beacon) Close() error {
	return b.sock.Close()
}
