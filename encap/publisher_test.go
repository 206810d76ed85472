package encap_test

import (
	"net"
	"sync"
	"testing"

	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/encap"
	"github.com/ndagtelescope/telescope/pool"
)

// recordingSender is a Sender fake that captures every batch handed to
// it, instead of touching a real socket.
type recordingSender struct {
	mu      sync.Mutex
	batches [][][][]byte
	closed  bool
}

// SendBatch deep-copies every buffer before recording it: Publisher
// recycles header buffers through a pool immediately after a
// successful send (mirroring a real socket, which has already handed
// the bytes to the kernel by the time SendmsgBuffers returns), so a
// fake that only kept slice references could see later pushes
// overwrite earlier ones.
func (s *recordingSender) SendBatch(datagrams [][][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][][]byte, len(datagrams))
	for i, buffers := range datagrams {
		cp := make([][]byte, len(buffers))
		for j, b := range buffers {
			cp[j] = append([]byte(nil), b...)
		}
		copied[i] = cp
	}
	s.batches = append(s.batches, copied)
	return nil
}

func (s *recordingSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSender) datagrams() [][][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [][][]byte
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func testSink(mtu int) encap.Sink {
	return encap.Sink{
		Color:     1,
		MonitorID: 1,
		Port:      9000,
		GroupAddr: net.ParseIP("225.0.0.225"),
		SourceIP:  net.IPv4zero,
		MTU:       mtu,
	}
}

func iovecOf(payload []byte) pool.Iovec {
	return pool.Iovec{Base: payload, Len: len(payload)}
}

// TestPublisher_DatagramSizeBound exercises invariant 1: every emitted
// datagram's payload fits MTU-overhead, unless it is a single record
// datagram marked truncated.
func TestPublisher_DatagramSizeBound(t *testing.T) {
	sink := testSink(1400)
	sender := &recordingSender{}
	stats := &control.StreamStats{StreamIndex: 0}
	pub := encap.NewPublisherWithSender(sink, 0, 0, sender, stats)

	payload := make([]byte, 1300)
	if err := pub.Push([]pool.Iovec{iovecOf(payload)}, 10); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := pub.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	datagrams := sender.datagrams()
	if len(datagrams) != 1 {
		t.Fatalf("want 1 datagram, got %d", len(datagrams))
	}
	total := 0
	for _, b := range datagrams[0] {
		total += len(b)
	}
	if total > sink.MTU {
		t.Fatalf("datagram %d exceeds MTU %d", total, sink.MTU)
	}
	hdr := encap.DecodeHeader(datagrams[0][0])
	if hdr.Truncated {
		t.Fatalf("well-formed datagram should not be marked truncated")
	}
	if hdr.RecordCount != 10 {
		t.Fatalf("want record_count=10, got %d", hdr.RecordCount)
	}
}

// TestPublisher_OversizedSingleRecordTruncated exercises the truncation
// rule: a lone record larger than the budget is emitted anyway, marked
// truncated.
func TestPublisher_OversizedSingleRecordTruncated(t *testing.T) {
	sink := testSink(1400)
	sender := &recordingSender{}
	stats := &control.StreamStats{StreamIndex: 0}
	pub := encap.NewPublisherWithSender(sink, 0, 0, sender, stats)

	payload := make([]byte, 2000)
	if err := pub.Push([]pool.Iovec{iovecOf(payload)}, 1); err != nil {
		t.Fatalf("push: %v", err)
	}
	pub.Flush()

	datagrams := sender.datagrams()
	hdr := encap.DecodeHeader(datagrams[0][0])
	if !hdr.Truncated {
		t.Fatalf("want truncated=true for oversized lone record")
	}
	if stats.TruncatedRecords.Load() != 1 {
		t.Fatalf("want truncated_records=1, got %d", stats.TruncatedRecords.Load())
	}
}

// TestPublisher_SequenceMonotonic exercises invariant 3: per-stream
// sequence numbers strictly increase across pushes.
func TestPublisher_SequenceMonotonic(t *testing.T) {
	sink := testSink(1400)
	sender := &recordingSender{}
	stats := &control.StreamStats{StreamIndex: 0}
	pub := encap.NewPublisherWithSender(sink, 3, 0, sender, stats)

	for i := 0; i < 5; i++ {
		payload := make([]byte, 64)
		if err := pub.Push([]pool.Iovec{iovecOf(payload)}, 1); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	pub.Flush()

	datagrams := sender.datagrams()
	if len(datagrams) != 5 {
		t.Fatalf("want 5 datagrams, got %d", len(datagrams))
	}
	var last uint32
	for i, dg := range datagrams {
		hdr := encap.DecodeHeader(dg[0])
		if hdr.StreamIndex != 3 {
			t.Fatalf("datagram %d: want stream index 3, got %d", i, hdr.StreamIndex)
		}
		if i > 0 && hdr.Sequence <= last {
			t.Fatalf("datagram %d: sequence %d did not increase past %d", i, hdr.Sequence, last)
		}
		last = hdr.Sequence
	}
}

// TestPublisher_BatchFlushOnOverflow exercises that more than
// NDAGBatchSize pushes without an explicit Flush still reach the sender
// (the pending queue flushes itself once full, rather than dropping).
func TestPublisher_BatchFlushOnOverflow(t *testing.T) {
	sink := testSink(1400)
	sender := &recordingSender{}
	stats := &control.StreamStats{StreamIndex: 0}
	pub := encap.NewPublisherWithSender(sink, 0, 0, sender, stats)

	const n = encap.NDAGBatchSize + 5
	for i := 0; i < n; i++ {
		payload := make([]byte, 32)
		if err := pub.Push([]pool.Iovec{iovecOf(payload)}, 1); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	pub.Flush()

	if len(sender.datagrams()) != n {
		t.Fatalf("want %d datagrams delivered, got %d", n, len(sender.datagrams()))
	}
}

// TestPublisher_PushAfterCloseFails ensures a publisher rejects further
// work once closed instead of silently queuing onto a dead socket.
func TestPublisher_PushAfterCloseFails(t *testing.T) {
	sink := testSink(1400)
	sender := &recordingSender{}
	stats := &control.StreamStats{StreamIndex: 0}
	pub := encap.NewPublisherWithSender(sink, 0, 0, sender, stats)

	if err := pub.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}
	if !sender.closed {
		t.Fatalf("want underlying sender closed")
	}

	payload := make([]byte, 64)
	if err := pub.Push([]pool.Iovec{iovecOf(payload)}, 1); err != encap.ErrClosed {
		t.Fatalf("want ErrClosed after Close, got %v", err)
	}
}

// TestBeacon_PortFormula exercises invariant 7's advertised entries
// matching the configured export_port formula: first_port + 2*i for
// the i-th used (even) stream index.
func TestBeacon_PortFormula(t *testing.T) {
	sender := &recordingSender{}
	beacon := encap.NewBeaconWithSender(1, sender)

	firstPort := 20000
	for i := 0; i < 4; i++ {
		beacon.Advertise(2*i, firstPort+2*i)
	}
	beacon.EmitOnce()

	datagrams := sender.datagrams()
	if len(datagrams) != 1 {
		t.Fatalf("want 1 beacon datagram, got %d", len(datagrams))
	}
	hdr := encap.DecodeHeader(datagrams[0][0])
	if !hdr.Beacon {
		t.Fatalf("want beacon type bit set")
	}
	if hdr.MonitorID != 1 {
		t.Fatalf("want monitor id 1, got %d", hdr.MonitorID)
	}
	beacon.Close()
}
