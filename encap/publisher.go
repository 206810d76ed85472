// File: encap/publisher.go
// Author: momentics <momentics@gmail.com>
//
// Publisher is C4: it owns one multicast socket per stream, assembles
// the outer framing header around walker output, and batches up to
// NDAG_BATCH_SIZE datagrams into one sendmsg syscall. Grounded on
// internal/transport/transport_linux.go's Send(buffers [][]byte) shape,
// generalised here to one buffer-set per datagram.

package encap

import (
	"sync"
	"sync/atomic"

	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/internal/concurrency"
	"github.com/ndagtelescope/telescope/pool"
)

// NDAGBatchSize caps how many datagrams one Flush call hands to the
// kernel in a single batch.
const NDAGBatchSize = 32

// Sender abstracts the batched-send half of a bound multicast socket so
// tests can substitute a fake without binding a real socket.
type Sender interface {
	SendBatch(datagrams [][][]byte) error
	Close() error
}

// Publisher is a per-stream encapsulation publisher (spec's EncapState).
type Publisher struct {
	sink        Sink
	streamIndex int
	globalStart uint64
	sock        Sender
	seq         atomic.Uint32
	stats       *control.StreamStats
	hdrPool     *pool.BytePool

	mu      sync.Mutex
	pending *concurrency.Queue[[][]byte]
	closed  bool
}

// NewPublisher opens and binds the socket for sink and prepares the
// outer framing template -- spec's init(sink, stream_index, global_start).
func NewPublisher(sink Sink, streamIndex int, globalStart uint64, ttl int, stats *control.StreamStats) (*Publisher, error) {
	sock, err := newMulticastSocket(sink.GroupAddr, sink.SourceIP, sink.Port, ttl)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithSender(sink, streamIndex, globalStart, sock, stats), nil
}

// NewPublisherWithSender builds a publisher over a caller-supplied
// Sender, bypassing real socket setup -- used by tests and by any
// alternate transport.
func NewPublisherWithSender(sink Sink, streamIndex int, globalStart uint64, sock Sender, stats *control.StreamStats) *Publisher {
	return &Publisher{
		sink:        sink,
		streamIndex: streamIndex,
		globalStart: globalStart,
		sock:        sock,
		stats:       stats,
		hdrPool:     pool.NewBytePool(Overhead),
		pending:     concurrency.NewQueue[[][]byte](NDAGBatchSize),
	}
}

// Push assembles one datagram from iovecs (spec's push(state, iovecs,
// iovec_count, record_count, batch_index)) and queues it for the next
// Flush. The truncation flag is set when the datagram carries exactly
// one record whose length alone exceeds the sink's budget.
func (p *Publisher) Push(iovecs []pool.Iovec, recordCount int) error {
	if len(iovecs) == 0 {
		return ErrNoIovecs
	}

	payloadLen := 0
	for _, iv := range iovecs {
		payloadLen += iv.Len
	}
	truncated := recordCount == 1 && payloadLen > p.sink.Budget()

	hdr := p.hdrPool.Acquire(Overhead)[:Overhead]
	commonHeader{magic: magic, version: 1, kind: typeData, monitorID: p.sink.MonitorID}.encode(hdr[:CommonHeaderLen])
	encapHeader{
		streamIndex: p.streamIndex,
		sequence:    p.seq.Add(1) - 1,
		recordCount: recordCount,
		truncated:   truncated,
		globalStart: p.globalStart,
	}.encode(hdr[CommonHeaderLen:])

	buffers := make([][]byte, 0, len(iovecs)+1)
	buffers = append(buffers, hdr)
	for _, iv := range iovecs {
		buffers = append(buffers, iv.Base[:iv.Len])
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if !p.pending.Enqueue(buffers) {
		if err := p.flushLocked(); err != nil {
			return err
		}
		p.pending.Enqueue(buffers)
	}

	p.stats.TxDatagrams.Add(1)
	p.stats.TxRecords.Add(uint64(recordCount))
	p.stats.TxBytes.Add(uint64(payloadLen))
	p.stats.TxWireBytes.Add(uint64(payloadLen + Overhead))
	if truncated {
		p.stats.TruncatedRecords.Add(1)
	}
	return nil
}

// Flush sends every queued datagram in one batched syscall.
func (p *Publisher) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked()
}

func (p *Publisher) flushLocked() error {
	var batch [][][]byte
	for {
		buffers, ok := p.pending.Dequeue()
		if !ok {
			break
		}
		batch = append(batch, buffers)
	}
	if len(batch) == 0 {
		return nil
	}
	err := p.sock.SendBatch(batch)
	for _, buffers := range batch {
		p.hdrPool.Release(buffers[0])
	}
	return err
}

// Close flushes any pending datagrams and releases the socket. Push
// returns ErrClosed for any call that arrives afterward.
func (p *Publisher) Close() error {
	flushErr := p.Flush()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if closeErr := p.sock.Close(); closeErr != nil {
		return closeErr
	}
	return flushErr
}
