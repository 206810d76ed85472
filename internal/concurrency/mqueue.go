// File: internal/concurrency/mqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded single-producer/single-consumer message queue with a pollable
// file descriptor, used by the bundled test client to move control
// messages (new group, restart, halt) out of its receiver goroutines.
// Re-architected per the original message_queue.c design note: a single
// atomic counter (via RingBuffer's head/tail) replaces the spin-lock, and
// a real os.Pipe supplies the wakeup fd for external select/poll use.

package concurrency

import "os"

// MessageQueue carries fixed-size messages between one producer and one
// consumer goroutine, signalling availability on a pipe so external
// event loops can poll it alongside other file descriptors.
type MessageQueue[T any] struct {
	ring      *RingBuffer[T]
	readPipe  *os.File
	writePipe *os.File
}

// NewMessageQueue builds a queue of the given power-of-two capacity.
func NewMessageQueue[T any](capacity uint64) (*MessageQueue[T], error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &MessageQueue[T]{
		ring:      NewRingBuffer[T](capacity),
		readPipe:  r,
		writePipe: w,
	}, nil
}

// Put posts a message; returns ErrQueueFull if the ring is at capacity.
func (q *MessageQueue[T]) Put(msg T) error {
	if !q.ring.Enqueue(msg) {
		return ErrQueueFull
	}
	// Wake any poller blocked on the read end; a single byte suffices.
	if _, err := q.writePipe.Write([]byte{0}); err != nil {
		return err
	}
	return nil
}

// Get blocks until a message is available and returns it.
func (q *MessageQueue[T]) Get() (T, error) {
	for {
		if msg, ok := q.ring.Dequeue(); ok {
			var buf [1]byte
			q.readPipe.Read(buf[:])
			return msg, nil
		}
	}
}

// TryGet returns immediately; ok is false if the queue is empty.
func (q *MessageQueue[T]) TryGet() (msg T, ok bool) {
	msg, ok = q.ring.Dequeue()
	if ok {
		var buf [1]byte
		q.readPipe.Read(buf[:])
	}
	return msg, ok
}

// Fd returns the pollable read-side file descriptor.
func (q *MessageQueue[T]) Fd() uintptr {
	return q.readPipe.Fd()
}

// Close releases the underlying pipe.
func (q *MessageQueue[T]) Close() error {
	werr := q.writePipe.Close()
	rerr := q.readPipe.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
