// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Small task executor backed by eapache/queue, used to dispatch stats-file
// writes off a worker's hot path.

package concurrency

import (
	"time"

	"github.com/eapache/queue"
)

// TaskFunc is a unit of deferred work.
type TaskFunc func()

// Executor runs submitted tasks on a fixed pool of goroutines, FIFO.
type Executor struct {
	queue   *queue.Queue
	workers []worker
	stop    chan struct{}
}

// NumWorkers reports the configured worker count.
func (e *Executor) NumWorkers() int {
	return len(e.workers)
}

type worker struct {
	exec *Executor
	stop chan struct{}
}

// NewExecutor starts numWorkers goroutines draining a shared task queue.
func NewExecutor(numWorkers int) *Executor {
	e := &Executor{
		queue: queue.New(),
		stop:  make(chan struct{}),
	}
	for i := 0; i < numWorkers; i++ {
		w := worker{exec: e, stop: make(chan struct{})}
		go w.run()
		e.workers = append(e.workers, w)
	}
	return e
}

// Submit enqueues task for execution; returns ErrExecutorClosed after Close.
func (e *Executor) Submit(task TaskFunc) error {
	select {
	case <-e.stop:
		return ErrExecutorClosed
	default:
		e.queue.Add(task)
		return nil
	}
}

// Close stops accepting new tasks; queued tasks still in flight may finish.
func (e *Executor) Close() {
	close(e.stop)
}

func (w *worker) run() {
	for {
		select {
		case <-w.stop:
			return
		default:
			if w.exec.queue.Length() == 0 {
				time.Sleep(time.Millisecond)
				continue
			}
			item := w.exec.queue.Remove()
			if task, ok := item.(TaskFunc); ok {
				task()
			}
		}
	}
}
