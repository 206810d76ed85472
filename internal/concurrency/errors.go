// File: internal/concurrency/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "errors"

// ErrExecutorClosed is returned by Submit after Close.
var ErrExecutorClosed = errors.New("concurrency: executor closed")

// ErrQueueFull is returned by a bounded queue's non-blocking Put.
var ErrQueueFull = errors.New("concurrency: queue full")
