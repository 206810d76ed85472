// File: encap/errors.go
// Author: momentics <momentics@gmail.com>

package encap

import "errors"

// ErrSendFailed wraps any error raised by the underlying socket send.
var ErrSendFailed = errors.New("encap: datagram send failed")

// ErrNoIovecs is returned by Push when called with an empty batch.
var ErrNoIovecs = errors.New("encap: push called with zero iovecs")

// ErrClosed is returned once the publisher socket has been closed.
var ErrClosed = errors.New("encap: publisher closed")
