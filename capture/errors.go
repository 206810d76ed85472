// File: capture/errors.go
// Author: momentics <momentics@gmail.com>

package capture

import "errors"

// ErrClosed is returned by Advance after Close.
var ErrClosed = errors.New("capture: ring closed")

// ErrOddStream is returned by Open for odd stream indices -- spec §4.1
// reserves those as inbound-only mirrors.
var ErrOddStream = errors.New("capture: odd stream indices are inbound-only mirrors")
