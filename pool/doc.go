// File: pool/doc.go
// Package pool
// Author: momentics <momentics@gmail.com>
//
// Zero-copy iovec pooling, byte-buffer pooling and generic object pooling
// for the telescope capture-to-multicast fan-out engine.
package pool
