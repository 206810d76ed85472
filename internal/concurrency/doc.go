// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free ring buffers, a bounded SPSC message queue, and a small task
// executor used by the stats dumper and the bundled test client.
package concurrency
