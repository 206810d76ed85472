// Package control
// Author: momentics <momentics@gmail.com>
//
// Process-wide control plane (halted/paused), per-stream statistics, and
// runtime metrics/debug introspection for the telescope multiplexer.
//
// Provides concurrent-safe state handling primitives including:
//   - The halted/paused control plane shared by every worker
//   - Per-stream counters and periodic stats-file dumping
//   - Metrics telemetry and debug probe registration
package control
