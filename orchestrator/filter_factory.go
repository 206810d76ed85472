// File: orchestrator/filter_factory.go
// Author: momentics <momentics@gmail.com>
//
// StreamFilterFactory replaces the original's `void *extra` plus
// create/destroy function-pointer triple (spec §9's design note) with a
// small typed capability interface. The orchestrator calls Init once per
// worker at startup and Close once at worker exit.

package orchestrator

import "github.com/ndagtelescope/telescope/record"

// StreamFilterFactory builds and tears down the per-worker darknet
// filter. Implementations may return a nil Filter to disable filtering
// for that stream.
type StreamFilterFactory interface {
	Init(params StreamParams) (record.Filter, error)
	Close(filter record.Filter) error
}

// NoFilterFactory is the default capability when no exclusion file was
// configured: every worker runs unfiltered.
type NoFilterFactory struct{}

func (NoFilterFactory) Init(StreamParams) (record.Filter, error) { return nil, nil }
func (NoFilterFactory) Close(record.Filter) error                { return nil }
