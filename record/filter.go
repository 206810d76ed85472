// File: record/filter.go
// Author: momentics <momentics@gmail.com>
//
// Filter is the contract the darknet module (§4.3) plugs into the
// walker. Defined here, not in the darknet package, so record stays the
// dependency root and darknet can depend on it without a cycle.

package record

// Filter decides whether one walked record should be kept or dropped.
// Errors are fatal to the worker per spec §4.3/§7.
type Filter interface {
	Apply(raw []byte) (keep bool, err error)
}

// ColorSlots is the maximum number of simultaneous destination color
// pools a worker maintains (spec §3, DAG_COLOR_SLOTS). No bit in a
// Color means "drop".
const ColorSlots = 8

// Color is an 8-bit bit-field tagging an output iovec bundle with up to
// ColorSlots simultaneous destination classes.
type Color uint8
