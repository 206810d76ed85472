// File: darknet/filter.go
// Author: momentics <momentics@gmail.com>
//
// The darknet filter (spec §4.3): keeps records whose IPv4 destination
// falls inside an advertised-but-unused prefix, optionally constrained
// to a configured first octet and an exclusion list of known-live /24s.
// Implements record.Filter.

package darknet

import (
	"encoding/binary"

	"github.com/ndagtelescope/telescope/record"
)

const (
	ethHeaderLen  = 14
	ipv4HeaderLen = 20
	ethertypeIPv4 = 0x0800
)

// Predicate is a configured darknet filter.
type Predicate struct {
	firstOctet int // -1 means unrestricted
	excl       *ExclusionSet
}

var _ record.Filter = (*Predicate)(nil)

// New builds a darknet predicate. firstOctet of -1 disables the
// first-octet constraint; excl may be nil if no exclusion file was
// configured.
func New(firstOctet int, excl *ExclusionSet) *Predicate {
	return &Predicate{firstOctet: firstOctet, excl: excl}
}

// Apply classifies one raw record (framing header + Ethernet frame).
// A record that cannot be classified as IPv4 is treated as drop, per
// spec §4.3.
func (p *Predicate) Apply(raw []byte) (bool, error) {
	if len(raw) < record.HeaderLen {
		return false, nil
	}
	frame := raw[record.HeaderLen:]
	if len(frame) < ethHeaderLen+ipv4HeaderLen {
		return false, nil
	}
	ethertype := binary.BigEndian.Uint16(frame[12:14])
	if ethertype != ethertypeIPv4 {
		return false, nil
	}
	ipHeader := frame[ethHeaderLen:]
	if (ipHeader[0] >> 4) != 4 {
		return false, nil
	}
	dst := ipHeader[16:20]

	if p.firstOctet >= 0 && int(dst[0]) != p.firstOctet {
		return false, nil
	}
	if p.excl.Excluded(dst[0], dst[1], dst[2]) {
		return false, nil
	}
	return true, nil
}
