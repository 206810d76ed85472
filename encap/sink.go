// File: encap/sink.go
// Author: momentics <momentics@gmail.com>
//
// Sink is the per-destination configuration spec §3 assigns to one
// multicast export target: the tuple (group, source, port, MTU,
// monitor-id, color).

package encap

import (
	"net"

	"github.com/ndagtelescope/telescope/record"
)

// Sink names one multicast destination a worker publishes to.
type Sink struct {
	Color     record.Color
	MonitorID uint16
	Port      int
	GroupAddr net.IP
	SourceIP  net.IP
	MTU       int
}

// Budget returns the per-datagram record-payload budget for this sink:
// the MTU minus the outer framing overhead.
func (s Sink) Budget() int {
	return s.MTU - Overhead
}
