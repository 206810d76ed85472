// File: encap/wire.go
// Author: momentics <momentics@gmail.com>
//
// Outer framing for published datagrams (spec §6): a common header shared
// by data and beacon datagrams, followed by a data-specific encap header.
// Unchanged wire layout from the distilled spec; encoded by hand rather
// than via unsafe struct overlay, matching the teacher's preference for
// explicit binary.BigEndian codecs over the record/header.go codec.

package encap

import "encoding/binary"

const (
	magic = 0x4e444147 // "NDAG"

	typeData   uint8 = 0
	typeBeacon uint8 = 1

	// CommonHeaderLen is the size of the header shared by every datagram.
	CommonHeaderLen = 8

	// EncapHeaderLen is the size of the data-datagram-specific header.
	EncapHeaderLen = 24

	// Overhead is the total outer framing carried by every data
	// datagram, used by callers to compute the walker's per-datagram
	// budget: budget = MTU - encap.Overhead.
	Overhead = CommonHeaderLen + EncapHeaderLen
)

// commonHeader is shared by data and beacon datagrams.
type commonHeader struct {
	magic     uint32
	version   uint8
	kind      uint8
	monitorID uint16
}

func (h commonHeader) encode(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], h.magic)
	buf[4] = h.version
	buf[5] = h.kind
	binary.BigEndian.PutUint16(buf[6:8], h.monitorID)
}

// encapHeader precedes the record bodies of one data datagram.
type encapHeader struct {
	streamIndex int
	sequence    uint32
	recordCount int
	truncated   bool
	globalStart uint64
}

func (h encapHeader) encode(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], uint16(h.streamIndex))
	binary.BigEndian.PutUint32(buf[4:8], h.sequence)
	binary.BigEndian.PutUint16(buf[8:10], uint16(h.recordCount))
	if h.truncated {
		buf[10] = 1
	} else {
		buf[10] = 0
	}
	binary.BigEndian.PutUint64(buf[12:20], h.globalStart)
}

// beaconEntry is one (stream_index, export_port) pair advertised by the
// beacon payload.
type beaconEntry struct {
	streamIndex int
	exportPort  int
}

// DecodedHeader is the parsed outer framing of one datagram, exposed
// for tests and any downstream tooling that needs to verify what a
// Publisher actually put on the wire.
type DecodedHeader struct {
	MonitorID   uint16
	Beacon      bool
	StreamIndex int
	Sequence    uint32
	RecordCount int
	Truncated   bool
	GlobalStart uint64
}

// DecodeHeader parses the common header and, for data datagrams, the
// encap header that follows it. buf must be at least Overhead bytes for
// a data datagram, or at least CommonHeaderLen for a beacon datagram.
func DecodeHeader(buf []byte) DecodedHeader {
	d := DecodedHeader{
		MonitorID: binary.BigEndian.Uint16(buf[6:8]),
		Beacon:    buf[5] == typeBeacon,
	}
	if d.Beacon || len(buf) < Overhead {
		return d
	}
	eh := buf[CommonHeaderLen:]
	d.StreamIndex = int(binary.BigEndian.Uint16(eh[0:2]))
	d.Sequence = binary.BigEndian.Uint32(eh[4:8])
	d.RecordCount = int(binary.BigEndian.Uint16(eh[8:10]))
	d.Truncated = eh[10] != 0
	d.GlobalStart = binary.BigEndian.Uint64(eh[12:20])
	return d
}

func encodeBeaconPayload(monitorID uint16, freqMillis uint32, entries []beaconEntry) []byte {
	buf := make([]byte, 6+4*len(entries))
	binary.BigEndian.PutUint16(buf[0:2], monitorID)
	binary.BigEndian.PutUint32(buf[2:6], freqMillis)
	for i, e := range entries {
		off := 6 + 4*i
		binary.BigEndian.PutUint16(buf[off:off+2], uint16(e.streamIndex))
		binary.BigEndian.PutUint16(buf[off+2:off+4], uint16(e.exportPort))
	}
	return buf
}

// BeaconEntry is one advertised (stream_index, export_port) pair, as
// seen by a receiver decoding a beacon payload.
type BeaconEntry struct {
	StreamIndex int
	ExportPort  int
}

// DecodeBeaconPayload parses the body of a beacon datagram (the bytes
// following the common header): monitor id, frequency in milliseconds,
// and the array of active stream/port pairs.
func DecodeBeaconPayload(payload []byte) (monitorID uint16, freqMillis uint32, entries []BeaconEntry) {
	if len(payload) < 6 {
		return 0, 0, nil
	}
	monitorID = binary.BigEndian.Uint16(payload[0:2])
	freqMillis = binary.BigEndian.Uint32(payload[2:6])
	for off := 6; off+4 <= len(payload); off += 4 {
		entries = append(entries, BeaconEntry{
			StreamIndex: int(binary.BigEndian.Uint16(payload[off : off+2])),
			ExportPort:  int(binary.BigEndian.Uint16(payload[off+2 : off+4])),
		})
	}
	return monitorID, freqMillis, entries
}
