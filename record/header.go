// File: record/header.go
// Author: momentics <momentics@gmail.com>
//
// Framing header codec for captured link-layer records. Every record is
// prefixed by a fixed 16-byte header carrying a timestamp, a type/flags
// pair, the total record length, the hardware loss counter, and the wire
// length (payload size excluding this header) -- all fields after the
// timestamp are network byte order, matching spec §4.2.

package record

import "encoding/binary"

// HeaderLen is the size in bytes of one framing header.
const HeaderLen = 16

// Header is the parsed framing header of one captured record.
type Header struct {
	Timestamp uint64
	Type      uint8
	Flags     uint8
	RecordLen uint16 // total record length, header included
	LossCtr   uint16 // non-zero means the card dropped records before this one
	WireLen   uint16 // payload bytes excluding this header
}

// ParseHeader reads a framing header from the start of buf. Callers must
// ensure len(buf) >= HeaderLen.
func ParseHeader(buf []byte) Header {
	return Header{
		Timestamp: binary.BigEndian.Uint64(buf[0:8]),
		Type:      buf[8],
		Flags:     buf[9],
		RecordLen: binary.BigEndian.Uint16(buf[10:12]),
		LossCtr:   binary.BigEndian.Uint16(buf[12:14]),
		WireLen:   binary.BigEndian.Uint16(buf[14:16]),
	}
}
