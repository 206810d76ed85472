//go:build linux
// +build linux

// File: encap/socket_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux multicast UDP socket setup, adapted from
// internal/transport/transport_linux.go's direct unix.Socket /
// unix.SetsockoptInt / unix.SendmsgBuffers style: SOCK_STREAM +
// TCP_NODELAY becomes SOCK_DGRAM + IP_MULTICAST_TTL / IP_MULTICAST_LOOP /
// IP_MULTICAST_IF / IP_ADD_MEMBERSHIP.

package encap

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

const defaultMulticastTTL = 16

// newMulticastSocket opens a UDP socket bound to source, configured to
// send to group:port with the given source interface and joined to the
// group for loopback delivery to local subscribers (e.g. a test client
// on the same host).
func newMulticastSocket(group, source net.IP, port int, ttl int) (*boundSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	closeOnErr := true
	defer func() {
		if closeOnErr {
			unix.Close(fd)
		}
	}()

	if ttl <= 0 {
		ttl = defaultMulticastTTL
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, ttl); err != nil {
		return nil, fmt.Errorf("setsockopt IP_MULTICAST_TTL: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP, 1); err != nil {
		return nil, fmt.Errorf("setsockopt IP_MULTICAST_LOOP: %w", err)
	}

	if source != nil && !source.IsUnspecified() {
		var ifAddr [4]byte
		copy(ifAddr[:], source.To4())
		if err := unix.SetsockoptInet4Addr(fd, unix.IPPROTO_IP, unix.IP_MULTICAST_IF, ifAddr); err != nil {
			return nil, fmt.Errorf("setsockopt IP_MULTICAST_IF: %w", err)
		}
	}

	var dst [4]byte
	copy(dst[:], group.To4())
	var src [4]byte
	if source != nil {
		copy(src[:], source.To4())
	}
	mreq := &unix.IPMreq{Multiaddr: dst, Interface: src}
	if err := unix.SetsockoptIPMreq(fd, unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq); err != nil {
		return nil, fmt.Errorf("setsockopt IP_ADD_MEMBERSHIP: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], group.To4())

	closeOnErr = false
	return &boundSocket{fd: fd, dst: sa}, nil
}

// boundSocket is a connected-destination UDP socket ready for
// SendmsgBuffers batching. Implements Sender.
type boundSocket struct {
	fd  int
	dst *unix.SockaddrInet4
}

// SendBatch sends one or more buffer sets, one datagram per set, in a
// single batched syscall. Partial sends are reported as an error --
// spec's publisher treats any send failure as fatal for that push.
func (s *boundSocket) SendBatch(datagrams [][][]byte) error {
	for _, buffers := range datagrams {
		n, err := unix.SendmsgBuffers(s.fd, buffers, nil, s.dst, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
		if n != totalLen(buffers) {
			return fmt.Errorf("%w: partial send %d/%d bytes", ErrSendFailed, n, totalLen(buffers))
		}
	}
	return nil
}

// Close releases the underlying socket descriptor.
func (s *boundSocket) Close() error {
	return unix.Close(s.fd)
}

func totalLen(buffers [][]byte) int {
	n := 0
	for _, b := range buffers {
		n += len(b)
	}
	return n
}
