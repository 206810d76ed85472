// File: cmd/telescope-testclient/main.go
// Author: momentics <momentics@gmail.com>
//
// A minimal multicast receiver used to exercise the publisher end to
// end: listens for beacon advertisements and spins up one reader per
// advertised stream, reporting datagram/record counts. Grounded on
// testclient/testclient.h's recvthread_t + message-queue design: a
// beacon-listener goroutine posts discovery events through a bounded
// internal/concurrency.MessageQueue to the main goroutine, replacing
// the original's pipe+spinlock queue (spec §5's re-architecture note).

package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndagtelescope/telescope/encap"
	"github.com/ndagtelescope/telescope/internal/concurrency"
)

// eventType enumerates what a controlEvent reports -- mirrors the
// original's NDAG_CLIENT_HALT/RESTARTED/NEWGROUP enum.
type eventType uint8

const (
	eventNewStream eventType = iota
	eventHalt
)

type controlEvent struct {
	kind        eventType
	streamIndex int
	port        int
}

func main() {
	os.Exit(run())
}

func run() int {
	groupAddr := flag.String("groupaddr", "225.0.0.225", "multicast group to join")
	beaconPort := flag.Int("beaconport", 9001, "beacon UDP port")
	flag.Parse()

	mq, err := concurrency.NewMessageQueue[controlEvent](64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testclient: message queue: %v\n", err)
		return 1
	}
	defer mq.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		mq.Put(controlEvent{kind: eventHalt})
	}()

	go listenBeacon(*groupAddr, *beaconPort, mq)

	seen := make(map[int]bool)
	for {
		ev, err := mq.Get()
		if err != nil {
			fmt.Fprintf(os.Stderr, "testclient: %v\n", err)
			return 1
		}
		switch ev.kind {
		case eventHalt:
			fmt.Fprintln(os.Stderr, "testclient: halting")
			return 0
		case eventNewStream:
			if seen[ev.streamIndex] {
				continue
			}
			seen[ev.streamIndex] = true
			fmt.Fprintf(os.Stderr, "testclient: discovered stream %d on port %d\n", ev.streamIndex, ev.port)
			go readStream(*groupAddr, ev.port, ev.streamIndex)
		}
	}
}

// listenBeacon joins the beacon group, decodes advertisements, and
// posts one eventNewStream per newly seen (stream_index, port) pair.
func listenBeacon(groupAddr string, port int, mq *concurrency.MessageQueue[controlEvent]) {
	conn, err := net.ListenMulticastUDP("udp4", nil, &net.UDPAddr{IP: net.ParseIP(groupAddr), Port: port})
	if err != nil {
		fmt.Fprintf(os.Stderr, "testclient: join beacon group: %v\n", err)
		return
	}
	defer conn.Close()

	buf := make([]byte, 65536)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		hdr := encap.DecodeHeader(buf[:n])
		if !hdr.Beacon {
			continue
		}
		_, _, entries := encap.DecodeBeaconPayload(buf[encap.CommonHeaderLen:n])
		for _, e := range entries {
			mq.Put(controlEvent{kind: eventNewStream, streamIndex: e.StreamIndex, port: e.ExportPort})
		}
	}
}

// readStream joins one exported stream's multicast group and counts
// datagrams/records, printing a running tally to stderr.
func readStream(groupAddr string, port, streamIndex int) {
	conn, err := net.ListenMulticastUDP("udp4", nil, &net.UDPAddr{IP: net.ParseIP(groupAddr), Port: port})
	if err != nil {
		fmt.Fprintf(os.Stderr, "testclient: stream %d: join: %v\n", streamIndex, err)
		return
	}
	defer conn.Close()

	buf := make([]byte, 65536)
	var datagrams, records uint64
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		hdr := encap.DecodeHeader(buf[:n])
		if hdr.Beacon {
			continue
		}
		datagrams++
		records += uint64(hdr.RecordCount)
		if datagrams%1000 == 0 {
			fmt.Fprintf(os.Stderr, "testclient: stream %d: %d datagrams, %d records\n", streamIndex, datagrams, records)
		}
	}
}
