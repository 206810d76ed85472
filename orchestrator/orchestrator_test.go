package orchestrator_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ndagtelescope/telescope/capture"
	"github.com/ndagtelescope/telescope/encap"
	"github.com/ndagtelescope/telescope/orchestrator"
)

func TestAssignPorts_EvenSpacingFromRandomBase(t *testing.T) {
	firstPort, ports := orchestrator.AssignPorts(5)
	if len(ports) != 5 {
		t.Fatalf("want 5 ports, got %d", len(ports))
	}
	for i, p := range ports {
		want := firstPort + 2*i
		if p != want {
			t.Fatalf("port %d: want %d, got %d", i, want, p)
		}
	}
}

func TestOrchestrator_RunStreamsUntilHalted(t *testing.T) {
	const streamIndex = 0

	_, ports := orchestrator.AssignPorts(1)
	sink := encap.Sink{
		MonitorID: 7,
		Port:      ports[0],
		GroupAddr: net.ParseIP("239.1.2.3"),
		SourceIP:  net.IPv4zero,
		MTU:       1400,
	}
	beaconSink := encap.Sink{
		MonitorID: 7,
		Port:      ports[0] + 1000,
		GroupAddr: net.ParseIP("239.1.2.3"),
		SourceIP:  net.IPv4zero,
		MTU:       1400,
	}

	beacon, err := encap.NewBeacon(beaconSink)
	if err != nil {
		t.Fatalf("unexpected error building beacon: %v", err)
	}

	opener := &capture.FakeOpener{RecordLen: 130, Interval: time.Millisecond}
	defer opener.StopAll()

	orch := orchestrator.New(opener, "/dev/dag0", orchestrator.NoFilterFactory{})

	params := []orchestrator.StreamParams{
		{
			Device:      "/dev/dag0",
			StreamIndex: streamIndex,
			GlobalStart: 0,
			Sinks:       []encap.Sink{sink},
			NUMANode:    -1,
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(context.Background(), params, beacon)
	}()

	time.Sleep(100 * time.Millisecond)
	orch.Flags.Halt()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error from Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not stop within 2s of Halt")
	}
}
