// File: cmd/telescope/main.go
// Author: momentics <momentics@gmail.com>
//
// Entrypoint: loads configuration, overlays CLI flags, wires signal
// handling into the control plane, and runs the orchestrator until
// halted. Grounded on the teacher's examples/lowlevel/echo and
// broadcast main.go's flag.Parse + signal.Notify + blocking-on-signal
// shape.

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ndagtelescope/telescope/capture"
	"github.com/ndagtelescope/telescope/config"
	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/darknet"
	"github.com/ndagtelescope/telescope/encap"
	"github.com/ndagtelescope/telescope/orchestrator"
	"github.com/ndagtelescope/telescope/record"
)

func main() {
	os.Exit(run())
}

func run() int {
	cliFlags, err := config.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "telescope: %v\n", err)
		return 1
	}
	if cliFlags.Help {
		flag.CommandLine.Usage()
		return 0
	}

	cfg := config.Defaults()
	if cliFlags.ConfigPath != "" {
		loaded, err := config.Load(cliFlags.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telescope: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	cfg = cliFlags.ApplyTo(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "telescope: %v\n", err)
		return 1
	}

	filterFactory, err := buildFilterFactory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telescope: %v\n", err)
		return 1
	}

	const numStreams = 4 // even indices 0,2,4,6; real stream count comes from the card in production
	_, exportPorts := orchestrator.AssignPorts(numStreams)

	globalStart := orchestrator.ComputeGlobalStart(time.Now())

	streams := make([]orchestrator.StreamParams, 0, numStreams)
	for i := 0; i < numStreams; i++ {
		streamIndex := 2 * i
		sink := encap.Sink{
			MonitorID: cfg.MonitorID,
			Port:      exportPorts[i],
			GroupAddr: mustParseIP(cfg.GroupAddr),
			SourceIP:  mustParseIP(cfg.SourceAddr),
			MTU:       cfg.MTU,
		}
		streams = append(streams, orchestrator.StreamParams{
			Device:       cfg.Device,
			StreamIndex:  streamIndex,
			GlobalStart:  globalStart,
			StatInterval: time.Duration(cfg.StatInterval) * time.Second,
			StatDir:      cfg.StatDir,
			Sinks:        []encap.Sink{sink},
			NUMANode:     -1,
			CPUID:        streamIndex % runtime.NumCPU(),
		})
	}

	beaconSink := encap.Sink{
		MonitorID: cfg.MonitorID,
		Port:      cfg.BeaconPort,
		GroupAddr: mustParseIP(cfg.GroupAddr),
		SourceIP:  mustParseIP(cfg.SourceAddr),
		MTU:       cfg.MTU,
	}
	beacon, err := encap.NewBeacon(beaconSink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telescope: beacon: %v\n", err)
		return 1
	}

	opener := &capture.FakeOpener{RecordLen: 130, Interval: time.Millisecond}
	defer opener.StopAll()

	orch := orchestrator.New(opener, cfg.Device, filterFactory)

	var streamStats []*control.StreamStats
	for _, s := range streams {
		streamStats = append(streamStats, &control.StreamStats{StreamIndex: s.StreamIndex})
	}
	dumper := control.NewStatsDumper(cfg.StatDir, time.Duration(cfg.StatInterval)*time.Second, streamStats)
	go dumper.Run()
	defer dumper.Stop()

	adapter := control.NewAdapter()
	adapter.Metrics().Set("boot_unix", time.Now().Unix())
	adapter.Metrics().Set("num_streams", numStreams)
	for _, s := range streamStats {
		s := s
		adapter.RegisterDebugProbe(fmt.Sprintf("stream.%d", s.StreamIndex), func() any {
			return s.Snapshot()
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				orch.Flags.TogglePause()
			case syscall.SIGUSR1:
				for k, v := range adapter.Stats() {
					fmt.Fprintf(os.Stderr, "telescope: %s = %v\n", k, v)
				}
			default:
				orch.Flags.Halt()
			}
		}
	}()

	ctx := context.Background()
	runErr := orch.Run(ctx, streams, beacon)

	fmt.Fprintln(os.Stderr, "telescope: shutting down")
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "telescope: %v\n", runErr)
		return 2
	}
	return 0
}

func buildFilterFactory(cfg config.File) (orchestrator.StreamFilterFactory, error) {
	if cfg.FilterFile == "" {
		return orchestrator.NoFilterFactory{}, nil
	}
	excl, err := darknet.LoadExclusions(cfg.FilterFile)
	if err != nil {
		return nil, fmt.Errorf("load exclusion file: %w", err)
	}
	return darknetFilterFactory{firstOctet: cfg.DarknetOctet, excl: excl}, nil
}

// darknetFilterFactory builds one darknet.Predicate per stream; the
// predicate has no per-instance teardown cost, so Close is a no-op.
type darknetFilterFactory struct {
	firstOctet int
	excl       *darknet.ExclusionSet
}

func (f darknetFilterFactory) Init(orchestrator.StreamParams) (record.Filter, error) {
	return darknet.New(f.firstOctet, f.excl), nil
}

func (f darknetFilterFactory) Close(record.Filter) error { return nil }

func mustParseIP(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return net.IPv4zero
	}
	return ip
}
