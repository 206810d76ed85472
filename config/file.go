// File: config/file.go
// Author: momentics <momentics@gmail.com>
//
// Simple key/value configuration loader (spec §6 explicitly calls for
// this over a structured format). Grounded on the teacher's preference
// for plain Go over reflection-heavy config (control.MetricsRegistry's
// flat map[string]any) rather than introducing a YAML dependency no
// example repo carries.

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// File is the parsed key/value configuration surface from spec §6.
type File struct {
	Device       string // dagdev
	MonitorID    uint16 // monitorid
	BeaconPort   int    // mcastport
	GroupAddr    string // mcastaddr
	SourceAddr   string // srcaddr
	MTU          int    // mtu
	FilterFile   string // filterfile
	DarknetOctet int    // darknetoctet, -1 = unrestricted
	StatInterval int    // statinterval, seconds, 0 = off
	StatDir      string // statdir
}

// Defaults returns the configuration surface's documented defaults.
func Defaults() File {
	return File{
		Device:       "/dev/dag0",
		MonitorID:    1,
		BeaconPort:   9001,
		GroupAddr:    "225.0.0.225",
		SourceAddr:   "0.0.0.0",
		MTU:          1400,
		DarknetOctet: -1,
		StatInterval: 0,
	}
}

// Load reads a line-oriented key=value file into the defaults, matching
// the exclusion-list file's own comment/blank-line conventions (spec
// §6): blank lines and lines starting with '#' are ignored.
func Load(path string) (File, error) {
	f := Defaults()
	fh, err := os.Open(path)
	if err != nil {
		return f, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return f, fmt.Errorf("config: %s:%d: missing '=' in %q", path, lineNo, line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if err := f.set(key, value); err != nil {
			return f, fmt.Errorf("config: %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return f, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return f, nil
}

func (f *File) set(key, value string) error {
	switch key {
	case "dagdev":
		f.Device = value
	case "monitorid":
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return fmt.Errorf("monitorid: %w", err)
		}
		f.MonitorID = uint16(n)
	case "mcastport":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("mcastport: %w", err)
		}
		f.BeaconPort = n
	case "mcastaddr":
		f.GroupAddr = value
	case "srcaddr":
		f.SourceAddr = value
	case "mtu":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("mtu: %w", err)
		}
		f.MTU = n
	case "filterfile":
		f.FilterFile = value
	case "darknetoctet":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("darknetoctet: %w", err)
		}
		f.DarknetOctet = n
	case "statinterval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("statinterval: %w", err)
		}
		f.StatInterval = n
	case "statdir":
		f.StatDir = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// Validate checks the invariants spec §6 calls out explicitly (monitor
// id 0 is invalid).
func (f File) Validate() error {
	if f.MonitorID == 0 {
		return fmt.Errorf("config: monitorid=0 is not a valid monitor ID")
	}
	return nil
}
