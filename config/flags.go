// File: config/flags.go
// Author: momentics <momentics@gmail.com>
//
// CLI flag overlay matching spec §6's long/short flag pairs, grounded on
// the teacher's stdlib flag.FlagSet usage (examples/lowlevel/broadcast
// and echo main.go) with paired long/short Var calls rather than a
// third-party flag library -- no example repo reaches for one.

package config

import "flag"

// Flags holds the parsed CLI overlay. Zero values mean "not set on the
// command line"; ApplyTo only overwrites a File field when the
// corresponding flag differs from its zero value.
type Flags struct {
	Device       string
	MonitorID    uint
	BeaconPort   int
	GroupAddr    string
	SourceAddr   string
	MTU          int
	ExcludeFile  string
	FirstOctet   int
	LogInterval  int
	Help         bool
	ConfigPath   string
}

// ParseFlags registers and parses spec §6's CLI surface against fs (pass
// flag.CommandLine in production, a fresh flag.NewFlagSet in tests).
func ParseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	var f Flags
	fs.StringVar(&f.ConfigPath, "config", "", "path to key=value configuration file")
	fs.StringVar(&f.ConfigPath, "c", "", "path to key=value configuration file (shorthand)")

	fs.StringVar(&f.Device, "device", "", "capture device path")
	fs.StringVar(&f.Device, "d", "", "capture device path (shorthand)")

	fs.UintVar(&f.MonitorID, "monitorid", 0, "16-bit publisher id")
	fs.UintVar(&f.MonitorID, "m", 0, "16-bit publisher id (shorthand)")

	fs.IntVar(&f.BeaconPort, "beaconport", 0, "beacon UDP port")
	fs.IntVar(&f.BeaconPort, "p", 0, "beacon UDP port (shorthand)")

	fs.StringVar(&f.GroupAddr, "groupaddr", "", "multicast group address")
	fs.StringVar(&f.GroupAddr, "a", "", "multicast group address (shorthand)")

	fs.StringVar(&f.SourceAddr, "sourceaddr", "", "source interface address")
	fs.StringVar(&f.SourceAddr, "s", "", "source interface address (shorthand)")

	fs.IntVar(&f.MTU, "mtu", 0, "datagram ceiling")
	fs.IntVar(&f.MTU, "M", 0, "datagram ceiling (shorthand)")

	fs.StringVar(&f.ExcludeFile, "excludefile", "", "path to darknet exclusion list")
	fs.StringVar(&f.ExcludeFile, "E", "", "path to darknet exclusion list (shorthand)")

	fs.IntVar(&f.FirstOctet, "firstoctet", -2, "required first octet of darknet IPs (-1 = unrestricted)")
	fs.IntVar(&f.FirstOctet, "o", -2, "required first octet of darknet IPs (shorthand)")

	fs.IntVar(&f.LogInterval, "loginterval", 0, "seconds between stats dumps")
	fs.IntVar(&f.LogInterval, "l", 0, "seconds between stats dumps (shorthand)")

	fs.BoolVar(&f.Help, "help", false, "print usage and exit")
	fs.BoolVar(&f.Help, "h", false, "print usage and exit (shorthand)")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// ApplyTo overlays any explicitly-set CLI flags onto base, returning the
// merged configuration. base is typically the result of config.Load or
// config.Defaults.
func (f Flags) ApplyTo(base File) File {
	if f.Device != "" {
		base.Device = f.Device
	}
	if f.MonitorID != 0 {
		base.MonitorID = uint16(f.MonitorID)
	}
	if f.BeaconPort != 0 {
		base.BeaconPort = f.BeaconPort
	}
	if f.GroupAddr != "" {
		base.GroupAddr = f.GroupAddr
	}
	if f.SourceAddr != "" {
		base.SourceAddr = f.SourceAddr
	}
	if f.MTU != 0 {
		base.MTU = f.MTU
	}
	if f.ExcludeFile != "" {
		base.FilterFile = f.ExcludeFile
	}
	if f.FirstOctet != -2 {
		base.DarknetOctet = f.FirstOctet
	}
	if f.LogInterval != 0 {
		base.StatInterval = f.LogInterval
	}
	return base
}
