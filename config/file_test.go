package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndagtelescope/telescope/config"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "telescope.conf")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
# a comment
dagdev = /dev/dag1
monitorid=42
mtu=9000

darknetoctet=10
`)

	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Device != "/dev/dag1" {
		t.Fatalf("want /dev/dag1, got %s", f.Device)
	}
	if f.MonitorID != 42 {
		t.Fatalf("want monitorid 42, got %d", f.MonitorID)
	}
	if f.MTU != 9000 {
		t.Fatalf("want mtu 9000, got %d", f.MTU)
	}
	if f.DarknetOctet != 10 {
		t.Fatalf("want darknetoctet 10, got %d", f.DarknetOctet)
	}
	// Untouched defaults survive.
	if f.GroupAddr != "225.0.0.225" {
		t.Fatalf("want default group addr, got %s", f.GroupAddr)
	}
}

func TestLoad_UnknownKeyFails(t *testing.T) {
	path := writeTempConfig(t, "bogus=1\n")
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestValidate_RejectsZeroMonitorID(t *testing.T) {
	f := config.Defaults()
	f.MonitorID = 0
	if err := f.Validate(); err == nil {
		t.Fatalf("expected validation error for monitorid=0")
	}
}
