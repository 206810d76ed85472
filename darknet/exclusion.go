// File: darknet/exclusion.go
// Author: momentics <momentics@gmail.com>
//
// Reader for the /24 exclusion list (spec §6): line-oriented text, one
// dotted-quad /24 prefix per line, blank lines and '#' comments ignored.

package darknet

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
)

// ExclusionSet is a set of /24 IPv4 prefixes known to be in real use,
// so traffic toward them should not be treated as darknet traffic.
type ExclusionSet struct {
	prefixes map[[3]byte]struct{}
}

// LoadExclusions reads the exclusion list at path.
func LoadExclusions(path string) (*ExclusionSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("darknet: open exclusion file: %w", err)
	}
	defer f.Close()

	set := &ExclusionSet{prefixes: make(map[[3]byte]struct{})}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ip := net.ParseIP(line).To4()
		if ip == nil {
			return nil, fmt.Errorf("darknet: malformed prefix %q in %s", line, path)
		}
		set.prefixes[[3]byte{ip[0], ip[1], ip[2]}] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("darknet: reading %s: %w", path, err)
	}
	return set, nil
}

// Excluded reports whether the given /24 prefix is in the exclusion set.
func (s *ExclusionSet) Excluded(a, b, c byte) bool {
	if s == nil {
		return false
	}
	_, found := s.prefixes[[3]byte{a, b, c}]
	return found
}
