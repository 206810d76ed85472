// File: capture/fake_opener.go
// Author: momentics <momentics@gmail.com>
//
// FakeOpener implements Opener over FakeRing, starting a LoadGenerator
// per opened stream. Used by the bundled load-test CLI in place of the
// real (out-of-scope) capture-card driver.

package capture

import "time"

// FakeOpener hands out FakeRing instances fed by a LoadGenerator.
type FakeOpener struct {
	RecordLen int
	Interval  time.Duration

	gens []*LoadGenerator
}

// Open ignores device and returns a fresh, generator-fed FakeRing for
// streamIndex. Odd stream indices are rejected, matching the real
// driver's inbound-only-mirror restriction.
func (o *FakeOpener) Open(device string, streamIndex int) (Ring, error) {
	if streamIndex%2 != 0 {
		return nil, ErrOddStream
	}
	ring := NewFakeRing()
	gen := NewLoadGenerator(ring, o.RecordLen, o.Interval)
	o.gens = append(o.gens, gen)
	go gen.Run()
	return ring, nil
}

// StopAll stops every generator started by this opener.
func (o *FakeOpener) StopAll() {
	for _, g := range o.gens {
		g.Stop()
	}
}
