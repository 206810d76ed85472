package record_test

import (
	"encoding/binary"
	"testing"

	"github.com/ndagtelescope/telescope/control"
	"github.com/ndagtelescope/telescope/pool"
	"github.com/ndagtelescope/telescope/record"
)

// buildRecord returns one framed record of total length `length`
// (header included) with the given loss counter.
func buildRecord(length int, lossCtr uint16) []byte {
	if length < record.HeaderLen {
		length = record.HeaderLen
	}
	buf := make([]byte, length)
	binary.BigEndian.PutUint16(buf[10:12], uint16(length))
	binary.BigEndian.PutUint16(buf[12:14], lossCtr)
	binary.BigEndian.PutUint16(buf[14:16], uint16(length-record.HeaderLen))
	return buf
}

func concatRecords(records ...[]byte) []byte {
	var out []byte
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

func newStats() *control.StreamStats {
	return &control.StreamStats{StreamIndex: 0}
}

// allKeepFilter keeps every record -- used for the idempotence property.
type allKeepFilter struct{}

func (allKeepFilter) Apply(raw []byte) (bool, error) { return true, nil }

// dropEveryOther drops records whose index (call order) is odd.
type indexFilter struct {
	drop map[int]bool
	i    int
}

func (f *indexFilter) Apply(raw []byte) (bool, error) {
	keep := !f.drop[f.i]
	f.i++
	return keep, nil
}

func TestWalk_S1_SingleSmallRecord(t *testing.T) {
	buf := buildRecord(100, 0)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RecordCount != 1 || res.IovecCount != 1 {
		t.Fatalf("want 1 record / 1 iovec, got %+v", res)
	}
	if iovp.Get(0).Len != 100 {
		t.Fatalf("want payload 100, got %d", iovp.Get(0).Len)
	}
	if res.Bottom != len(buf) {
		t.Fatalf("want bottom fully consumed, got %d", res.Bottom)
	}
}

func TestWalk_S2_ExactFit(t *testing.T) {
	var records [][]byte
	for i := 0; i < 10; i++ {
		records = append(records, buildRecord(130, 0))
	}
	buf := concatRecords(records...)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RecordCount != 10 {
		t.Fatalf("want 10 records, got %d", res.RecordCount)
	}
	if iovp.Get(0).Len != 1300 {
		t.Fatalf("want payload 1300, got %d", iovp.Get(0).Len)
	}
	if res.Bottom != len(buf) {
		t.Fatalf("want window fully consumed, got %d", res.Bottom)
	}
}

func TestWalk_S3_OverflowBoundary(t *testing.T) {
	var records [][]byte
	for i := 0; i < 11; i++ {
		records = append(records, buildRecord(130, 0))
	}
	buf := concatRecords(records...)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	resA, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resA.RecordCount != 10 {
		t.Fatalf("datagram A: want 10 records, got %d", resA.RecordCount)
	}
	if resA.Bottom != 1300 {
		t.Fatalf("datagram A: want bottom at 1300, got %d", resA.Bottom)
	}

	resB, err := record.Walk(resA.Bottom, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resB.RecordCount != 1 {
		t.Fatalf("datagram B: want 1 record, got %d", resB.RecordCount)
	}
	if resB.Bottom != len(buf) {
		t.Fatalf("datagram B: want window fully consumed, got %d", resB.Bottom)
	}
}

func TestWalk_S4_OversizedFirstRecord(t *testing.T) {
	buf := buildRecord(2000, 0)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RecordCount != 1 || res.IovecCount != 1 {
		t.Fatalf("want 1 record / 1 iovec, got %+v", res)
	}
	if iovp.Get(0).Len != 2000 {
		t.Fatalf("want full oversized payload retained, got %d", iovp.Get(0).Len)
	}
}

func TestWalk_S5_LossCounterHalts(t *testing.T) {
	buf := concatRecords(
		buildRecord(130, 0),
		buildRecord(130, 0),
		buildRecord(130, 1),
	)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err == nil {
		t.Fatalf("expected fatal loss error")
	}
	if res.Bottom != 260 {
		t.Fatalf("want bottom left at the lossy record (260), got %d", res.Bottom)
	}
	if stats.DroppedRecords.Load() != 1 {
		t.Fatalf("want dropped_records=1, got %d", stats.DroppedRecords.Load())
	}
}

func TestWalk_S6_FilterSplitsMidBatch(t *testing.T) {
	var records [][]byte
	drop := map[int]bool{5: true, 6: true}
	for i := 0; i < 10; i++ {
		records = append(records, buildRecord(100, 0))
	}
	buf := concatRecords(records...)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)
	filter := &indexFilter{drop: drop}

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, filter, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IovecCount != 2 {
		t.Fatalf("want 2 iovecs (split around dropped records), got %d", res.IovecCount)
	}
	if res.RecordCount != 8 {
		t.Fatalf("want 8 kept records, got %d", res.RecordCount)
	}
	if iovp.Get(0).Len != 500 || iovp.Get(1).Len != 300 {
		t.Fatalf("want iovecs of 500/300 bytes, got %d/%d", iovp.Get(0).Len, iovp.Get(1).Len)
	}
}

func TestWalk_PartialTailPreserved(t *testing.T) {
	full := buildRecord(130, 0)
	partial := full[:80] // partial record, not a full 130 bytes
	buf := concatRecords(full, partial)
	stats := newStats()
	iovp := pool.NewIovecPool(record.ColorSlots)

	res, err := record.Walk(0, len(buf), buf, 1368, iovp, nil, stats, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Bottom != 130 {
		t.Fatalf("want bottom stopped before partial record, got %d", res.Bottom)
	}
}

func TestWalk_FilterIdempotence(t *testing.T) {
	var records [][]byte
	for i := 0; i < 5; i++ {
		records = append(records, buildRecord(100, 0))
	}
	buf := concatRecords(records...)

	statsNoFilter := newStats()
	iovpNoFilter := pool.NewIovecPool(record.ColorSlots)
	resNoFilter, err := record.Walk(0, len(buf), buf, 1368, iovpNoFilter, nil, statsNoFilter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statsFilter := newStats()
	iovpFilter := pool.NewIovecPool(record.ColorSlots)
	resFilter, err := record.Walk(0, len(buf), buf, 1368, iovpFilter, allKeepFilter{}, statsFilter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resNoFilter.RecordCount != resFilter.RecordCount {
		t.Fatalf("record counts differ: %d vs %d", resNoFilter.RecordCount, resFilter.RecordCount)
	}
	if resNoFilter.Bottom != resFilter.Bottom {
		t.Fatalf("bottoms differ: %d vs %d", resNoFilter.Bottom, resFilter.Bottom)
	}
	if iovpNoFilter.Get(0).Len != iovpFilter.Get(0).Len {
		t.Fatalf("payload lengths differ: %d vs %d", iovpNoFilter.Get(0).Len, iovpFilter.Get(0).Len)
	}
}
