package daf

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"testing"
)

// The tests in this file build a minimal synthetic DAF/SPK buffer directly
// (file record + one or more summary records + segment data) rather than
// depending on a real kernel file, in the same spirit as cheby_test.go
// feeding raw coefficient slices. Every segment here uses a fixed
// NCoeffs=2 Type 2 (position-only) or Type 3 (position+velocity) layout:
// two unused header doubles (MID, RADIUS) followed by per-component
// coefficient pairs, so Eval([]float64{a, b}, tc) == a + b*tc.

func encodeSegmentData(bo binary.ByteOrder, init, intLen float64, recs [][3][2]float64) []byte {
	const rsize = 8 // 2 header doubles + 3 components * 2 coeffs
	words := make([]float64, 0, len(recs)*rsize+4)
	for _, r := range recs {
		words = append(words, 0.0, 0.0)
		words = append(words, r[0][0], r[0][1])
		words = append(words, r[1][0], r[1][1])
		words = append(words, r[2][0], r[2][1])
	}
	words = append(words, init, intLen, float64(rsize), float64(len(recs)))
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		bo.PutUint64(buf[i*8:], math.Float64bits(w))
	}
	return buf
}

// encodeVelocitySegmentData lays out a Type 3 record: 2 header doubles
// then 2 position coeffs and 2 velocity coeffs per component.
func encodeVelocitySegmentData(bo binary.ByteOrder, init, intLen float64, recs [][6][2]float64) []byte {
	const rsize = 14 // 2 header + 6 components (x,y,z,vx,vy,vz) * 2 coeffs
	words := make([]float64, 0, len(recs)*rsize+4)
	for _, r := range recs {
		words = append(words, 0.0, 0.0)
		for c := 0; c < 6; c++ {
			words = append(words, r[c][0], r[c][1])
		}
	}
	words = append(words, init, intLen, float64(rsize), float64(len(recs)))
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		bo.PutUint64(buf[i*8:], math.Float64bits(w))
	}
	return buf
}

func encodeSummary(bo binary.ByteOrder, startSec, endSec float64, target, center, dataType, startI, endI int) []byte {
	buf := make([]byte, 40)
	bo.PutUint64(buf[0:8], math.Float64bits(startSec))
	bo.PutUint64(buf[8:16], math.Float64bits(endSec))
	bo.PutUint32(buf[16:20], uint32(int32(target)))
	bo.PutUint32(buf[20:24], uint32(int32(center)))
	bo.PutUint32(buf[24:28], uint32(int32(1))) // frame: unused by the decoder
	bo.PutUint32(buf[28:32], uint32(int32(dataType)))
	bo.PutUint32(buf[32:36], uint32(int32(startI)))
	bo.PutUint32(buf[36:40], uint32(int32(endI)))
	return buf
}

func encodeFileRecord(bo binary.ByteOrder, fward int, tag string) []byte {
	buf := make([]byte, recordLen)
	copy(buf[0:8], "DAF/SPK ")
	bo.PutUint32(buf[8:12], uint32(2)) // ND
	bo.PutUint32(buf[12:16], uint32(6)) // NI
	bo.PutUint32(buf[76:80], uint32(fward))
	copy(buf[88:96], tag)
	return buf
}

func encodeSummaryRecord(bo binary.ByteOrder, next float64, summaries [][]byte) []byte {
	buf := make([]byte, recordLen)
	bo.PutUint64(buf[0:8], math.Float64bits(next))
	bo.PutUint64(buf[8:16], math.Float64bits(0.0)) // PREV: unused by the decoder
	bo.PutUint64(buf[16:24], math.Float64bits(float64(len(summaries))))
	pos := 24
	for _, s := range summaries {
		copy(buf[pos:], s)
		pos += len(s)
	}
	return buf
}

func writeKernel(t *testing.T, buf []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "synth-*.bsp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

// singleSegmentKernel builds a one-segment, one-summary-record kernel: file
// record, then one summary record, then the segment data immediately after.
func singleSegmentKernel(t *testing.T, bo binary.ByteOrder, tag string, target, center, dataType int, data []byte, init, intLen float64, n int) string {
	t.Helper()
	dataOffset := 2 * recordLen
	startI := dataOffset/8 + 1
	endI := startI + len(data)/8 - 1
	startSec := init
	endSec := init + float64(n)*intLen

	summary := encodeSummary(bo, startSec, endSec, target, center, dataType, startI, endI)
	fileRec := encodeFileRecord(bo, 2, tag)
	sumRec := encodeSummaryRecord(bo, 0.0, [][]byte{summary})

	buf := append(append(append([]byte{}, fileRec...), sumRec...), data...)
	return writeKernel(t, buf)
}

func twoRecordPositionSegment(t *testing.T, bo binary.ByteOrder, tag string) string {
	t.Helper()
	recs := [][3][2]float64{
		{{10.0, 1.0}, {20.0, 2.0}, {30.0, 3.0}}, // record 0: x=10+1*tc, y=20+2*tc, z=30+3*tc
		{{100.0, 5.0}, {200.0, 6.0}, {300.0, 7.0}}, // record 1
	}
	data := encodeSegmentData(bo, 0.0, 100000.0, recs)
	return singleSegmentKernel(t, bo, tag, 499, 0, 2, data, 0.0, 100000.0, 2)
}

func TestLoad_LittleEndianRoundTrip(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(k.Segments))
	}
	if !k.HasPair(499, 0) {
		t.Error("expected HasPair(499, 0) to be true")
	}
	if got := k.Targets()[499]; got != 0 {
		t.Errorf("Targets()[499]: got %d, want 0", got)
	}
}

func TestLoad_BigEndianRoundTrip(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.BigEndian, "BIG-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !k.HasPair(499, 0) {
		t.Error("expected HasPair(499, 0) to be true")
	}
}

func TestLoad_UnrecognizedByteOrderTag(t *testing.T) {
	recs := [][3][2]float64{{{1, 0}, {2, 0}, {3, 0}}}
	data := encodeSegmentData(binary.LittleEndian, 0.0, 1000.0, recs)
	path := singleSegmentKernel(t, binary.LittleEndian, "MID-IEEE", 499, 0, 2, data, 0.0, 1000.0, 1)
	if _, err := Load(path); !errors.Is(err, ErrKernelLoad) {
		t.Errorf("got %v, want ErrKernelLoad", err)
	}
}

func TestLoad_BadLOCIDW(t *testing.T) {
	buf := make([]byte, recordLen)
	copy(buf[0:8], "NOTADAF!")
	path := writeKernel(t, buf)
	if _, err := Load(path); !errors.Is(err, ErrKernelLoad) {
		t.Errorf("got %v, want ErrKernelLoad", err)
	}
}

func TestLoad_UnsupportedDataType(t *testing.T) {
	recs := [][3][2]float64{{{1, 0}, {2, 0}, {3, 0}}}
	data := encodeSegmentData(binary.LittleEndian, 0.0, 1000.0, recs)
	path := singleSegmentKernel(t, binary.LittleEndian, "LTL-IEEE", 499, 0, 1, data, 0.0, 1000.0, 1)
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
}

func TestPosition_EvaluatesMatchingRecord(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// First record covers [0, 100000); tc=0 at its midpoint is not what we
	// want, so pick an epoch exactly at the record start, where tc=-1.
	pos, err := k.Position(499, 0, 0.0)
	if err != nil {
		t.Fatal(err)
	}
	// tc = -1: a + b*(-1) = a - b.
	want := [3]float64{10.0 - 1.0, 20.0 - 2.0, 30.0 - 3.0}
	if pos != want {
		t.Errorf("record 0 at tc=-1: got %v, want %v", pos, want)
	}

	// An epoch in the second record: 100000 + 50000 = 150000, tc = 0.
	pos, err = k.Position(499, 0, 150000.0)
	if err != nil {
		t.Fatal(err)
	}
	want = [3]float64{100.0, 200.0, 300.0}
	if pos != want {
		t.Errorf("record 1 at tc=0: got %v, want %v", pos, want)
	}
}

func TestPosition_IncrementsSegEvalCount(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := k.SegEvalCount(); got != 0 {
		t.Fatalf("fresh kernel: SegEvalCount() = %d, want 0", got)
	}
	if _, err := k.Position(499, 0, 0.0); err != nil {
		t.Fatal(err)
	}
	if _, err := k.Position(499, 0, 150000.0); err != nil {
		t.Fatal(err)
	}
	if got := k.SegEvalCount(); got != 2 {
		t.Errorf("after 2 Position calls: SegEvalCount() = %d, want 2", got)
	}
}

func TestPosition_UnknownPairErrors(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := k.Position(999, 0, 0.0); !errors.Is(err, ErrNoSegment) {
		t.Errorf("got %v, want ErrNoSegment", err)
	}
}

func TestPosition_EpochOutOfRangeErrors(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := k.Position(499, 0, -1.0); !errors.Is(err, ErrEpochOutOfRange) {
		t.Errorf("epoch before segment start: got %v, want ErrEpochOutOfRange", err)
	}
	if _, err := k.Position(499, 0, 200001.0); !errors.Is(err, ErrEpochOutOfRange) {
		t.Errorf("epoch past segment end: got %v, want ErrEpochOutOfRange", err)
	}
}

func TestFindRecord_ClampsAtUpperBoundary(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// Exactly at EndSec: idx = (200000-0)/100000 = 2, clamped to N-1 = 1.
	pos, err := k.Position(499, 0, 200000.0)
	if err != nil {
		t.Fatal(err)
	}
	want := [3]float64{100.0 + 5.0, 200.0 + 6.0, 300.0 + 7.0} // record 1 at tc=+1
	if pos != want {
		t.Errorf("boundary epoch: got %v, want %v", pos, want)
	}
}

func TestVelocity_Type3UsesOwnCoefficients(t *testing.T) {
	recs := [][6][2]float64{
		{{10.0, 1.0}, {20.0, 2.0}, {30.0, 3.0}, {1.0, 0.0}, {2.0, 0.0}, {3.0, 0.0}},
	}
	data := encodeVelocitySegmentData(binary.LittleEndian, 0.0, 100000.0, recs)
	path := singleSegmentKernel(t, binary.LittleEndian, "LTL-IEEE", 399, 0, 3, data, 0.0, 100000.0, 1)
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	vel, err := k.Velocity(399, 0, 0.0) // tc = -1
	if err != nil {
		t.Fatal(err)
	}
	want := [3]float64{1.0, 2.0, 3.0} // constant velocity coeffs, independent of tc
	if vel != want {
		t.Errorf("got %v, want %v", vel, want)
	}
}

func TestVelocity_Type2DifferentiatesPosition(t *testing.T) {
	path := twoRecordPositionSegment(t, binary.LittleEndian, "LTL-IEEE")
	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// x(tc) = 10 + 1*tc, d/dtc = 1; scale = 2/IntLen converts to per-second.
	vel, err := k.Velocity(499, 0, 0.0)
	if err != nil {
		t.Fatal(err)
	}
	wantX := 1.0 * (2.0 / 100000.0)
	if math.Abs(vel[0]-wantX) > 1e-12 {
		t.Errorf("velocity x: got %f, want %f", vel[0], wantX)
	}
}

// TestLoad_ChainedSummaryRecords exercises the FWARD linked-list walk across
// two summary records, each describing a distinct target.
func TestLoad_ChainedSummaryRecords(t *testing.T) {
	bo := binary.LittleEndian
	recs := [][3][2]float64{{{1.0, 0.0}, {2.0, 0.0}, {3.0, 0.0}}}
	dataA := encodeSegmentData(bo, 0.0, 1000.0, recs)
	dataB := encodeSegmentData(bo, 0.0, 1000.0, recs)

	// Layout: record 1 = file record, record 2 = summary record A (NEXT -> 3),
	// record 3 = summary record B (NEXT -> 0), record 4+ = data for A then B.
	dataAOffset := 3 * recordLen
	startIA := dataAOffset/8 + 1
	endIA := startIA + len(dataA)/8 - 1
	dataBOffset := dataAOffset + len(dataA)
	startIB := dataBOffset/8 + 1
	endIB := startIB + len(dataB)/8 - 1

	summaryA := encodeSummary(bo, 0.0, 1000.0, 199, 0, 2, startIA, endIA)
	summaryB := encodeSummary(bo, 0.0, 1000.0, 299, 0, 2, startIB, endIB)

	fileRec := encodeFileRecord(bo, 2, "LTL-IEEE")
	sumRecA := encodeSummaryRecord(bo, 3.0, [][]byte{summaryA})
	sumRecB := encodeSummaryRecord(bo, 0.0, [][]byte{summaryB})

	buf := append(append(append(append([]byte{}, fileRec...), sumRecA...), sumRecB...), dataA...)
	buf = append(buf, dataB...)
	path := writeKernel(t, buf)

	k, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Segments) != 2 {
		t.Fatalf("expected 2 segments across the chained summary records, got %d", len(k.Segments))
	}
	if !k.HasPair(199, 0) || !k.HasPair(299, 0) {
		t.Error("expected both chained segments to be loaded")
	}
}
