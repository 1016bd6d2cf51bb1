package kcpp

import (
	"testing"

	u "github.com/johnsonjh/leaktestfe"
)

func TestSegmentEncodeDecodeRoundTrip(t *testing.T) {
	defer u.Leakplug(t)

	seg := newSegment(5)
	seg.conv = 0x11223344
	seg.cmd = cmdPush
	seg.frg = 3
	seg.wnd = 128
	seg.ts = 123456
	seg.sn = 42
	seg.una = 40
	copy(seg.data, []byte("hello"))

	buf := make([]byte, headerSize+5)
	out := seg.encode(buf)
	if len(out) != len(seg.data) {
		t.Fatalf("encode left %d unused bytes, want %d (room for the payload)", len(out), len(seg.data))
	}
	copy(out, seg.data)

	hdr := decodeHeader(buf)
	if hdr.conv != seg.conv || hdr.cmd != seg.cmd || hdr.frg != seg.frg ||
		hdr.wnd != seg.wnd || hdr.ts != seg.ts || hdr.sn != seg.sn ||
		hdr.una != seg.una || hdr.len != uint32(len(seg.data)) {
		t.Fatalf("decoded header %+v does not match encoded segment", hdr)
	}
	if string(buf[headerSize:]) != "hello" {
		t.Fatalf("payload corrupted: %q", buf[headerSize:])
	}
}

func TestTimeDiffWraparound(t *testing.T) {
	defer u.Leakplug(t)

	if timeDiff(10, 5) != 5 {
		t.Fatal("plain forward difference failed")
	}
	if timeDiff(5, 10) != -5 {
		t.Fatal("plain backward difference failed")
	}
	// later wraps around 2^32; earlier is still logically before it.
	var later uint32 = 5
	var earlier uint32 = 0xfffffffe
	if d := timeDiff(later, earlier); d != 7 {
		t.Fatalf("wraparound difference = %d, want 7", d)
	}
}

func TestBoundU32(t *testing.T) {
	defer u.Leakplug(t)

	if got := boundU32(1, 5, 10); got != 5 {
		t.Fatalf("boundU32 in-range = %d, want 5", got)
	}
	if got := boundU32(1, 0, 10); got != 1 {
		t.Fatalf("boundU32 below-floor = %d, want 1", got)
	}
	if got := boundU32(1, 20, 10); got != 10 {
		t.Fatalf("boundU32 above-ceiling = %d, want 10", got)
	}
}
