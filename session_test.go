package kcpp

import (
	"bytes"
	"testing"

	u "github.com/johnsonjh/leaktestfe"
)

// loopback wires two Sessions' outputs directly into each other's
// Input with no loss or delay, for tests that only care about
// engine mechanics such as fragmentation and not the network.
func loopback(a, b *Session) {
	a.SetOutput(func(buf []byte, size int) int {
		cp := make([]byte, size)
		copy(cp, buf[:size])
		b.Input(cp)
		return 0
	})
	b.SetOutput(func(buf []byte, size int) int {
		cp := make([]byte, size)
		copy(cp, buf[:size])
		a.Input(cp)
		return 0
	})
}

func TestFragmentationRoundTrip(t *testing.T) {
	defer u.Leakplug(t)

	a := NewSession(1, nil)
	b := NewSession(1, nil)
	loopback(a, b)

	msg := bytes.Repeat([]byte("x"), int(a.mss)*3+17)
	if ret := a.Send(msg); ret != 0 {
		t.Fatalf("Send returned %d", ret)
	}

	var current uint32
	for i := 0; i < 200; i++ {
		current += 10
		a.Update(current)
		b.Update(current)
		if b.PeekSize() == len(msg) {
			break
		}
	}

	got := make([]byte, len(msg)+64)
	n := b.Recv(got)
	if n != len(msg) {
		t.Fatalf("Recv returned %d, want %d", n, len(msg))
	}
	if !bytes.Equal(got[:n], msg) {
		t.Fatal("payload corrupted across fragmentation round trip")
	}
}

func TestStreamModeCoalescesSmallSends(t *testing.T) {
	defer u.Leakplug(t)

	a := NewSession(1, nil)
	a.SetStream(true)
	a.SetOutput(func([]byte, int) int { return 0 })

	a.Send([]byte("abc"))
	a.Send([]byte("def"))

	if len(a.sndQueue) != 1 {
		t.Fatalf("stream mode left %d queued segments, want 1", len(a.sndQueue))
	}
	if a.sndQueue[0].frg != 0 {
		t.Fatalf("coalesced segment has frg=%d, want 0", a.sndQueue[0].frg)
	}
	if string(a.sndQueue[0].data) != "abcdef" {
		t.Fatalf("coalesced payload = %q, want %q", a.sndQueue[0].data, "abcdef")
	}
}

func TestFragmentLimitRejectsOversizedMessage(t *testing.T) {
	defer u.Leakplug(t)

	a := NewSession(1, nil)
	a.SetOutput(func([]byte, int) int { return 0 })

	huge := make([]byte, int(a.mss)*int(rcvWndDefault)+1)
	if ret := a.Send(huge); ret != ErrFragmentLimit {
		t.Fatalf("Send(huge) = %d, want ErrFragmentLimit", ret)
	}
}

func TestSetStatsIsolatesFromDefault(t *testing.T) {
	defer u.Leakplug(t)

	before := DefaultStats.Snapshot().OutputSegments

	isolated := newStats()
	a := NewSession(1, nil)
	a.SetStats(isolated)
	a.SetOutput(func([]byte, int) int { return 0 })
	a.Send([]byte("hi"))
	a.Update(0)

	if isolated.Snapshot().OutputSegments == 0 {
		t.Fatal("isolated Stats saw no output segments")
	}
	if DefaultStats.Snapshot().OutputSegments != before {
		t.Fatal("SetStats did not redirect counters away from DefaultStats")
	}
}

func TestDuplicateInputSuppressed(t *testing.T) {
	defer u.Leakplug(t)

	a := NewSession(1, nil)
	b := NewSession(1, nil)

	var captured []byte
	a.SetOutput(func(buf []byte, size int) int {
		captured = append([]byte(nil), buf[:size]...)
		return 0
	})
	b.SetOutput(func([]byte, int) int { return 0 })

	a.Send([]byte("hello"))
	a.Update(0)

	if len(captured) == 0 {
		t.Fatal("no datagram captured from first flush")
	}

	before := b.Stats().Snapshot().DuplicateSegments
	b.Input(captured)
	b.Input(captured)
	after := b.Stats().Snapshot().DuplicateSegments

	if after != before+1 {
		t.Fatalf("duplicate count grew by %d, want 1", after-before)
	}

	rcvNxtBefore := b.rcvNxt
	b.Input(captured)
	if b.rcvNxt != rcvNxtBefore {
		t.Fatal("rcv_nxt changed on a replayed datagram")
	}
}
