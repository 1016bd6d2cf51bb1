package kcpp

import (
	"encoding/binary"
	"testing"

	u "github.com/johnsonjh/leaktestfe"
)

// runEchoScenario drives two Sessions across sim for up to maxMessages
// ticked 20ms apart: the sender emits one 8-byte (index, timestamp)
// payload per tick, the receiver echoes it straight back, and the
// sender validates strict in-order delivery. It returns the average
// and maximum observed RTT in milliseconds.
func runEchoScenario(t *testing.T, sim *latencySimulator, sender, receiver *Session, maxMessages int) (avgRTT, maxRTT uint32) {
	t.Helper()

	sender.SetOutput(func(buf []byte, size int) int {
		sim.send(true, sender.current, buf[:size])
		return 0
	})
	receiver.SetOutput(func(buf []byte, size int) int {
		sim.send(false, receiver.current, buf[:size])
		return 0
	})

	var current uint32
	var nextSendAt uint32 = 20
	index := 0
	nextExpected := 0
	var sumRTT uint64
	count := 0

	buf := make([]byte, 2048)

	for tick := 0; ; tick++ {
		current += 1
		sender.Update(current)
		receiver.Update(current)

		for current >= nextSendAt {
			payload := make([]byte, 8)
			binary.LittleEndian.PutUint32(payload, uint32(index))
			binary.LittleEndian.PutUint32(payload[4:], current)
			index++
			nextSendAt += 20
			if ret := sender.Send(payload); ret != 0 {
				t.Fatalf("sender.Send returned %d", ret)
			}
		}

		for {
			data := sim.recv(false, current)
			if data == nil {
				break
			}
			receiver.Input(data)
		}
		for {
			data := sim.recv(true, current)
			if data == nil {
				break
			}
			sender.Input(data)
		}

		for {
			n := receiver.Recv(buf)
			if n < 0 {
				break
			}
			receiver.Send(buf[:n])
		}

		for {
			n := sender.Recv(buf)
			if n < 0 {
				break
			}
			sn := binary.LittleEndian.Uint32(buf)
			ts := binary.LittleEndian.Uint32(buf[4:])
			if int(sn) != nextExpected {
				t.Fatalf("out-of-order delivery: got sn=%d, want %d", sn, nextExpected)
			}
			nextExpected++
			rtt := current - ts
			sumRTT += uint64(rtt)
			count++
			if rtt > maxRTT {
				maxRTT = rtt
			}
		}

		if nextExpected >= maxMessages {
			break
		}
		if tick > 200000 {
			t.Fatalf("scenario did not converge after %d ticks (delivered %d/%d)", tick, nextExpected, maxMessages)
		}
	}

	if count > 0 {
		avgRTT = uint32(sumRTT / uint64(count))
	}
	return avgRTT, maxRTT
}

func TestLosslessEcho(t *testing.T) {
	defer u.Leakplug(t)

	sim := newLatencySimulator(0, 0, 0)
	sender := NewSession(0x11223344, nil)
	receiver := NewSession(0x11223344, nil)
	sender.SetWndSize(128, 128)
	receiver.SetWndSize(128, 128)
	sender.NoDelay(0, 10, 0, false)
	receiver.NoDelay(0, 10, 0, false)

	avg, _ := runEchoScenario(t, sim, sender, receiver, 1000)
	if avg > 40 {
		t.Fatalf("average RTT=%dms, want <= 40ms", avg)
	}
}

func TestLossyDefaultMode(t *testing.T) {
	defer u.Leakplug(t)

	sim := newLatencySimulator(10, 60, 125)
	sender := NewSession(0x11223344, nil)
	receiver := NewSession(0x11223344, nil)
	sender.SetWndSize(128, 128)
	receiver.SetWndSize(128, 128)
	sender.NoDelay(0, 10, 0, false)
	receiver.NoDelay(0, 10, 0, false)

	_, max := runEchoScenario(t, sim, sender, receiver, 1000)
	if max >= 2000 {
		t.Fatalf("maxRTT=%dms, want < 2000ms", max)
	}
}

func TestFastModeUnderLoss(t *testing.T) {
	defer u.Leakplug(t)

	sim := newLatencySimulator(10, 60, 125)
	sender := NewSession(0x11223344, nil)
	receiver := NewSession(0x11223344, nil)
	sender.SetWndSize(128, 128)
	receiver.SetWndSize(128, 128)
	sender.NoDelay(2, 10, 2, true)
	receiver.NoDelay(2, 10, 2, true)
	sender.SetMinRTO(10)
	receiver.SetMinRTO(10)

	avg, _ := runEchoScenario(t, sim, sender, receiver, 1000)
	if avg >= 200 {
		t.Fatalf("average RTT=%dms, want < 200ms", avg)
	}
}

func TestClockJumpGuardResetsFlushSchedule(t *testing.T) {
	defer u.Leakplug(t)

	s := NewSession(1, nil)
	s.SetOutput(func([]byte, int) int { return 0 })

	s.Update(1000)
	if s.tsFlush != 1000+intervalDefault {
		t.Fatalf("tsFlush=%d after seeding, want %d", s.tsFlush, 1000+intervalDefault)
	}

	// A large backward clock jump, well past clockJumpGuard: without the
	// guard, slap would stay negative until the clock caught back up
	// to the old tsFlush, and no flush would run in the meantime.
	var base uint32 = 1000
	var jump uint32 = clockJumpGuard + 5000
	current := base - jump
	s.Update(current)
	if s.tsFlush != current+intervalDefault {
		t.Fatalf("tsFlush=%d after backward clock jump, want reset to current+interval=%d", s.tsFlush, current+intervalDefault)
	}
}

func TestFastRetransmitBeforeRTO(t *testing.T) {
	defer u.Leakplug(t)

	a := NewSession(1, nil)
	b := NewSession(1, nil)
	a.SetWndSize(128, 128)
	b.SetWndSize(128, 128)
	a.NoDelay(0, 10, 2, false)
	b.NoDelay(0, 10, 2, false)

	dropSn := uint32(5)
	dropped := false

	a.SetOutput(func(buf []byte, size int) int {
		hdr := decodeHeader(buf)
		if hdr.cmd == cmdPush && hdr.sn == dropSn && !dropped {
			dropped = true
			return 0
		}
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

	var current uint32
	for i := 0; i < 21; i++ {
		a.Send([]byte{byte(i)})
	}

	var retransmitted bool
	for tick := 0; tick < 2000; tick++ {
		current += 1
		a.Update(current)
		b.Update(current)

		for i := range a.sndBuf {
			if a.sndBuf[i].sn == dropSn && a.sndBuf[i].xmit >= 2 {
				retransmitted = true
			}
		}
		if retransmitted {
			break
		}
	}

	if !retransmitted {
		t.Fatal("dropped segment was never fast-retransmitted")
	}
}
