package kcpp

import (
	"container/list"
	"math/rand"
)

// delayedPacket is one datagram in flight inside latencySimulator,
// tagged with the clock reading at which it becomes deliverable.
type delayedPacket struct {
	data []byte
	due  uint32
}

// latencySimulator is a symmetric two-peer medium with configurable
// loss and jitter, used by the network-scenario tests to drive a pair
// of Sessions the way a real lossy link would.
type latencySimulator struct {
	current  uint32
	lossRate int
	rttMin   int
	rttMax   int

	toPeer1 list.List // datagrams in flight toward peer 1
	toPeer0 list.List // datagrams in flight toward peer 0

	r0, r1 *rand.Rand
}

func newLatencySimulator(lossRatePercent, rttMinMs, rttMaxMs int) *latencySimulator {
	return &latencySimulator{
		lossRate: lossRatePercent / 2,
		rttMin:   rttMinMs / 2,
		rttMax:   rttMaxMs / 2,
		r0:       rand.New(rand.NewSource(9)),
		r1:       rand.New(rand.NewSource(99)),
	}
}

// send queues data for delivery to the other peer; fromPeer0 selects
// the direction and which of the two random streams decides loss and
// delay (both directions share one loss rate and delay range). It
// returns false if the simulated link dropped the datagram.
func (s *latencySimulator) send(fromPeer0 bool, current uint32, data []byte) bool {
	s.current = current
	r := s.r1
	if fromPeer0 {
		r = s.r0
	}
	if r.Intn(100) < s.lossRate {
		return false
	}
	delay := s.rttMin
	if s.rttMax > s.rttMin {
		delay += r.Intn(s.rttMax - s.rttMin)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	pkt := &delayedPacket{data: cp, due: current + uint32(delay)}
	if fromPeer0 {
		s.toPeer1.PushBack(pkt)
	} else {
		s.toPeer0.PushBack(pkt)
	}
	return true
}

// recv pops the next datagram due for toPeer0 (if toPeer0 is true) or
// toPeer1, returning nil if nothing has arrived yet.
func (s *latencySimulator) recv(toPeer0 bool, current uint32) []byte {
	s.current = current
	queue := &s.toPeer1
	if toPeer0 {
		queue = &s.toPeer0
	}
	front := queue.Front()
	if front == nil {
		return nil
	}
	pkt := front.Value.(*delayedPacket)
	if s.current < pkt.due {
		return nil
	}
	queue.Remove(front)
	return pkt.data
}
