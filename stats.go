package kcpp

import (
	"fmt"
	"sync/atomic"
)

// Stats holds running totals across every Session that reports into
// it (DefaultStats, unless SetStats chose another Stats), updated with atomic adds from the engine's hot paths. It exists to
// give an operator a cheap, lock-free window into what the sliding
// window and congestion controller are doing without touching any
// Session's internal state directly.
type Stats struct {
	OutputSegments      uint64 // segments encoded onto the wire (data, ack, probe)
	InputSegments       uint64 // segments parsed out of inbound datagrams
	DuplicateSegments   uint64 // inbound PUSH segments dropped as duplicates or beyond the receive window
	RetransmitSegments  uint64 // total retransmissions (timeout + fast)
	TimeoutRetransmits  uint64 // retransmissions triggered by RTO expiry
	FastRetransmits     uint64 // retransmissions triggered by fastack threshold
	LostSegments        uint64 // segments inferred lost (RTO fired before ACK)
}

// DefaultStats accumulates counters for every Session in this process
// that SetStats has not redirected elsewhere, mirroring the teacher's package-level Snsi convention.
var DefaultStats Stats

func newStats() *Stats {
	return new(Stats)
}

// Snapshot returns a copy of s safe to read without further
// synchronization.
func (s *Stats) Snapshot() Stats {
	return Stats{
		OutputSegments:     atomic.LoadUint64(&s.OutputSegments),
		InputSegments:      atomic.LoadUint64(&s.InputSegments),
		DuplicateSegments:  atomic.LoadUint64(&s.DuplicateSegments),
		RetransmitSegments: atomic.LoadUint64(&s.RetransmitSegments),
		TimeoutRetransmits: atomic.LoadUint64(&s.TimeoutRetransmits),
		FastRetransmits:    atomic.LoadUint64(&s.FastRetransmits),
		LostSegments:       atomic.LoadUint64(&s.LostSegments),
	}
}

func (s *Stats) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf(
		"out=%d in=%d dup=%d resent=%d(timeout=%d fast=%d) lost=%d",
		snap.OutputSegments, snap.InputSegments, snap.DuplicateSegments,
		snap.RetransmitSegments, snap.TimeoutRetransmits, snap.FastRetransmits,
		snap.LostSegments,
	)
}
