package kcpp

import "sync/atomic"

// packer accumulates encoded segments into Session's scratch buffer,
// flushing to the output sink whenever the next segment would push
// the buffer past mtu. It's a small stateful helper rather than a
// Session method so flushAck/flushWindowProbe/flushData can share one
// in-flight cursor across the whole Flush call, matching the
// reference implementation's single residual buffer that carries
// over between stages.
type packer struct {
	s   *Session
	ptr []byte
}

func newPacker(s *Session) *packer {
	return &packer{s: s, ptr: s.buffer[s.reserved:]}
}

// room ensures the next `need` bytes fit before the buffer hits mtu,
// flushing the accumulated buffer first if they don't.
func (p *packer) room(need int) {
	size := len(p.s.buffer) - len(p.ptr)
	if size+need > int(p.s.mtu) {
		p.flush()
	}
}

func (p *packer) flush() {
	size := len(p.s.buffer) - len(p.ptr)
	if size > p.s.reserved {
		p.s.output(p.s.buffer, size)
	}
	p.ptr = p.s.buffer[p.s.reserved:]
}

func (p *packer) putHeader(seg *segment) {
	atomic.AddUint64(&p.s.stats.OutputSegments, 1)
	p.ptr = seg.encode(p.ptr)
}

func (p *packer) putSegment(seg *segment) {
	p.putHeader(seg)
	copy(p.ptr, seg.data)
	p.ptr = p.ptr[len(seg.data):]
}

// Flush packs and emits every pending ACK, window probe, and data
// segment this Session currently owes the wire. Update calls it on
// its own schedule; callers wanting to flush immediately (e.g. after
// an ACK-only Input with no-delay ack-now semantics) may call it
// directly, but only once Update has been called at least once.
func (s *Session) Flush(current uint32) {
	if !s.updated {
		return
	}
	p := newPacker(s)
	s.flushAck(p)
	s.updateProbe(current)
	s.flushWindowProbe(p)
	s.moveQueueToBuf(current)
	s.flushData(p, current)
	p.flush()
}

// flushAck packs one ACK segment per entry in the ack list, in
// arrival order, and clears the list.
func (s *Session) flushAck(p *packer) {
	var seg segment
	seg.conv = s.conv
	seg.cmd = cmdAck
	seg.wnd = s.wndUnused()
	seg.una = s.rcvNxt

	for _, ack := range s.ackList {
		p.room(headerSize)
		seg.sn, seg.ts = ack.sn, ack.ts
		p.putHeader(&seg)
	}
	s.ackList = s.ackList[:0]
}

// updateProbe runs the exponential window-probe backoff: once the
// peer has advertised a zero window, schedule an increasingly
// spaced-out WASK until it reopens.
func (s *Session) updateProbe(current uint32) {
	if s.rmtWnd == 0 {
		if s.probeWait == 0 {
			s.probeWait = probeInit
			s.tsProbe = current + s.probeWait
		} else if timeDiff(current, s.tsProbe) >= 0 {
			if s.probeWait < probeInit {
				s.probeWait = probeInit
			}
			s.probeWait += s.probeWait / 2
			if s.probeWait > probeLimit {
				s.probeWait = probeLimit
			}
			s.tsProbe = current + s.probeWait
			s.probe |= askSend
		}
	} else {
		s.tsProbe = 0
		s.probeWait = 0
	}
}

// flushWindowProbe packs a WASK and/or WINS control segment per the
// probe bitmask set by updateProbe or by an inbound WASK, then clears
// the mask.
func (s *Session) flushWindowProbe(p *packer) {
	var seg segment
	seg.conv = s.conv
	seg.wnd = s.wndUnused()
	seg.una = s.rcvNxt

	if s.probe&askSend != 0 {
		seg.cmd = cmdWask
		p.room(headerSize)
		p.putHeader(&seg)
	}
	if s.probe&askTell != 0 {
		seg.cmd = cmdWins
		p.room(headerSize)
		p.putHeader(&seg)
	}
	s.probe = 0
}

// flushData walks the send buffer, decides which segments need
// (re)transmission this round, packs them, and updates the
// congestion controller from what it observed.
func (s *Session) flushData(p *packer, current uint32) {
	resent := uint32(0xffffffff)
	if s.fastresend > 0 {
		resent = uint32(s.fastresend)
	}
	var rtomin uint32
	if !s.nodelay {
		rtomin = s.rtt.rto >> 3
	}

	var change, lost bool
	var lostCount, fastCount uint64

	for i := range s.sndBuf {
		seg := &s.sndBuf[i]
		needSend := false
		switch {
		case seg.xmit == 0:
			needSend = true
			seg.rto = s.rtt.rto
			seg.resendTS = current + seg.rto + rtomin
		case timeDiff(current, seg.resendTS) >= 0:
			needSend = true
			s.xmit++
			if !s.nodelay {
				seg.rto += maxU32(seg.rto, s.rtt.rto)
			} else {
				seg.rto += s.rtt.rto
			}
			seg.resendTS = current + seg.rto
			lost = true
			lostCount++
		case seg.fastack >= resent:
			needSend = true
			seg.fastack = 0
			seg.rto = s.rtt.rto
			seg.resendTS = current + seg.rto
			change = true
			fastCount++
		}

		if needSend {
			seg.xmit++
			seg.ts = current
			seg.wnd = s.wndUnused()
			seg.una = s.rcvNxt

			p.room(headerSize + len(seg.data))
			p.putSegment(seg)

			if seg.xmit >= s.deadLink {
				s.state = false
			}
		}
	}

	if lostCount+fastCount > 0 {
		atomic.AddUint64(&s.stats.RetransmitSegments, lostCount+fastCount)
	}
	if lostCount > 0 {
		atomic.AddUint64(&s.stats.TimeoutRetransmits, lostCount)
	}
	if fastCount > 0 {
		atomic.AddUint64(&s.stats.FastRetransmits, fastCount)
	}
	if lostCount > 0 {
		atomic.AddUint64(&s.stats.LostSegments, lostCount)
	}

	if s.nocwnd {
		return
	}
	windowCap := minU32(s.sndWnd, s.rmtWnd)
	windowCap = minU32(s.cc.cwnd, windowCap)
	if change {
		// change is only set via the fastack>=resent branch above,
		// which cannot trigger while resent holds the "disabled"
		// sentinel, so resent is a genuine small fastresend value here.
		inflight := s.sndNxt - s.sndUna
		s.cc.onFastRetransmit(inflight, s.mss, resent)
	}
	if lost {
		s.cc.onTimeoutLoss(windowCap, s.mss)
	}
	s.cc.floor(s.mss)
}
