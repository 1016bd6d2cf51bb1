package kcpp

// Send fragments buf into one or more segments and appends them to
// the send queue; Flush is what actually moves them onto the wire.
// It returns 0 on success or ErrFragmentLimit if buf would need more
// fragments than the receive-window ceiling allows the peer to ever
// reassemble.
func (s *Session) Send(buf []byte) int {
	if s.stream && len(s.sndQueue) > 0 {
		tail := &s.sndQueue[len(s.sndQueue)-1]
		if uint32(len(tail.data)) < s.mss {
			capacity := int(s.mss) - len(tail.data)
			extend := capacity
			if len(buf) < capacity {
				extend = len(buf)
			}
			old := len(tail.data)
			tail.data = tail.data[:old+extend]
			copy(tail.data[old:], buf[:extend])
			tail.frg = 0
			buf = buf[extend:]
		}
	}
	if len(buf) == 0 && s.stream {
		return 0
	}

	var count int
	if len(buf) <= int(s.mss) {
		count = 1
	} else {
		count = (len(buf) + int(s.mss) - 1) / int(s.mss)
	}
	if count >= int(rcvWndDefault) {
		return ErrFragmentLimit
	}
	if count == 0 {
		count = 1
	}

	for i := 0; i < count; i++ {
		size := len(buf)
		if size > int(s.mss) {
			size = int(s.mss)
		}
		seg := newSegment(size)
		copy(seg.data, buf[:size])
		if s.stream {
			seg.frg = 0
		} else {
			seg.frg = uint8(count - i - 1)
		}
		s.sndQueue = append(s.sndQueue, seg)
		buf = buf[size:]
	}
	return 0
}

// shrinkBuf keeps sndUna in sync with the send buffer's head: once a
// cumulative ack or a per-sn ack retires the front of sndBuf, sndUna
// advances to whatever is now at the front (or to sndNxt if the
// buffer has drained entirely).
func (s *Session) shrinkBuf() {
	if len(s.sndBuf) > 0 {
		s.sndUna = s.sndBuf[0].sn
	} else {
		s.sndUna = s.sndNxt
	}
}

// parseUna drops every send-buffer entry cumulatively acknowledged
// by una (the peer's smallest still-unacknowledged sn).
func (s *Session) parseUna(una uint32) {
	n := 0
	for n < len(s.sndBuf) && timeDiff(una, s.sndBuf[n].sn) > 0 {
		freeSegment(&s.sndBuf[n])
		n++
	}
	if n > 0 {
		s.sndBuf = removeFront(s.sndBuf, n)
	}
}

// parseAck retires the single send-buffer entry acknowledged by sn,
// if it is still outstanding and still within [sndUna, sndNxt).
func (s *Session) parseAck(sn uint32) {
	if timeDiff(sn, s.sndUna) < 0 || timeDiff(sn, s.sndNxt) >= 0 {
		return
	}
	for i := range s.sndBuf {
		seg := &s.sndBuf[i]
		if sn == seg.sn {
			seg.acked = true
			freeSegment(seg)
			s.sndBuf = append(s.sndBuf[:i], s.sndBuf[i+1:]...)
			return
		}
		if timeDiff(sn, seg.sn) < 0 {
			return
		}
	}
}

// parseFastack increments fastack on every still-outstanding segment
// older than the given sn, provided its own send was no later than
// ts; enough later-sn acks on an older segment is what eventually
// triggers fastResend ahead of that segment's own RTO.
func (s *Session) parseFastack(sn, ts uint32) {
	if timeDiff(sn, s.sndUna) < 0 || timeDiff(sn, s.sndNxt) >= 0 {
		return
	}
	for i := range s.sndBuf {
		seg := &s.sndBuf[i]
		if timeDiff(sn, seg.sn) < 0 {
			break
		}
		if sn != seg.sn && timeDiff(seg.ts, ts) <= 0 {
			seg.fastack++
		}
	}
}

// ackPush records an inbound PUSH's (sn, ts) for flushAck to echo
// back as an ACK on the next flush.
func (s *Session) ackPush(sn, ts uint32) {
	s.ackList = append(s.ackList, ackItem{sn: sn, ts: ts})
}

// moveQueueToBuf promotes as many queued segments as the effective
// window allows into the send buffer, stamping each with the sn,
// timestamp, and cumulative-ack field it will carry on the wire.
func (s *Session) moveQueueToBuf(current uint32) {
	window := minU32(s.sndWnd, s.rmtWnd)
	if !s.nocwnd {
		window = minU32(window, s.cc.cwnd)
	}
	n := 0
	for n < len(s.sndQueue) && timeDiff(s.sndNxt, s.sndUna+window) < 0 {
		seg := &s.sndQueue[n]
		seg.conv = s.conv
		seg.cmd = cmdPush
		seg.wnd = s.wndUnused()
		seg.ts = current
		seg.sn = s.sndNxt
		seg.una = s.rcvNxt
		seg.resendTS = current
		seg.rto = s.rtt.rto
		s.sndNxt++
		n++
	}
	if n > 0 {
		s.sndBuf = append(s.sndBuf, s.sndQueue[:n]...)
		s.sndQueue = removeFront(s.sndQueue, n)
	}
}
