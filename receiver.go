package kcpp

// wndUnused reports how many more segments the receive queue has
// room for before it hits rcvWnd; this is what gets advertised on
// the wire as a segment's wnd field.
func (s *Session) wndUnused() uint16 {
	if len(s.rcvQueue) < int(s.rcvWnd) {
		return uint16(int(s.rcvWnd) - len(s.rcvQueue))
	}
	return 0
}

// advanceReceive slides the contiguous prefix of the receive buffer
// starting at rcvNxt into the receive queue, incrementing rcvNxt for
// each segment moved, as long as the receive queue still has room.
func (s *Session) advanceReceive() {
	n := 0
	for n < len(s.rcvBuf) && s.rcvBuf[n].sn == s.rcvNxt && len(s.rcvQueue) < int(s.rcvWnd) {
		s.rcvNxt++
		n++
	}
	if n > 0 {
		s.rcvQueue = append(s.rcvQueue, s.rcvBuf[:n]...)
		s.rcvBuf = removeFront(s.rcvBuf, n)
	}
}

// checkDataRepeat drops seg if it falls outside [rcvNxt, rcvNxt+
// rcvWnd) or duplicates an sn already buffered; otherwise it inserts
// seg in sn order and slides whatever is now contiguous into the
// receive queue. It reports whether seg was dropped, either as a
// duplicate or as outside the window.
func (s *Session) checkDataRepeat(seg segment) bool {
	sn := seg.sn
	if timeDiff(sn, s.rcvNxt+s.rcvWnd) >= 0 || timeDiff(sn, s.rcvNxt) < 0 {
		return true
	}

	n := len(s.rcvBuf) - 1
	insertAt := 0
	repeat := false
	for i := n; i >= 0; i-- {
		if s.rcvBuf[i].sn == sn {
			repeat = true
			break
		}
		if timeDiff(sn, s.rcvBuf[i].sn) > 0 {
			insertAt = i + 1
			break
		}
	}

	if !repeat {
		stored := xmitPool.Get().([]byte)[:len(seg.data)]
		copy(stored, seg.data)
		seg.data = stored
		if insertAt == n+1 {
			s.rcvBuf = append(s.rcvBuf, seg)
		} else {
			s.rcvBuf = append(s.rcvBuf, segment{})
			copy(s.rcvBuf[insertAt+1:], s.rcvBuf[insertAt:])
			s.rcvBuf[insertAt] = seg
		}
	}

	s.advanceReceive()
	return repeat
}

// PeekSize reports the byte length of the next complete message
// waiting in the receive queue, or ErrEmpty if the queue holds
// nothing, or ErrIncomplete if the queue's head message has not yet
// had all of its fragments arrive.
func (s *Session) PeekSize() int {
	if len(s.rcvQueue) == 0 {
		return ErrEmpty
	}
	head := &s.rcvQueue[0]
	if head.frg == 0 {
		return len(head.data)
	}
	if len(s.rcvQueue) < int(head.frg)+1 {
		return ErrIncomplete
	}
	length := 0
	for i := range s.rcvQueue {
		seg := &s.rcvQueue[i]
		length += len(seg.data)
		if seg.frg == 0 {
			break
		}
	}
	return length
}

// Recv drains the next complete message from the receive queue into
// buf, returning its length, or ErrEmpty, ErrIncomplete, or
// ErrBufferTooSmall. When it drains a queue that had reached rcvWnd
// back below it, it flags the peer (via the next flush)
// that our window has reopened.
func (s *Session) Recv(buf []byte) int {
	if len(s.rcvQueue) == 0 {
		return ErrEmpty
	}
	peekSize := s.PeekSize()
	if peekSize < 0 {
		return ErrIncomplete
	}
	if peekSize > len(buf) {
		return ErrBufferTooSmall
	}

	wasOverfull := len(s.rcvQueue) >= int(s.rcvWnd)

	n := 0
	written := 0
	for i := range s.rcvQueue {
		seg := &s.rcvQueue[i]
		copy(buf[written:], seg.data)
		written += len(seg.data)
		n++
		freeSegment(seg)
		if seg.frg == 0 {
			break
		}
	}
	if n > 0 {
		s.rcvQueue = removeFront(s.rcvQueue, n)
	}

	s.advanceReceive()

	if len(s.rcvQueue) < int(s.rcvWnd) && wasOverfull {
		s.probe |= askTell
	}
	return written
}
