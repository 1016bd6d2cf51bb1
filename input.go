package kcpp

import "sync/atomic"

// Input parses zero or more segments out of one received datagram
// and feeds them into the Session: ACKs retire send-buffer entries
// and update the RTT estimate, PUSH segments are queued for
// reassembly, and WASK/WINS drive the window-probe control plane. It
// returns 0 on success, or one of ErrMalformed, ErrTruncated,
// ErrUnknownCmd.
//
// ACK round-trip times are measured against the clock reading from
// the most recent Update call; Input takes no clock of its own.
func (s *Session) Input(data []byte) int {
	if len(data) < headerSize {
		return ErrMalformed
	}

	prevUna := s.sndUna
	var maxack, latestTS uint32
	var sawAck bool

	var inSegs uint64
	for len(data) >= headerSize {
		hdr := decodeHeader(data)
		if hdr.conv != s.conv {
			return ErrMalformed
		}
		data = data[headerSize:]
		if uint32(len(data)) < hdr.len {
			return ErrTruncated
		}
		if hdr.cmd != cmdPush && hdr.cmd != cmdAck && hdr.cmd != cmdWask && hdr.cmd != cmdWins {
			return ErrUnknownCmd
		}

		s.rmtWnd = uint32(hdr.wnd)
		s.parseUna(hdr.una)
		s.shrinkBuf()

		switch hdr.cmd {
		case cmdAck:
			if timeDiff(s.current, hdr.ts) >= 0 {
				s.rtt.update(timeDiff(s.current, hdr.ts), s.interval)
			}
			s.parseAck(hdr.sn)
			s.shrinkBuf()
			if !sawAck || timeDiff(hdr.sn, maxack) > 0 {
				sawAck = true
				maxack = hdr.sn
				latestTS = hdr.ts
			}
		case cmdPush:
			repeat := true
			if timeDiff(hdr.sn, s.rcvNxt+s.rcvWnd) < 0 {
				s.ackPush(hdr.sn, hdr.ts)
				if timeDiff(hdr.sn, s.rcvNxt) >= 0 {
					seg := segment{
						conv: hdr.conv,
						cmd:  hdr.cmd,
						frg:  hdr.frg,
						wnd:  hdr.wnd,
						ts:   hdr.ts,
						sn:   hdr.sn,
						una:  hdr.una,
						data: data[:hdr.len],
					}
					repeat = s.checkDataRepeat(seg)
				}
			}
			if repeat {
				atomic.AddUint64(&s.stats.DuplicateSegments, 1)
			}
		case cmdWask:
			s.probe |= askSend
		case cmdWins:
			// no-op: rmtWnd is already captured above.
		}

		inSegs++
		data = data[hdr.len:]
	}
	atomic.AddUint64(&s.stats.InputSegments, inSegs)

	if sawAck {
		s.parseFastack(maxack, latestTS)
	}

	if !s.nocwnd && timeDiff(s.sndUna, prevUna) > 0 && s.cc.cwnd < s.rmtWnd {
		s.cc.growOnAck(s.rmtWnd, s.mss)
	}
	return 0
}
