package kcpp

// congestionController evolves the sender's congestion window using a
// slow-start/AIMD recipe modeled on TCP Reno, measured in segments
// rather than bytes for cwnd/ssthresh and in bytes for incr, which
// accumulates fractional segment growth during congestion avoidance
// so growth doesn't stall once cwnd is large. It is a no-op collaborator
// when Session.nocwnd is set — callers skip straight past it.
type congestionController struct {
	cwnd     uint32
	ssthresh uint32
	incr     uint32
}

func newCongestionController() congestionController {
	return congestionController{
		ssthresh: threshInit,
	}
}

// growOnAck grows cwnd after new data has been cumulatively
// acknowledged. Callers only invoke this when snd_una has advanced
// and cwnd is still below the peer's advertised window.
func (c *congestionController) growOnAck(rmtWnd, mss uint32) {
	if c.cwnd < c.ssthresh {
		c.cwnd++
		c.incr += mss
	} else {
		if c.incr < mss {
			c.incr = mss
		}
		c.incr += (mss*mss)/c.incr + mss/16
		if (c.cwnd+1)*mss <= c.incr {
			c.cwnd++
		}
	}
	if c.cwnd > rmtWnd {
		c.cwnd = rmtWnd
		c.incr = rmtWnd * mss
	}
}

// onFastRetransmit shrinks the window after a fast-retransmit round:
// halve the estimate of segments in flight and reopen to that plus
// the segments just resent, rather than collapsing to one segment.
func (c *congestionController) onFastRetransmit(inflight, mss, resent uint32) {
	c.ssthresh = maxU32(inflight/2, threshMin)
	c.cwnd = c.ssthresh + resent
	c.incr = c.cwnd * mss
}

// onTimeoutLoss collapses the window to one segment after an RTO
// fires, the classic TCP response to an inferred loss.
func (c *congestionController) onTimeoutLoss(windowCap, mss uint32) {
	c.ssthresh = maxU32(windowCap/2, threshMin)
	c.cwnd = 1
	c.incr = mss
}

// floor keeps cwnd from collapsing to zero and stalling the sender
// forever.
func (c *congestionController) floor(mss uint32) {
	if c.cwnd < 1 {
		c.cwnd = 1
		c.incr = mss
	}
}
