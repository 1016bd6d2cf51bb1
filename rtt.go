package kcpp

// rttEstimator tracks a smoothed RTT and its variance (a Jacobson/
// Karels estimator, the same recipe TCP uses) and derives the current
// retransmission timeout from them. It is embedded in Session rather
// than kept standalone because its only inputs and outputs are a
// handful of Session-owned scalars, but the update rule itself is
// self-contained.
type rttEstimator struct {
	srtt   int32
	rttval int32
	rto    uint32
	minRTO uint32
}

// update folds one RTT sample (in milliseconds) into the estimator
// and recomputes rto, clamped to [minRTO, rtoMax] and floored against
// interval so a fast link never drives the timer below one flush
// tick's worth of slack.
func (e *rttEstimator) update(rtt int32, interval uint32) {
	if e.srtt == 0 {
		e.srtt = rtt
		e.rttval = rtt / 2
	} else {
		delta := rtt - e.srtt
		if delta < 0 {
			delta = -delta
		}
		e.rttval = (3*e.rttval + delta) / 4
		e.srtt = (7*e.srtt + rtt) / 8
		if e.srtt < 1 {
			e.srtt = 1
		}
	}
	rto := uint32(e.srtt) + maxU32(interval, uint32(4*e.rttval))
	e.rto = boundU32(e.minRTO, rto, rtoMax)
}
