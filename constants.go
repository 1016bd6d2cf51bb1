package kcpp

// Protocol-wide defaults and bounds.
const (
	rtoNoDelay = 30    // minimum RTO while nodelay is enabled
	rtoNormal  = 100   // minimum RTO in normal (non-nodelay) mode
	rtoDefault = 200   // initial RTO before any RTT sample exists
	rtoMax     = 60000 // hard ceiling on RTO

	sndWndDefault = 32  // default send-window size, in segments
	rcvWndDefault = 128 // default and minimum receive-window size, in segments
	mtuDefault    = 1400

	intervalDefault = 100 // default flush cadence, in milliseconds
	intervalMin     = 10
	intervalMax     = 5000

	threshInit = 2 // initial slow-start threshold, in segments
	threshMin  = 2 // slow-start threshold floor

	deadLinkDefault  = 20     // transmit-count giveup threshold
	fastLimitDefault = 5      // stored per spec's control surface; no behavior keys off it, matching the reference implementation
	probeInit        = 7000   // initial window-probe backoff, in milliseconds
	probeLimit       = 120000 // window-probe backoff ceiling, in milliseconds

	clockJumpGuard = 10000 // |current - ts_flush| beyond this resets ts_flush
)
