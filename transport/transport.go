// Package transport demultiplexes UDP datagrams by remote address
// onto kcpp engines and drives each one's clock, the external
// collaborators kcpp.Session leaves to its caller: a datagram
// substrate, a clock source, and multi-session multiplexing.
package transport

import (
	"sync/atomic"
	"time"
)

// mtuLimit bounds the receive buffer used by every read loop in this
// package; it is not the engine's configured MTU.
const mtuLimit = 65536

const acceptBacklog = 256

var refTime = time.Now()

// currentMs is the millisecond clock every Conn in this package feeds
// to its Session's Update/Check/Flush; it is monotonic and has no
// relation to wall-clock time.
func currentMs() uint32 {
	return uint32(time.Since(refTime) / time.Millisecond)
}

// Stats aggregates counters for every Conn a process has opened, the
// demultiplexing-layer analogue of kcpp.Stats.
type Stats struct {
	ActiveOpen      uint64
	PassiveOpen     uint64
	NowEstablished  uint64
	InputPackets    uint64
	InputErrors     uint64
	OutputPackets   uint64
	BytesSent       uint64
	BytesReceived   uint64
}

// DefaultStats is the package-level Stats collector every Conn and
// Listener reports into, mirroring kcpp.DefaultStats.
var DefaultStats Stats

func (st *Stats) established(delta int64) {
	if delta > 0 {
		atomic.AddUint64(&st.NowEstablished, uint64(delta))
	} else {
		atomic.AddUint64(&st.NowEstablished, ^uint64(-delta-1))
	}
}
