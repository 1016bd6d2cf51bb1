package kcpp

import (
	"encoding/binary"
	"sync"
)

// Wire command bytes. A datagram is a concatenation of one or more
// [24-byte header | payload] segments; cmd selects how the payload
// following each header is interpreted.
const (
	cmdPush uint8 = 81 // push data
	cmdAck  uint8 = 82 // acknowledge a data sn
	cmdWask uint8 = 83 // window probe: "what is your window"
	cmdWins uint8 = 84 // window tell: "my window is"
)

// probe bitmask flags.
const (
	askSend uint32 = 1 // need to send cmdWask
	askTell uint32 = 2 // need to send cmdWins
)

// headerSize is the fixed wire size of a segment header, in bytes:
// conv(4) cmd(1) frg(1) wnd(2) ts(4) sn(4) una(4) len(4).
const headerSize = 24

// xmitPool recycles payload buffers backing outbound and reassembled
// segments so Send/Input don't allocate on every call.
var xmitPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, mtuLimit)
	},
}

// mtuLimit bounds the size of any buffer handed out by xmitPool; it
// must be at least as large as any mtu a caller configures.
const mtuLimit = 65536

// segment is one fragment of application data, carrying both the
// wire header fields and the sender-side retransmission bookkeeping
// that never crosses the wire. Segments are move-only: once appended
// to a container, a segment's data slice is owned by that container
// until it is explicitly released.
type segment struct {
	conv uint32
	cmd  uint8
	frg  uint8
	wnd  uint16
	ts   uint32
	sn   uint32
	una  uint32
	data []byte

	// Sender-side metadata; never serialized.
	rto      uint32
	resendTS uint32
	fastack  uint32
	xmit     uint32
	acked    bool
}

func newSegment(size int) segment {
	return segment{data: xmitPool.Get().([]byte)[:size]}
}

func freeSegment(seg *segment) {
	if seg.data != nil {
		xmitPool.Put(seg.data[:mtuLimit]) //nolint:staticcheck // restore full capacity before returning to the pool
		seg.data = nil
	}
}

// encode serializes the header fields (not the payload) into ptr,
// little-endian, and returns the remaining slice to write into.
func (seg *segment) encode(ptr []byte) []byte {
	binary.LittleEndian.PutUint32(ptr, seg.conv)
	ptr[4] = seg.cmd
	ptr[5] = seg.frg
	binary.LittleEndian.PutUint16(ptr[6:], seg.wnd)
	binary.LittleEndian.PutUint32(ptr[8:], seg.ts)
	binary.LittleEndian.PutUint32(ptr[12:], seg.sn)
	binary.LittleEndian.PutUint32(ptr[16:], seg.una)
	binary.LittleEndian.PutUint32(ptr[20:], uint32(len(seg.data)))
	return ptr[headerSize:]
}

// decodedHeader is a segment header freshly parsed off the wire,
// before its payload has been sliced off the remaining datagram.
type decodedHeader struct {
	conv uint32
	cmd  uint8
	frg  uint8
	wnd  uint16
	ts   uint32
	sn   uint32
	una  uint32
	len  uint32
}

// decodeHeader parses the fixed 24-byte header from the front of
// data. The caller must have already checked len(data) >= headerSize.
func decodeHeader(data []byte) decodedHeader {
	return decodedHeader{
		conv: binary.LittleEndian.Uint32(data),
		cmd:  data[4],
		frg:  data[5],
		wnd:  binary.LittleEndian.Uint16(data[6:]),
		ts:   binary.LittleEndian.Uint32(data[8:]),
		sn:   binary.LittleEndian.Uint32(data[12:]),
		una:  binary.LittleEndian.Uint32(data[16:]),
		len:  binary.LittleEndian.Uint32(data[20:]),
	}
}

// timeDiff compares two 32-bit millisecond timestamps (or sequence
// numbers) under wraparound using signed-difference arithmetic: the
// result is negative iff later logically precedes earlier.
func timeDiff(later, earlier uint32) int32 {
	return int32(later - earlier)
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func boundU32(lower, middle, upper uint32) uint32 {
	return minU32(maxU32(lower, middle), upper)
}
