package kcpp

// Sentinel return codes for the protocol's hot-path operations. These
// mirror the ARQ algorithm's own int-return convention (see spec §7);
// application code that wants Go errors belongs above this layer, at
// the transport package's Dial/Listen/Accept boundary.
const (
	// ErrFragmentLimit is returned by Send when a message would
	// fragment into more pieces than the receive-window ceiling
	// permits.
	ErrFragmentLimit = -2

	// ErrEmpty is returned by Recv (and PeekSize) when the receive
	// queue is empty.
	ErrEmpty = -1

	// ErrIncomplete is returned by Recv (and PeekSize) when the
	// receive queue holds the start of a message but not yet all of
	// its fragments.
	ErrIncomplete = -2

	// ErrBufferTooSmall is returned by Recv when the caller's buffer
	// is smaller than the next complete message.
	ErrBufferTooSmall = -3

	// ErrMalformed is returned by Input when a datagram is shorter
	// than one header or carries a foreign conversation id.
	ErrMalformed = -1

	// ErrTruncated is returned by Input when a segment's declared
	// payload length exceeds the bytes remaining in the datagram.
	ErrTruncated = -2

	// ErrUnknownCmd is returned by Input when a segment's cmd byte is
	// not one of PUSH, ACK, WASK, WINS.
	ErrUnknownCmd = -3
)
