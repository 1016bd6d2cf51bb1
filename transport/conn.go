package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/JUJUEZAIWAN/kcpp"
)

type errTimeout struct{ error }

func (errTimeout) Timeout() bool   { return true }
func (errTimeout) Temporary() bool { return true }
func (errTimeout) Error() string   { return "i/o timeout" }

const (
	errBrokenPipe = "broken pipe"
)

// Conn is a net.Conn backed by a kcpp.Session: a reliable, ordered
// byte stream multiplexed over one UDP socket. Dial, NewConn and
// Listener.Accept are the only ways to obtain one.
type Conn struct {
	sess   *kcpp.Session
	conn   net.PacketConn
	l      *Listener // set when accepted by a Listener, nil when dialed
	remote net.Addr

	recvbuf []byte
	bufptr  []byte

	rd, wd time.Time

	writeDelay bool

	die          chan struct{}
	chReadEvent  chan struct{}
	chWriteEvent chan struct{}
	chReadError  chan error
	chWriteError chan error

	closed bool
	mu     sync.Mutex
}

func newConn(conv uint32, l *Listener, conn net.PacketConn, remote net.Addr) *Conn {
	c := &Conn{
		conn:         conn,
		l:            l,
		remote:       remote,
		recvbuf:      make([]byte, mtuLimit),
		die:          make(chan struct{}),
		chReadEvent:  make(chan struct{}, 1),
		chWriteEvent: make(chan struct{}, 1),
		chReadError:  make(chan error, 1),
		chWriteError: make(chan error, 1),
	}
	c.sess = kcpp.NewSession(conv, c)
	c.sess.SetOutput(c.output)

	if c.l == nil {
		go c.readLoop()
		atomic.AddUint64(&DefaultStats.ActiveOpen, 1)
	} else {
		atomic.AddUint64(&DefaultStats.PassiveOpen, 1)
	}
	DefaultStats.established(1)
	go c.updateLoop()
	return c
}

// Session exposes the underlying protocol engine for callers that
// need configuration knobs (SetMTU, NoDelay, SetWndSize, ...) beyond
// what net.Conn's interface offers.
func (c *Conn) Session() *kcpp.Session { return c.sess }

func (c *Conn) Read(b []byte) (n int, err error) {
	for {
		c.mu.Lock()
		if len(c.bufptr) > 0 {
			n = copy(b, c.bufptr)
			c.bufptr = c.bufptr[n:]
			c.mu.Unlock()
			atomic.AddUint64(&DefaultStats.BytesReceived, uint64(n))
			return n, nil
		}
		if c.closed {
			c.mu.Unlock()
			return 0, errors.New(errBrokenPipe)
		}
		if size := c.sess.PeekSize(); size > 0 {
			if len(b) >= size {
				c.sess.Recv(b)
				c.mu.Unlock()
				atomic.AddUint64(&DefaultStats.BytesReceived, uint64(size))
				return size, nil
			}
			if cap(c.recvbuf) < size {
				c.recvbuf = make([]byte, size)
			}
			c.recvbuf = c.recvbuf[:size]
			c.sess.Recv(c.recvbuf)
			n = copy(b, c.recvbuf)
			c.bufptr = c.recvbuf[n:]
			c.mu.Unlock()
			atomic.AddUint64(&DefaultStats.BytesReceived, uint64(n))
			return n, nil
		}

		var timeout *time.Timer
		var tc <-chan time.Time
		if !c.rd.IsZero() {
			if time.Now().After(c.rd) {
				c.mu.Unlock()
				return 0, errTimeout{}
			}
			timeout = time.NewTimer(time.Until(c.rd))
			tc = timeout.C
		}
		c.mu.Unlock()

		select {
		case <-c.chReadEvent:
		case <-tc:
		case <-c.die:
		case err = <-c.chReadError:
			if timeout != nil {
				timeout.Stop()
			}
			return n, err
		}
		if timeout != nil {
			timeout.Stop()
		}
	}
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, errors.New(errBrokenPipe)
	}
	if ret := c.sess.Send(b); ret != 0 {
		c.mu.Unlock()
		return 0, errors.Errorf("kcpp: send rejected (too many fragments for the peer's window, ret=%d)", ret)
	}
	n = len(b)
	if !c.writeDelay {
		c.sess.Flush(currentMs())
	}
	c.mu.Unlock()
	atomic.AddUint64(&DefaultStats.BytesSent, uint64(n))
	return n, nil
}

// SetWriteDelay defers flushing a Write until the next update tick,
// letting several small writes coalesce into one datagram.
func (c *Conn) SetWriteDelay(delay bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeDelay = delay
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New(errBrokenPipe)
	}
	c.closed = true
	close(c.die)
	c.mu.Unlock()

	if c.l != nil {
		c.l.closeConn(c.remote)
	}
	DefaultStats.established(-1)
	if c.l == nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Conn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

func (c *Conn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rd, c.wd = t, t
	c.notifyRead()
	c.notifyWrite()
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rd = t
	c.notifyRead()
	return nil
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wd = t
	c.notifyWrite()
	return nil
}

func (c *Conn) notifyRead() {
	select {
	case c.chReadEvent <- struct{}{}:
	default:
	}
}

func (c *Conn) notifyWrite() {
	select {
	case c.chWriteEvent <- struct{}{}:
	default:
	}
}

func (c *Conn) output(buf []byte, size int) int {
	n, err := c.conn.WriteTo(buf[:size], c.remote)
	if err != nil {
		select {
		case c.chWriteError <- err:
		default:
		}
		return 0
	}
	atomic.AddUint64(&DefaultStats.OutputPackets, 1)
	return n
}

// packetInput feeds one datagram already identified as belonging to
// this Conn's conversation into its Session.
func (c *Conn) packetInput(data []byte) {
	c.mu.Lock()
	waitsnd := c.sess.WaitSndSize()
	if ret := c.sess.Input(data); ret != 0 {
		atomic.AddUint64(&DefaultStats.InputErrors, 1)
	}
	if c.sess.PeekSize() > 0 {
		c.notifyRead()
	}
	if c.sess.WaitSndSize() < waitsnd {
		c.notifyWrite()
	}
	c.mu.Unlock()
	atomic.AddUint64(&DefaultStats.InputPackets, 1)
}

// updateLoop drives Session.Update on the engine's own schedule,
// sleeping for whatever Check reports rather than polling on a fixed
// tick.
func (c *Conn) updateLoop() {
	for {
		now := currentMs()
		c.mu.Lock()
		c.sess.Update(now)
		next := c.sess.Check(now)
		c.mu.Unlock()

		wait := time.Duration(next-now) * time.Millisecond
		if wait <= 0 {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-c.die:
			timer.Stop()
			return
		}
	}
}
