package transport

import (
	"encoding/binary"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Listener accepts inbound Conns multiplexed by remote address over
// one shared net.PacketConn, the role gfcp_sess.go's Listener plays
// for GFCP. The first datagram from a new address supplies the conv
// of that address's Session; later datagrams from the same address
// go to that Session whatever conv they carry.
type Listener struct {
	conn      net.PacketConn
	conns     map[string]*Conn // keyed by remote addr string
	connsLock sync.Mutex

	chAccept chan *Conn
	die      chan struct{}

	rd, wd atomic.Value
}

// Listen listens for kcpp datagrams on laddr via "udp".
func Listen(laddr string) (*Listener, error) {
	udpaddr, err := net.ResolveUDPAddr("udp", laddr)
	if err != nil {
		return nil, errors.Wrap(err, "net.ResolveUDPAddr")
	}
	conn, err := net.ListenUDP("udp", udpaddr)
	if err != nil {
		return nil, errors.Wrap(err, "net.ListenUDP")
	}
	return ServeConn(conn)
}

// ServeConn starts demultiplexing an already-open net.PacketConn.
func ServeConn(conn net.PacketConn) (*Listener, error) {
	l := &Listener{
		conn:     conn,
		conns:    make(map[string]*Conn),
		chAccept: make(chan *Conn, acceptBacklog),
		die:      make(chan struct{}),
	}
	go l.monitor()
	return l, nil
}

// Accept waits for and returns the next inbound Conn.
func (l *Listener) Accept() (net.Conn, error) {
	var timeout <-chan time.Time
	if deadline, ok := l.rd.Load().(time.Time); ok && !deadline.IsZero() {
		timeout = time.After(time.Until(deadline))
	}
	select {
	case <-timeout:
		return nil, errTimeout{}
	case c := <-l.chAccept:
		return c, nil
	case <-l.die:
		return nil, errors.New(errBrokenPipe)
	}
}

func (l *Listener) Close() error {
	close(l.die)
	return l.conn.Close()
}

func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

func (l *Listener) SetDeadline(t time.Time) error {
	l.rd.Store(t)
	l.wd.Store(t)
	return nil
}

func (l *Listener) SetReadDeadline(t time.Time) error {
	l.rd.Store(t)
	return nil
}

func (l *Listener) SetWriteDeadline(t time.Time) error {
	l.wd.Store(t)
	return nil
}

func (l *Listener) closeConn(remote net.Addr) bool {
	l.connsLock.Lock()
	defer l.connsLock.Unlock()
	if _, ok := l.conns[remote.String()]; ok {
		delete(l.conns, remote.String())
		return true
	}
	return false
}

// packetInput demultiplexes one inbound datagram by remote address,
// creating a new Conn (and handing it to Accept) on the first packet
// from an unseen address, the same split gfcp_sess.go's
// Listener.packetInput makes between the accept backlog and already
// established sessions.
func (l *Listener) packetInput(data []byte, addr net.Addr) {
	l.connsLock.Lock()
	c, ok := l.conns[addr.String()]
	l.connsLock.Unlock()
	if ok {
		c.packetInput(data)
		return
	}

	if len(data) < minDatagramSize {
		atomic.AddUint64(&DefaultStats.InputErrors, 1)
		return
	}
	if len(l.chAccept) >= cap(l.chAccept) {
		return
	}
	conv := binary.LittleEndian.Uint32(data)
	c = newConn(conv, l, l.conn, addr)
	c.packetInput(data)

	l.connsLock.Lock()
	l.conns[addr.String()] = c
	l.connsLock.Unlock()
	l.chAccept <- c
}

// minDatagramSize is the wire header's fixed width; anything shorter
// cannot carry even an empty control segment.
const minDatagramSize = 24
