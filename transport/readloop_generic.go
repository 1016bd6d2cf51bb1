//go:build !linux

package transport

import "sync/atomic"

func (c *Conn) readLoop() {
	buf := make([]byte, mtuLimit)
	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			c.chReadError <- err
			return
		}
		if n < minDatagramSize {
			atomic.AddUint64(&DefaultStats.InputErrors, 1)
			continue
		}
		c.packetInput(buf[:n])
	}
}

func (l *Listener) monitor() {
	buf := make([]byte, mtuLimit)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		if n < minDatagramSize {
			atomic.AddUint64(&DefaultStats.InputErrors, 1)
			continue
		}
		l.packetInput(buf[:n], from)
	}
}
