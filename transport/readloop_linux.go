//go:build linux

package transport

import (
	"net"
	"sync/atomic"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const batchSize = 16

func (c *Conn) readLoop() {
	addr, _ := net.ResolveUDPAddr("udp", c.conn.LocalAddr().String())
	if addr.IP.To4() != nil {
		c.readLoopIPv4()
	} else {
		c.readLoopIPv6()
	}
}

func (c *Conn) readLoopIPv4() {
	msgs := make([]ipv4.Message, batchSize)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, mtuLimit)}
	}
	conn := ipv4.NewPacketConn(c.conn)
	for {
		count, err := conn.ReadBatch(msgs, 0)
		if err != nil {
			c.chReadError <- err
			return
		}
		for i := 0; i < count; i++ {
			msg := &msgs[i]
			if msg.N < minDatagramSize {
				atomic.AddUint64(&DefaultStats.InputErrors, 1)
				continue
			}
			c.packetInput(msg.Buffers[0][:msg.N])
		}
	}
}

func (c *Conn) readLoopIPv6() {
	msgs := make([]ipv6.Message, batchSize)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, mtuLimit)}
	}
	conn := ipv6.NewPacketConn(c.conn)
	for {
		count, err := conn.ReadBatch(msgs, 0)
		if err != nil {
			c.chReadError <- err
			return
		}
		for i := 0; i < count; i++ {
			msg := &msgs[i]
			if msg.N < minDatagramSize {
				atomic.AddUint64(&DefaultStats.InputErrors, 1)
				continue
			}
			c.packetInput(msg.Buffers[0][:msg.N])
		}
	}
}

func (l *Listener) monitor() {
	addr, _ := net.ResolveUDPAddr("udp", l.conn.LocalAddr().String())
	if addr.IP.To4() != nil {
		l.monitorIPv4()
	} else {
		l.monitorIPv6()
	}
}

func (l *Listener) monitorIPv4() {
	msgs := make([]ipv4.Message, batchSize)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, mtuLimit)}
	}
	conn := ipv4.NewPacketConn(l.conn)
	for {
		count, err := conn.ReadBatch(msgs, 0)
		if err != nil {
			return
		}
		for i := 0; i < count; i++ {
			msg := &msgs[i]
			if msg.N < minDatagramSize {
				atomic.AddUint64(&DefaultStats.InputErrors, 1)
				continue
			}
			l.packetInput(msg.Buffers[0][:msg.N], msg.Addr)
		}
	}
}

func (l *Listener) monitorIPv6() {
	msgs := make([]ipv6.Message, batchSize)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, mtuLimit)}
	}
	conn := ipv6.NewPacketConn(l.conn)
	for {
		count, err := conn.ReadBatch(msgs, 0)
		if err != nil {
			return
		}
		for i := 0; i < count; i++ {
			msg := &msgs[i]
			if msg.N < minDatagramSize {
				atomic.AddUint64(&DefaultStats.InputErrors, 1)
				continue
			}
			l.packetInput(msg.Buffers[0][:msg.N], msg.Addr)
		}
	}
}
