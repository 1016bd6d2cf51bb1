package transport

import (
	"crypto/rand"
	"encoding/binary"
	"net"

	"github.com/pkg/errors"
)

// Dial connects to raddr over "udp", picking a random conversation id.
func Dial(raddr string) (*Conn, error) {
	udpaddr, err := net.ResolveUDPAddr("udp", raddr)
	if err != nil {
		return nil, errors.Wrap(err, "net.ResolveUDPAddr")
	}
	network := "udp4"
	if udpaddr.IP.To4() == nil {
		network = "udp"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, errors.Wrap(err, "net.ListenUDP")
	}
	return NewConn(raddr, conn)
}

// NewConn establishes a Conn talking kcpp over an already-open packet
// connection.
func NewConn(raddr string, conn net.PacketConn) (*Conn, error) {
	udpaddr, err := net.ResolveUDPAddr("udp", raddr)
	if err != nil {
		return nil, errors.Wrap(err, "net.ResolveUDPAddr")
	}
	var conv uint32
	if err := binary.Read(rand.Reader, binary.LittleEndian, &conv); err != nil {
		return nil, errors.Wrap(err, "crypto/rand")
	}
	return newConn(conv, nil, conn, udpaddr), nil
}
