// Command kcpp-echo demonstrates the transport package end to end: an
// echo server and a client that dials it, in one binary selected by
// -listen vs -dial.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/JUJUEZAIWAN/kcpp/transport"
)

func main() {
	listen := flag.String("listen", "", "address to listen on, e.g. 127.0.0.1:9079")
	dial := flag.String("dial", "", "address to dial, e.g. 127.0.0.1:9079")
	nodelay := flag.Bool("nodelay", true, "enable low-latency mode")
	mtu := flag.Int("mtu", 1400, "maximum transmission unit")
	flag.Parse()

	switch {
	case *listen != "":
		runEchoServer(*listen, *mtu, *nodelay)
	case *dial != "":
		runEchoClient(*dial, *mtu, *nodelay)
	default:
		log.Fatal("kcpp-echo: one of -listen or -dial is required")
	}
}

func runEchoServer(addr string, mtu int, nodelay bool) {
	l, err := transport.Listen(addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Printf("kcpp-echo: listening on %s", l.Addr())
	for {
		conn, err := l.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			return
		}
		c := conn.(*transport.Conn)
		configure(c, mtu, nodelay)
		go func() {
			defer c.Close()
			if _, err := io.Copy(c, c); err != nil {
				log.Printf("echo: %v", err)
			}
		}()
	}
}

func runEchoClient(addr string, mtu int, nodelay bool) {
	c, err := transport.Dial(addr)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer c.Close()
	configure(c, mtu, nodelay)

	go func() {
		if _, err := io.Copy(log.Writer(), c); err != nil && err != io.EOF {
			log.Printf("read: %v", err)
		}
	}()

	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Fatalf("stdin: %v", err)
		}
		if _, err := c.Write(buf[:n]); err != nil {
			log.Fatalf("write: %v", err)
		}
	}
}

func configure(c *transport.Conn, mtu int, nodelay bool) {
	c.Session().SetMTU(mtu)
	if nodelay {
		c.Session().NoDelay(1, 10, 2, false)
	}
}
