// Package kcpp implements a reliable, ordered, connection-oriented
// message transport on top of an unreliable datagram substrate.
//
// It provides TCP-like delivery over a lossy medium such as UDP, with
// selective acknowledgement, fast retransmit, a tunable retransmission
// timer, optional stream mode, and an optional switch to disable
// congestion control entirely for low-latency interactive traffic. A
// Session owns one conversation's sliding-window sender, reassembly
// receiver, RTT estimator, congestion controller, and flush scheduler;
// callers drive it with Input, Send, Recv, Update and Check and supply
// the datagram I/O and clock as collaborators.
//
// Copyright © 2024 The kcpp Authors.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.
package kcpp // import "github.com/JUJUEZAIWAN/kcpp"

import (
	legal "go4.org/legal"
)

func init() {
	legal.RegisterLicense(
		"\nThe MIT License (MIT)\n\nCopyright © 2024 The kcpp Authors.\n\nPermission is hereby granted, free of charge, to any person obtaining a copy\nof this software and associated documentation files (the \"Software\"), to deal\nin the Software without restriction, including, without limitation, the rights\nto use, copy, modify, merge, publish, distribute, sub-license, and/or sell\ncopies of the Software, and to permit persons to whom the Software is\nfurnished to do so, subject to the following conditions:\n\nThe above copyright notice, and this permission notice, shall be\nincluded in all copies, or substantial portions, of the Software.\n\nTHE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR\nIMPLIED, INCLUDING, BUT NOT LIMITED TO, THE WARRANTIES OF MERCHANTABILITY,\nFITNESS FOR A PARTICULAR PURPOSE, AND NON-INFRINGEMENT. IN NO EVENT SHALL THE\nAUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES, OR OTHER\nLIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,\nOUT OF, OR IN CONNECTION WITH THE SOFTWARE, OR THE USE OR OTHER DEALINGS IN\nTHE SOFTWARE.\n",
	)
}
