// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"net"

	"github.com/pion/ecn-test/ecn"
)

// Middlebox is the ECN treatment of a simulated path.
type Middlebox string

const (
	// MiddleboxPass leaves ECN codepoints untouched.
	MiddleboxPass Middlebox = "pass"
	// MiddleboxBleach clears ECT codepoints to Not-ECT.
	MiddleboxBleach Middlebox = "bleach"
	// MiddleboxBlackHole drops ECT marked datagrams.
	MiddleboxBlackHole Middlebox = "blackhole"
	// MiddleboxRemarkECT1 rewrites every Nth ECT(0) datagram to ECT(1).
	MiddleboxRemarkECT1 Middlebox = "remark-ect1"
	// MiddleboxCongested marks every Nth ECT datagram as CE.
	MiddleboxCongested Middlebox = "congested"
)

func (m Middlebox) valid() bool {
	switch m {
	case MiddleboxPass, MiddleboxBleach, MiddleboxBlackHole, MiddleboxRemarkECT1, MiddleboxCongested:
		return true
	default:
		return false
	}
}

// pathModel applies a middlebox to the codepoints of the datagrams crossing it.
type pathModel struct {
	mode    Middlebox
	every   int
	ectSeen int
}

func newPathModel(mode Middlebox, every int) *pathModel {
	return &pathModel{mode: mode, every: max(every, 1)}
}

// apply returns the codepoint the datagram leaves the middlebox with and
// whether it is forwarded at all.
func (m *pathModel) apply(cp ecn.Codepoint) (ecn.Codepoint, bool) {
	if !cp.IsECT() {
		return cp, true
	}
	m.ectSeen++
	nth := m.ectSeen%m.every == 0

	switch m.mode {
	case MiddleboxBleach:
		return ecn.NotECT, true
	case MiddleboxBlackHole:
		return cp, false
	case MiddleboxRemarkECT1:
		if nth && cp == ecn.ECT0 {
			return ecn.ECT1, true
		}
	case MiddleboxCongested:
		if nth {
			return ecn.CE, true
		}
	case MiddleboxPass:
	}

	return cp, true
}

// middleboxConn sits between the sender and the network and applies the
// path model to every outgoing datagram.
type middleboxConn struct {
	net.PacketConn
	model *pathModel
}

func (c *middleboxConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	d, err := parseDatagram(p)
	if err != nil {
		return c.PacketConn.WriteTo(p, addr)
	}
	cp, forward := c.model.apply(d.Codepoint)
	if !forward {
		return len(p), nil
	}
	d.Codepoint = cp
	if _, err := c.PacketConn.WriteTo(appendDatagram(make([]byte, 0, len(p)), d), addr); err != nil {
		return 0, err
	}

	return len(p), nil
}
