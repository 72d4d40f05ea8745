// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

// Codepoint represents the ECN bits of an IP packet header.
type Codepoint uint8

const (
	// NotECT signals Non ECN-Capable Transport, Not-ECT.
	NotECT Codepoint = iota // 00

	// ECT1 signals ECN Capable Transport, ECT(1).
	ECT1 // 01

	// ECT0 signals ECN Capable Transport, ECT(0).
	ECT0 // 10

	// CE signals ECN Congestion Experienced, CE.
	CE // 11
)

const tosECNMask = 0b11

// CodepointFromTOS extracts the ECN codepoint from an IPv4 TOS or IPv6 traffic
// class byte.
func CodepointFromTOS(tos byte) Codepoint {
	return Codepoint(tos & tosECNMask)
}

// TOS returns the codepoint as the low two bits of a TOS byte.
func (c Codepoint) TOS() byte {
	return byte(c) & tosECNMask
}

// IsECT reports whether the codepoint is ECT(0) or ECT(1).
func (c Codepoint) IsECT() bool {
	return c == ECT0 || c == ECT1
}

func (c Codepoint) String() string {
	switch c {
	case NotECT:
		return "Not-ECT"
	case ECT1:
		return "ECT(1)"
	case ECT0:
		return "ECT(0)"
	case CE:
		return "CE"
	default:
		return "invalid"
	}
}
