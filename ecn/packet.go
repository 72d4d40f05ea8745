// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

import "fmt"

// PacketNumber is a QUIC packet number. Packet numbers increase
// monotonically per connection.
type PacketNumber uint64

// PacketType distinguishes QUIC packet types.
type PacketType uint8

const (
	// PacketTypeInitial is a long header Initial packet.
	PacketTypeInitial PacketType = iota
	// PacketTypeHandshake is a long header Handshake packet.
	PacketTypeHandshake
	// PacketType0RTT is a long header 0-RTT packet.
	PacketType0RTT
	// PacketTypeShort is a short header 1-RTT packet.
	PacketTypeShort
)

const numPacketTypes = 4

// PacketTypes lists all packet types in order.
var PacketTypes = [numPacketTypes]PacketType{ //nolint:gochecknoglobals
	PacketTypeInitial,
	PacketTypeHandshake,
	PacketType0RTT,
	PacketTypeShort,
}

func (t PacketType) String() string {
	switch t {
	case PacketTypeInitial:
		return "initial"
	case PacketTypeHandshake:
		return "handshake"
	case PacketType0RTT:
		return "0rtt"
	case PacketTypeShort:
		return "short"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// A Packet stores what the controller needs to know about a sent packet.
type Packet struct {
	// Number is the packet number.
	Number PacketNumber

	// Type is the packet type.
	Type PacketType

	// ECT0 indicates the packet was sent with the ECT(0) codepoint.
	ECT0 bool
}

func (p Packet) String() string {
	return fmt.Sprintf("pn=%v, type=%v, ect0=%v", p.Number, p.Type, p.ECT0)
}
