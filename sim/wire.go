// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pion/ecn-test/ecn"
	"github.com/quic-go/quic-go/quicvarint"
)

const (
	frameTypeAck    = 0x02
	frameTypeAckECN = 0x03

	maxDatagramSize = 1500
)

var (
	errShortDatagram    = errors.New("datagram too short")
	errInvalidCodepoint = errors.New("invalid ECN codepoint")
	errUnknownFrameType = errors.New("unknown frame type")
)

// datagram is the simulated UDP payload. vnet carries no IP header, so the
// ECN codepoint travels in the payload.
type datagram struct {
	Number    ecn.PacketNumber
	Type      ecn.PacketType
	Codepoint ecn.Codepoint
}

func appendDatagram(b []byte, d datagram) []byte {
	b = quicvarint.Append(b, uint64(d.Number))

	return append(b, byte(d.Type), d.Codepoint.TOS())
}

func parseDatagram(b []byte) (datagram, error) {
	r := bytes.NewReader(b)
	pn, err := quicvarint.Read(r)
	if err != nil {
		return datagram{}, fmt.Errorf("packet number: %w", errShortDatagram)
	}
	pt, err := r.ReadByte()
	if err != nil {
		return datagram{}, fmt.Errorf("packet type: %w", errShortDatagram)
	}
	tos, err := r.ReadByte()
	if err != nil {
		return datagram{}, fmt.Errorf("codepoint: %w", errShortDatagram)
	}
	if tos > ecn.CE.TOS() {
		return datagram{}, errInvalidCodepoint
	}

	return datagram{
		Number:    ecn.PacketNumber(pn),
		Type:      ecn.PacketType(pt),
		Codepoint: ecn.CodepointFromTOS(tos),
	}, nil
}

// ackFrame is an RFC 9000 ACK frame acknowledging the packets from
// Largest-FirstRange to Largest. ECN is nil for frames of type 0x02.
type ackFrame struct {
	Largest    ecn.PacketNumber
	AckDelay   uint64
	FirstRange uint64
	ECN        *ecn.Count
}

func appendAckFrame(b []byte, f ackFrame) []byte {
	if f.ECN == nil {
		b = quicvarint.Append(b, frameTypeAck)
	} else {
		b = quicvarint.Append(b, frameTypeAckECN)
	}
	b = quicvarint.Append(b, uint64(f.Largest))
	b = quicvarint.Append(b, f.AckDelay)
	b = quicvarint.Append(b, 0) // ACK Range Count
	b = quicvarint.Append(b, f.FirstRange)
	if f.ECN != nil {
		b = quicvarint.Append(b, f.ECN.Get(ecn.ECT0))
		b = quicvarint.Append(b, f.ECN.Get(ecn.ECT1))
		b = quicvarint.Append(b, f.ECN.Get(ecn.CE))
	}

	return b
}

func parseAckFrame(b []byte) (ackFrame, error) {
	r := bytes.NewReader(b)
	readVarint := func(field string) (uint64, error) {
		v, err := quicvarint.Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = errShortDatagram
			}

			return 0, fmt.Errorf("ack frame %s: %w", field, err)
		}

		return v, nil
	}

	typ, err := readVarint("type")
	if err != nil {
		return ackFrame{}, err
	}
	if typ != frameTypeAck && typ != frameTypeAckECN {
		return ackFrame{}, fmt.Errorf("%w: %#x", errUnknownFrameType, typ)
	}

	var f ackFrame
	largest, err := readVarint("largest acknowledged")
	if err != nil {
		return ackFrame{}, err
	}
	f.Largest = ecn.PacketNumber(largest)
	if f.AckDelay, err = readVarint("delay"); err != nil {
		return ackFrame{}, err
	}
	rangeCount, err := readVarint("range count")
	if err != nil {
		return ackFrame{}, err
	}
	if f.FirstRange, err = readVarint("first range"); err != nil {
		return ackFrame{}, err
	}
	for i := uint64(0); i < rangeCount; i++ {
		if _, err = readVarint("gap"); err != nil {
			return ackFrame{}, err
		}
		if _, err = readVarint("range length"); err != nil {
			return ackFrame{}, err
		}
	}
	if typ == frameTypeAck {
		return f, nil
	}

	var counts [3]uint64
	for i, field := range []string{"ect0", "ect1", "ce"} {
		if counts[i], err = readVarint(field); err != nil {
			return ackFrame{}, err
		}
	}
	c := ecn.NewCount(0, counts[0], counts[1], counts[2])
	f.ECN = &c

	return f, nil
}
