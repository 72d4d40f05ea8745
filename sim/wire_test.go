// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"testing"

	"github.com/pion/ecn-test/ecn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatagram(t *testing.T) {
	d := datagram{Number: 1 << 20, Type: ecn.PacketTypeInitial, Codepoint: ecn.ECT0}

	got, err := parseDatagram(appendDatagram(nil, d))
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = parseDatagram([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, errShortDatagram)

	_, err = parseDatagram([]byte{0x01, 0x00, 0x04})
	assert.ErrorIs(t, err, errInvalidCodepoint)
}

func TestAckFrameEncoding(t *testing.T) {
	counts := ecn.NewCount(0, 300, 1, 70000)

	// type 0x03, largest 37, delay 0, range count 0, first range 0,
	// ECT0 300, ECT1 1, CE 70000.
	want := []byte{0x03, 0x25, 0x00, 0x00, 0x00, 0x41, 0x2c, 0x01, 0x80, 0x01, 0x11, 0x70}
	assert.Equal(t, want, appendAckFrame(nil, ackFrame{Largest: 37, ECN: &counts}))

	assert.Equal(t, []byte{0x02, 0x25, 0x00, 0x00, 0x00}, appendAckFrame(nil, ackFrame{Largest: 37}))
}

func TestParseAckFrame(t *testing.T) {
	counts := ecn.NewCount(0, 5, 0, 2)

	f, err := parseAckFrame(appendAckFrame(nil, ackFrame{Largest: 9, AckDelay: 3, FirstRange: 2, ECN: &counts}))
	require.NoError(t, err)
	assert.Equal(t, ecn.PacketNumber(9), f.Largest)
	assert.Equal(t, uint64(3), f.AckDelay)
	assert.Equal(t, uint64(2), f.FirstRange)
	require.NotNil(t, f.ECN)
	assert.Equal(t, counts, *f.ECN)

	f, err = parseAckFrame(appendAckFrame(nil, ackFrame{Largest: 9}))
	require.NoError(t, err)
	assert.Nil(t, f.ECN)

	// One additional ACK range (gap 1, length 0) before the counts.
	f, err = parseAckFrame([]byte{0x03, 0x0a, 0x00, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(t, ecn.NewCount(0, 2, 0, 1), *f.ECN)

	_, err = parseAckFrame([]byte{0x06, 0x00})
	assert.ErrorIs(t, err, errUnknownFrameType)

	_, err = parseAckFrame([]byte{0x03, 0x0a, 0x00, 0x00, 0x00, 0x02})
	assert.ErrorIs(t, err, errShortDatagram)
}
