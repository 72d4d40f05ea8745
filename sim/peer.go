// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pion/ecn-test/ecn"
	"github.com/pion/logging"
)

const peerPollInterval = 50 * time.Millisecond

// peer receives datagrams, counts their ECN codepoints and acknowledges every
// datagram immediately.
type peer struct {
	conn       net.PacketConn
	echoCounts bool
	counts     ecn.Count
	log        logging.LeveledLogger
}

func (p *peer) run(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := p.conn.SetReadDeadline(time.Now().Add(peerPollInterval)); err != nil {
			return err
		}
		n, addr, err := p.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		d, err := parseDatagram(buf[:n])
		if err != nil {
			p.log.Warnf("dropping datagram from %v: %v", addr, err)

			continue
		}
		p.counts.Increment(d.Codepoint)

		ack := ackFrame{Largest: d.Number}
		if p.echoCounts {
			counts := p.counts
			ack.ECN = &counts
		}
		if _, err = p.conn.WriteTo(appendAckFrame(nil, ack), addr); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}
	}
}
