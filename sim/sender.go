// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/pion/ecn-test/ecn"
	elogging "github.com/pion/ecn-test/logging"
	"github.com/pion/logging"
)

// sender drives the ECN controller of one path. It sends one datagram at a
// time and waits for its acknowledgment; a datagram that is not acknowledged
// within the ACK timeout is declared lost.
type sender struct {
	id       int
	cfg      PathConfig
	conn     net.PacketConn
	peerAddr net.Addr
	info     *ecn.Info
	stats    *ecn.Stats
	events   io.Writer
	log      logging.LeveledLogger

	nextPN ecn.PacketNumber
	result PathResult
}

func (s *sender) run(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)
	for n := 0; n < s.cfg.Packets; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt := ecn.Packet{Number: s.nextPN, Type: ecn.PacketTypeShort}
		if n < s.cfg.InitialPackets {
			pkt.Type = ecn.PacketTypeInitial
		}
		s.nextPN++
		mark := s.info.ECNMark()
		pkt.ECT0 = mark == ecn.ECT0

		d := datagram{Number: pkt.Number, Type: pkt.Type, Codepoint: mark}
		if _, err := s.conn.WriteTo(appendDatagram(nil, d), s.peerAddr); err != nil {
			return err
		}
		s.info.OnPacketSent(1, s.stats)
		s.result.Sent++
		if pkt.ECT0 {
			s.result.Marked++
		}
		s.event(elogging.EventSent, pkt, mark)

		ack, err := s.awaitAck(pkt.Number, buf)
		switch {
		case err == nil:
			s.onAcked(pkt, ack)
		case isTimeout(err):
			s.onLost(pkt)
		default:
			return err
		}
	}

	return nil
}

// awaitAck reads until the ACK for pn arrives or the ACK timeout expires.
// ACKs for earlier packets arriving late are discarded.
func (s *sender) awaitAck(pn ecn.PacketNumber, buf []byte) (ackFrame, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.AckTimeout)); err != nil {
		return ackFrame{}, err
	}
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			return ackFrame{}, err
		}
		ack, err := parseAckFrame(buf[:n])
		if err != nil {
			s.log.Warnf("path %d: dropping invalid ACK: %v", s.id, err)

			continue
		}
		if ack.Largest != pn {
			s.log.Debugf("path %d: discarding late ACK for %d", s.id, ack.Largest)

			continue
		}

		return ack, nil
	}
}

func (s *sender) onAcked(pkt ecn.Packet, ack ackFrame) {
	s.result.Acked++
	if pkt.ECT0 {
		s.info.AckedECN()
	}
	if s.info.OnPacketsAcked([]ecn.Packet{pkt}, ack.ECN, s.stats) {
		s.result.CESignals++
		s.event(elogging.EventCE, pkt, ecn.CE)
	}
	s.event(elogging.EventAcked, pkt, s.info.ECNMark())
}

func (s *sender) onLost(pkt ecn.Packet) {
	s.result.Lost++
	if pkt.ECT0 {
		s.info.LostECN(pkt.Type, s.stats)
	}
	s.event(elogging.EventLost, pkt, s.info.ECNMark())
}

func (s *sender) event(kind elogging.EventKind, pkt ecn.Packet, cp ecn.Codepoint) {
	if s.events == nil {
		return
	}
	line := elogging.EventFormat(elogging.Event{
		Time:      time.Now(),
		Path:      s.id,
		Kind:      kind,
		Packet:    pkt,
		Codepoint: cp,
		State:     s.info.State(),
	})
	if _, err := io.WriteString(s.events, line); err != nil {
		s.log.Errorf("failed to write event: %v", err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
