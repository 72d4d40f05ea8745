// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ecn implements ECN path validation for QUIC, see RFC 9000,
// Section 13.4 and Appendix A.4.
package ecn

import (
	"fmt"

	"github.com/pion/logging"
)

const loggerScope = "ecn"

// Info holds the ECN validation state of one network path.
//
// Info is not safe for concurrent use. It is driven from the serialized send
// and receive processing of the connection owning the path. A new path starts
// with a new Info.
type Info struct {
	log logging.LeveledLogger

	state ValidationState

	// largestAcked is the largest packet number acknowledged so far.
	largestAcked PacketNumber

	// baseline holds the ECN counts from the last ACK frame that increased
	// largestAcked.
	baseline Count
}

// NewInfo returns an Info in the Testing state.
func NewInfo(opts ...Option) (*Info, error) {
	info := &Info{
		log:   logging.NewDefaultLoggerFactory().NewLogger(loggerScope),
		state: Testing{},
	}
	for _, opt := range opts {
		if err := opt(info); err != nil {
			return nil, err
		}
	}

	return info, nil
}

// State returns the current validation state.
func (i *Info) State() ValidationState {
	return i.state
}

// Baseline returns the ECN counts of the last accepted ACK frame.
func (i *Info) Baseline() Count {
	return i.baseline
}

// SetBaseline sets the ECN counts of the last accepted ACK frame.
func (i *Info) SetBaseline(baseline Count) {
	i.baseline = baseline
}

// LargestAcked returns the largest packet number whose ACK was processed.
func (i *Info) LargestAcked() PacketNumber {
	return i.largestAcked
}

// setState moves to a new state and keeps stats in sync.
func (i *Info) setState(next ValidationState, stats *Stats) {
	prev := i.state
	if f, ok := prev.(Failed); ok {
		panic(fmt.Sprintf("ecn: transition from terminal state %v to %v", f, next))
	}
	i.state = next

	if _, ok := prev.(Capable); ok {
		stats.addPathValidation(OutcomeCapable, -1)
	}
	switch s := next.(type) {
	case Failed:
		stats.addPathValidation(NotCapable(s.Err), 1)
	case Capable:
		stats.addPathValidation(OutcomeCapable, 1)
	}
}

// OnPacketSent counts the datagrams sent during ECN validation and ends the
// test once TestCount probes have been sent.
//
// The RFC also ends the test 3 PTOs after it started. That is not done here
// since it concludes much too quickly.
func (i *Info) OnPacketSent(numDatagrams int, stats *Stats) {
	t, ok := i.state.(Testing)
	if !ok {
		return
	}
	t.ProbesSent += numDatagrams
	i.state = t
	i.log.Tracef("ECN probing: sent %d probes", t.ProbesSent)
	if t.ProbesSent >= TestCount {
		i.log.Debugf("ECN probing concluded with %d probes sent", t.ProbesSent)
		i.setState(Unknown{}, stats)
	}
}

// DisableECN marks the path as not ECN capable. It does nothing if the path
// has already failed.
func (i *Info) DisableECN(reason ValidationError, stats *Stats) {
	if _, ok := i.state.(Failed); ok {
		return
	}
	i.setState(Failed{Err: reason}, stats)
}

// AckedECN records that an ECT(0) marked packet was acknowledged.
func (i *Info) AckedECN() {
	if t, ok := i.state.(Testing); ok {
		t.InitialProbesAcked++
		i.state = t
	}
}

// LostECN records that an ECT(0) marked packet of the given type was
// declared lost. Losing TestCountInitialPhase Initial probes without any
// probe being acked fails the path as a black hole.
func (i *Info) LostECN(pt PacketType, stats *Stats) {
	if pt != PacketTypeInitial {
		return
	}
	t, ok := i.state.(Testing)
	if !ok {
		return
	}
	t.InitialProbesLost++
	i.state = t
	if t.InitialProbesAcked == 0 && t.InitialProbesLost == TestCountInitialPhase {
		i.log.Debugf("ECN validation failed, all %d initial marked packets were lost", t.InitialProbesLost)
		i.DisableECN(BlackHole, stats)
	}
}

// OnPacketsAcked processes the ECN counts of an ACK frame. acked holds the
// packets newly acknowledged by the frame, largest packet number first.
// ackECN is nil if the frame carried no ECN counts.
//
// It returns whether the counts report new CE marks on a capable path.
func (i *Info) OnPacketsAcked(acked []Packet, ackECN *Count, stats *Stats) bool {
	if len(acked) == 0 {
		return false
	}
	prevBaseline := i.baseline

	i.validateAndUpdate(acked, ackECN, stats)

	_, capable := i.state.(Capable)

	return capable && i.baseline.Sub(prevBaseline).Get(CE) > 0
}

func (i *Info) validateAndUpdate(acked []Packet, ackECN *Count, stats *Stats) {
	// RFC 9000, Section 13.4.2.1: an endpoint MUST NOT fail ECN validation as
	// a result of processing an ACK frame that does not increase the largest
	// acknowledged packet number.
	largest := acked[0]
	if largest.Number <= i.largestAcked {
		return
	}

	// RFC 9000, Appendix A.4: validation proceeds from the unknown and
	// capable states only.
	switch i.state.(type) {
	case Unknown, Capable:
	default:
		return
	}

	// If an ACK frame newly acknowledges a packet sent with ECT(0), validation
	// fails if the ECN counts are missing.
	if ackECN == nil {
		i.log.Warnf("ECN validation failed, no ECN counts in ACK frame")
		i.DisableECN(Bleaching, stats)

		return
	}
	counts := *ackECN
	stats.setTxAcked(largest.Type, counts)

	// Only ECT(0) is ever sent, so only ECT(0) needs checking.
	var ect0Acked uint64
	for _, p := range acked {
		if p.ECT0 {
			ect0Acked++
		}
	}
	if ect0Acked == 0 {
		i.log.Warnf("ECN validation failed, no ECT(0) packets were newly acked")
		i.DisableECN(Bleaching, stats)

		return
	}

	diff := counts.Sub(i.baseline)
	sumInc := diff.Get(ECT0) + diff.Get(CE)
	_, capable := i.state.(Capable)
	switch {
	case sumInc < ect0Acked:
		i.log.Warnf("ECN validation failed, ACK counted %d new marks, but %d of newly acked packets were sent with ECT(0)",
			sumInc, ect0Acked)
		i.DisableECN(Bleaching, stats)
	case diff.Get(ECT1) > 0:
		i.log.Warnf("ECN validation failed, ACK counted ECT(1) marks that were never sent")
		i.DisableECN(ReceivedUnsentECT1, stats)
	case !capable:
		i.log.Infof("ECN validation succeeded, path is capable")
		i.setState(Capable{}, stats)
	}
	i.baseline = counts
	i.largestAcked = largest.Number
}

// IsMarking reports whether outgoing packets are ECT(0) marked.
func (i *Info) IsMarking() bool {
	switch i.state.(type) {
	case Testing, Capable:
		return true
	default:
		return false
	}
}

// ECNMark returns the codepoint for the next outgoing datagram.
func (i *Info) ECNMark() Codepoint {
	if i.IsMarking() {
		return ECT0
	}

	return NotECT
}
