// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

import "fmt"

const (
	// TestCount is the number of packets used for testing a path for ECN
	// capability.
	TestCount = 10

	// TestCountInitialPhase is the number of packets used for testing a path
	// while exchanging Initials. It is lower than TestCount so a path that
	// drops marked packets does not delay the handshake by TestCount PTOs.
	TestCountInitialPhase = 3
)

// ValidationError is the reason a path was found not to be ECN capable.
type ValidationError uint8

const (
	// BlackHole means ECN marked packets are dropped on the path.
	BlackHole ValidationError = iota
	// Bleaching means ECN marks are cleared or not echoed by the peer.
	Bleaching
	// ReceivedUnsentECT1 means the peer reported ECT(1) marks that were
	// never sent.
	ReceivedUnsentECT1
)

const numValidationErrors = 3

func (e ValidationError) String() string {
	switch e {
	case BlackHole:
		return "black-hole"
	case Bleaching:
		return "bleaching"
	case ReceivedUnsentECT1:
		return "received-unsent-ect1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ValidationOutcome keys the path validation counters in Stats.
type ValidationOutcome uint8

const (
	// OutcomeCapable counts paths currently validated as ECN capable.
	OutcomeCapable ValidationOutcome = iota
	outcomeNotCapable
)

const numOutcomes = 1 + numValidationErrors

// NotCapable returns the outcome for a path that failed validation.
func NotCapable(err ValidationError) ValidationOutcome {
	return outcomeNotCapable + ValidationOutcome(err)
}

// ValidationOutcomes lists every outcome.
func ValidationOutcomes() []ValidationOutcome {
	return []ValidationOutcome{
		OutcomeCapable,
		NotCapable(BlackHole),
		NotCapable(Bleaching),
		NotCapable(ReceivedUnsentECT1),
	}
}

// Err returns the failure reason and true for a not capable outcome.
func (o ValidationOutcome) Err() (ValidationError, bool) {
	if o == OutcomeCapable {
		return 0, false
	}

	return ValidationError(o - outcomeNotCapable), true
}

func (o ValidationOutcome) String() string {
	if err, ok := o.Err(); ok {
		return "not-capable(" + err.String() + ")"
	}

	return "capable"
}

// ValidationState is the ECN validation state of a path, see RFC 9000,
// Appendix A.4. It is one of Testing, Unknown, Failed or Capable.
type ValidationState interface {
	fmt.Stringer
	validationState()
}

// Testing means the path is being tested for ECN capability.
type Testing struct {
	// ProbesSent is the number of datagrams sent during the test.
	ProbesSent int
	// InitialProbesAcked is the number of ECT(0) marked packets acked
	// during the test.
	InitialProbesAcked int
	// InitialProbesLost is the number of ECT(0) marked Initial packets
	// declared lost during the test.
	InitialProbesLost int
}

// Unknown means testing has concluded but the capability is not yet known.
type Unknown struct{}

// Failed means the path is known to not be ECN capable. It is terminal.
type Failed struct {
	Err ValidationError
}

// Capable means the path is known to be ECN capable.
type Capable struct{}

func (Testing) validationState() {}
func (Unknown) validationState() {}
func (Failed) validationState()  {}
func (Capable) validationState() {}

func (t Testing) String() string {
	return fmt.Sprintf("testing(sent=%v, acked=%v, lost=%v)",
		t.ProbesSent, t.InitialProbesAcked, t.InitialProbesLost)
}

func (Unknown) String() string { return "unknown" }

func (f Failed) String() string { return "failed(" + f.Err.String() + ")" }

func (Capable) String() string { return "capable" }
