// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package logging

import (
	"fmt"
	"time"

	"github.com/pion/ecn-test/ecn"
)

// EventKind names what happened to a packet.
type EventKind string

// Event kinds written to the event log.
const (
	EventSent  EventKind = "sent"
	EventAcked EventKind = "acked"
	EventLost  EventKind = "lost"
	EventCE    EventKind = "ce"
)

// Event is one line of the simulator event log.
type Event struct {
	Time      time.Time
	Path      int
	Kind      EventKind
	Packet    ecn.Packet
	Codepoint ecn.Codepoint
	State     ecn.ValidationState
}

// EventFormat formats an event as a CSV line:
// unix millis, path, kind, packet number, packet type, codepoint, state.
func EventFormat(e Event) string {
	state := ""
	if e.State != nil {
		state = e.State.String()
	}

	return fmt.Sprintf("%v, %v, %v, %v, %v, %v, %q\n",
		e.Time.UnixMilli(),
		e.Path,
		e.Kind,
		e.Packet.Number,
		e.Packet.Type,
		e.Codepoint,
		state,
	)
}
