// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

import "sync"

// Stats aggregates ECN validation results. A single Stats may be shared by
// the paths of many connections; all methods are safe for concurrent use and
// are no-ops on a nil receiver.
type Stats struct {
	mu sync.Mutex

	// pathValidation holds the live number of capable paths and the
	// cumulative number of failures per reason.
	pathValidation [numOutcomes]int64

	// txAcked holds the ECN counts of the last validated ACK per packet type.
	txAcked [numPacketTypes]Count
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	PathValidation map[ValidationOutcome]int64
	TxAcked        map[PacketType]Count
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{}
}

// PathValidation returns the counter for the given outcome.
func (s *Stats) PathValidation(o ValidationOutcome) int64 {
	if s == nil || int(o) >= numOutcomes {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pathValidation[o]
}

// TxAcked returns the ECN counts of the last validated ACK that acknowledged
// a packet of the given type.
func (s *Stats) TxAcked(pt PacketType) Count {
	if s == nil || int(pt) >= numPacketTypes {
		return Count{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txAcked[pt]
}

// Snapshot returns a consistent copy of all counters.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		PathValidation: make(map[ValidationOutcome]int64, numOutcomes),
		TxAcked:        make(map[PacketType]Count, numPacketTypes),
	}
	if s == nil {
		return snap
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ValidationOutcomes() {
		snap.PathValidation[o] = s.pathValidation[o]
	}
	for _, pt := range PacketTypes {
		snap.TxAcked[pt] = s.txAcked[pt]
	}

	return snap
}

func (s *Stats) addPathValidation(o ValidationOutcome, delta int64) {
	if s == nil || int(o) >= numOutcomes {
		return
	}
	s.mu.Lock()
	s.pathValidation[o] += delta
	s.mu.Unlock()
}

func (s *Stats) setTxAcked(pt PacketType, c Count) {
	if s == nil || int(pt) >= numPacketTypes {
		return
	}
	s.mu.Lock()
	s.txAcked[pt] = c
	s.mu.Unlock()
}
