// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

import "fmt"

const numCodepoints = 4

// Count holds one counter per ECN codepoint.
//
// Count is used both for the counts a peer echoes in ACK frames and for the
// codepoints observed on received datagrams. ACK frames never carry a Not-ECT
// count, so that slot stays zero in the former case.
//
// See https://www.rfc-editor.org/rfc/rfc9000.html#section-19.3.2.
type Count struct {
	counts [numCodepoints]uint64
}

// slot maps a codepoint to its counter. Slots follow the IP bit order.
func slot(c Codepoint) int {
	return int(c.TOS())
}

// NewCount returns a Count from the four per-codepoint values. The argument
// order follows RFC 9000 and differs from the storage order.
func NewCount(notECT, ect0, ect1, ce uint64) Count {
	var c Count
	c.counts[slot(NotECT)] = notECT
	c.counts[slot(ECT0)] = ect0
	c.counts[slot(ECT1)] = ect1
	c.counts[slot(CE)] = ce

	return c
}

// Get returns the counter for the given codepoint.
func (c Count) Get(cp Codepoint) uint64 {
	return c.counts[slot(cp)]
}

// Increment bumps the counter for the given codepoint by one.
func (c *Count) Increment(cp Codepoint) {
	c.counts[slot(cp)]++
}

// IsSome reports whether any of the ECT(0), ECT(1) or CE counts are non-zero.
func (c Count) IsSome() bool {
	return c.Get(ECT0) > 0 || c.Get(ECT1) > 0 || c.Get(CE) > 0
}

// IsEmpty reports whether all counts, including Not-ECT, are zero.
func (c Count) IsEmpty() bool {
	for _, n := range c.counts {
		if n != 0 {
			return false
		}
	}

	return true
}

// Sub subtracts other from c per codepoint, saturating at zero.
func (c Count) Sub(other Count) Count {
	var diff Count
	for i := range c.counts {
		if c.counts[i] > other.counts[i] {
			diff.counts[i] = c.counts[i] - other.counts[i]
		}
	}

	return diff
}

func (c Count) String() string {
	return fmt.Sprintf("not-ect=%v, ect0=%v, ect1=%v, ce=%v",
		c.Get(NotECT), c.Get(ECT0), c.Get(ECT1), c.Get(CE))
}
