// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package feedback derives cumulative ECN counts from RTP congestion control
// feedback (RFC 8888).
package feedback

import (
	"sync"

	"github.com/pion/ecn-test/ecn"
	"github.com/pion/rtcp"
)

const (
	seqSpace   = 1 << 16
	seqHalf    = seqSpace / 2
	bitsPerRow = 64
)

// seqWindow remembers which sequence numbers of one stream were counted.
// Counting a sequence number forgets the one half the sequence space away,
// so numbers can be counted again after wrapping.
type seqWindow [seqSpace / bitsPerRow]uint64

func (w *seqWindow) testAndSet(seq uint16) bool {
	row, bit := seq/bitsPerRow, uint64(1)<<(seq%bitsPerRow)
	if w[row]&bit != 0 {
		return true
	}
	w[row] |= bit

	stale := seq + seqHalf
	w[stale/bitsPerRow] &^= uint64(1) << (stale % bitsPerRow)

	return false
}

// Counter accumulates ECN counts from congestion control feedback reports.
// Reports may overlap; every (SSRC, sequence number) is counted once.
// Counter is safe for concurrent use.
type Counter struct {
	mu      sync.Mutex
	count   ecn.Count
	streams map[uint32]*seqWindow
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		streams: map[uint32]*seqWindow{},
	}
}

// AddReport counts the ECN codepoints of all packets the report marks as
// received. It returns the number of newly counted packets.
func (c *Counter) AddReport(report *rtcp.CCFeedbackReport) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, block := range report.ReportBlocks {
		window, ok := c.streams[block.MediaSSRC]
		if !ok {
			window = &seqWindow{}
			c.streams[block.MediaSSRC] = window
		}
		for i, metric := range block.MetricBlocks {
			if !metric.Received {
				continue
			}
			seq := block.BeginSequence + uint16(i) //nolint:gosec
			if window.testAndSet(seq) {
				continue
			}
			c.count.Increment(ecn.Codepoint(metric.ECN))
			added++
		}
	}

	return added
}

// Count returns the cumulative counts.
func (c *Counter) Count() ecn.Count {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}
