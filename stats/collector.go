// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stats

import (
	"github.com/pion/ecn-test/ecn"
	"github.com/prometheus/client_golang/prometheus"
)

// ACK frames only carry ECT(0), ECT(1) and CE counts.
var ackedCodepoints = []ecn.Codepoint{ecn.ECT0, ecn.ECT1, ecn.CE} //nolint:gochecknoglobals

// Collector exports an ecn.Stats table as Prometheus metrics.
type Collector struct {
	stats *ecn.Stats

	capable  *prometheus.Desc
	failures *prometheus.Desc
	txAcked  *prometheus.Desc
}

// NewCollector returns a collector reading from stats.
func NewCollector(stats *ecn.Stats) *Collector {
	return &Collector{
		stats: stats,
		capable: prometheus.NewDesc(
			"ecn_paths_capable",
			"Number of paths currently validated as ECN capable.",
			nil, nil,
		),
		failures: prometheus.NewDesc(
			"ecn_path_validation_failures_total",
			"Number of paths that failed ECN validation.",
			[]string{"reason"}, nil,
		),
		txAcked: prometheus.NewDesc(
			"ecn_tx_acked",
			"ECN counts of the last validated ACK frame.",
			[]string{"packet_type", "codepoint"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capable
	ch <- c.failures
	ch <- c.txAcked
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()

	for _, o := range ecn.ValidationOutcomes() {
		err, failed := o.Err()
		if !failed {
			ch <- prometheus.MustNewConstMetric(c.capable, prometheus.GaugeValue,
				float64(snap.PathValidation[o]))

			continue
		}
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue,
			float64(snap.PathValidation[o]), err.String())
	}

	for _, pt := range ecn.PacketTypes {
		count := snap.TxAcked[pt]
		for _, cp := range ackedCodepoints {
			ch <- prometheus.MustNewConstMetric(c.txAcked, prometheus.GaugeValue,
				float64(count.Get(cp)), pt.String(), cp.String())
		}
	}
}
