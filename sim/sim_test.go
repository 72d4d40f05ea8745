// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pion/ecn-test/ecn"
	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenario(t *testing.T, name string, opts ...Option) []PathResult {
	t.Helper()

	s, err := LoadScenario(name)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts = append([]Option{LoggerFactory(logging.NewDefaultLoggerFactory())}, opts...)
	results, err := Run(ctx, s, opts...)
	require.NoError(t, err)
	require.Len(t, results, len(s.Paths))

	return results
}

func TestRunScenarios(t *testing.T) {
	for _, test := range []struct {
		scenario string
		want     PathResult
	}{
		{
			scenario: "clean",
			want: PathResult{
				Middlebox: MiddleboxPass, State: ecn.Capable{},
				Sent: 20, Marked: 20, Acked: 20,
			},
		},
		{
			scenario: "bleaching",
			want: PathResult{
				Middlebox: MiddleboxBleach, State: ecn.Failed{Err: ecn.Bleaching},
				Sent: 20, Marked: 10, Acked: 20,
			},
		},
		{
			scenario: "no_echo",
			want: PathResult{
				Middlebox: MiddleboxPass, State: ecn.Failed{Err: ecn.Bleaching},
				Sent: 20, Marked: 10, Acked: 20,
			},
		},
		{
			scenario: "blackhole",
			want: PathResult{
				Middlebox: MiddleboxBlackHole, State: ecn.Failed{Err: ecn.BlackHole},
				Sent: 12, Marked: 3, Acked: 9, Lost: 3,
			},
		},
		{
			scenario: "remark_ect1",
			want: PathResult{
				Middlebox: MiddleboxRemarkECT1, State: ecn.Failed{Err: ecn.ReceivedUnsentECT1},
				Sent: 20, Marked: 10, Acked: 20,
			},
		},
		{
			scenario: "congested",
			want: PathResult{
				Middlebox: MiddleboxCongested, State: ecn.Capable{},
				Sent: 20, Marked: 20, Acked: 20, CESignals: 3,
			},
		},
	} {
		t.Run(test.scenario, func(t *testing.T) {
			stats := ecn.NewStats()
			results := runScenario(t, test.scenario, Stats(stats))

			assert.Equal(t, test.want, results[0])

			if failed, ok := test.want.State.(ecn.Failed); ok {
				assert.Equal(t, int64(1), stats.PathValidation(ecn.NotCapable(failed.Err)))
				assert.Equal(t, int64(0), stats.PathValidation(ecn.OutcomeCapable))
			} else {
				assert.Equal(t, int64(1), stats.PathValidation(ecn.OutcomeCapable))
			}
		})
	}
}

func TestRunMigration(t *testing.T) {
	stats := ecn.NewStats()
	var events bytes.Buffer

	results := runScenario(t, "migration", Stats(stats), EventLog(&events))

	assert.Equal(t, ecn.Failed{Err: ecn.BlackHole}, results[0].State)
	assert.Equal(t, ecn.Capable{}, results[1].State)
	assert.Equal(t, 1, results[1].Path)
	assert.Equal(t, 20, results[1].Marked)

	assert.Equal(t, int64(1), stats.PathValidation(ecn.OutcomeCapable))
	assert.Equal(t, int64(1), stats.PathValidation(ecn.NotCapable(ecn.BlackHole)))
	assert.Equal(t, ecn.NewCount(0, 20, 0, 0), stats.TxAcked(ecn.PacketTypeShort))

	lines := strings.Split(strings.TrimSpace(events.String()), "\n")
	var sent, lost int
	for _, line := range lines {
		switch {
		case strings.Contains(line, ", sent, "):
			sent++
		case strings.Contains(line, ", lost, "):
			lost++
		}
	}
	assert.Equal(t, 30, sent)
	assert.Equal(t, 3, lost)
	assert.Contains(t, events.String(), ", 1, acked, 29, short, ECT(0), \"capable\"")
}

func TestRunCanceled(t *testing.T) {
	s, err := LoadScenario("clean")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}
