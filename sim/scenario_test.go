// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedScenarios(t *testing.T) {
	names := EmbeddedScenarios()
	assert.Equal(t, []string{
		"blackhole", "bleaching", "clean", "congested", "migration", "no_echo", "remark_ect1",
	}, names)

	for _, name := range names {
		s, err := LoadScenario(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name)
		assert.NotEmpty(t, s.Paths)
	}
}

func TestParseScenarioDefaults(t *testing.T) {
	s, err := ParseScenario("test", []byte(`[{"packets": 5}]`))
	require.NoError(t, err)

	assert.Equal(t, []PathConfig{{
		Middlebox:  MiddleboxPass,
		Packets:    5,
		EchoCounts: true,
		AckTimeout: defaultAckTimeout,
	}}, s.Paths)
}

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario("test", []byte(`[
		{"middlebox": "congested", "every": 4, "packets": 30, "initialPackets": 2, "echoCounts": false, "ackTimeoutMs": 50}
	]`))
	require.NoError(t, err)

	assert.Equal(t, PathConfig{
		Middlebox:      MiddleboxCongested,
		Every:          4,
		Packets:        30,
		InitialPackets: 2,
		EchoCounts:     false,
		AckTimeout:     50 * time.Millisecond,
	}, s.Paths[0])
}

func TestParseScenarioInvalid(t *testing.T) {
	for _, test := range []struct {
		json string
		err  error
	}{
		{`[]`, errNoPaths},
		{`[{"packets": 0}]`, errInvalidPackets},
		{`[{"packets": 5, "initialPackets": 6}]`, errInvalidInitialPackets},
		{`[{"packets": 5, "initialPackets": -1}]`, errInvalidInitialPackets},
		{`[{"packets": 5, "middlebox": "nat"}]`, errUnknownMiddlebox},
		{`[{"packets": 5, "every": -2}]`, errInvalidEvery},
		{`[{"packets": 5, "ackTimeoutMs": -1}]`, errInvalidAckTimeout},
	} {
		_, err := ParseScenario("test", []byte(test.json))
		assert.ErrorIs(t, err, test.err, test.json)
	}

	_, err := ParseScenario("test", []byte(`{`))
	assert.Error(t, err)
}

func TestLoadScenarioFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(name, []byte(`[{"middlebox": "bleach", "packets": 3}]`), 0o600))

	s, err := LoadScenario(name)
	require.NoError(t, err)
	assert.Equal(t, "custom.json", s.Name)
	assert.Equal(t, MiddleboxBleach, s.Paths[0].Middlebox)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
