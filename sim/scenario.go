// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

//go:embed scenarios/*.json
var scenarioFS embed.FS

const (
	scenarioDir       = "scenarios"
	defaultAckTimeout = time.Second
)

// Static errors for validation.
var (
	errNoPaths               = errors.New("scenario must contain at least one path")
	errInvalidPackets        = errors.New("packets must be greater than 0")
	errInvalidInitialPackets = errors.New("initialPackets must be between 0 and packets")
	errUnknownMiddlebox      = errors.New("unknown middlebox")
	errInvalidEvery          = errors.New("every must be non-negative")
	errInvalidAckTimeout     = errors.New("ackTimeoutMs must be non-negative")
)

// Scenario is a sequence of paths used one after another by one connection.
// Every path starts ECN validation from scratch.
type Scenario struct {
	Name  string
	Paths []PathConfig
}

// PathConfig describes one simulated path.
type PathConfig struct {
	// Middlebox is the ECN treatment of the path.
	Middlebox Middlebox
	// Every selects which ECT datagrams remark-ect1 and congested rewrite.
	Every int
	// Packets is the number of datagrams sent on the path.
	Packets int
	// InitialPackets is the number of leading datagrams sent as Initials.
	InitialPackets int
	// EchoCounts makes the peer send ACK frames with ECN counts.
	EchoCounts bool
	// AckTimeout is the time after which an unacknowledged datagram is
	// declared lost.
	AckTimeout time.Duration
}

// pathJSON represents the JSON structure for parsing.
type pathJSON struct {
	Middlebox      string `json:"middlebox"`
	Every          int    `json:"every"`
	Packets        int    `json:"packets"`
	InitialPackets int    `json:"initialPackets"`
	EchoCounts     *bool  `json:"echoCounts"`
	AckTimeoutMs   int    `json:"ackTimeoutMs"`
}

// toPathConfig converts and validates a JSON path.
func (pj pathJSON) toPathConfig() (PathConfig, error) {
	mb := Middlebox(pj.Middlebox)
	if mb == "" {
		mb = MiddleboxPass
	}
	if !mb.valid() {
		return PathConfig{}, fmt.Errorf("%w: %q", errUnknownMiddlebox, pj.Middlebox)
	}
	if pj.Packets <= 0 {
		return PathConfig{}, errInvalidPackets
	}
	if pj.InitialPackets < 0 || pj.InitialPackets > pj.Packets {
		return PathConfig{}, errInvalidInitialPackets
	}
	if pj.Every < 0 {
		return PathConfig{}, errInvalidEvery
	}
	if pj.AckTimeoutMs < 0 {
		return PathConfig{}, errInvalidAckTimeout
	}

	echo := true
	if pj.EchoCounts != nil {
		echo = *pj.EchoCounts
	}
	timeout := defaultAckTimeout
	if pj.AckTimeoutMs > 0 {
		timeout = time.Duration(pj.AckTimeoutMs) * time.Millisecond
	}

	return PathConfig{
		Middlebox:      mb,
		Every:          pj.Every,
		Packets:        pj.Packets,
		InitialPackets: pj.InitialPackets,
		EchoCounts:     echo,
		AckTimeout:     timeout,
	}, nil
}

// ParseScenario parses a JSON list of paths.
func ParseScenario(name string, data []byte) (Scenario, error) {
	var paths []pathJSON
	if err := json.Unmarshal(data, &paths); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", name, err)
	}
	if len(paths) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s: %w", name, errNoPaths)
	}

	s := Scenario{Name: name, Paths: make([]PathConfig, len(paths))}
	for i, pj := range paths {
		p, err := pj.toPathConfig()
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario %s: path %d: %w", name, i, err)
		}
		s.Paths[i] = p
	}

	return s, nil
}

// LoadScenario loads an embedded scenario by name, such as "blackhole", or
// otherwise reads the named file.
func LoadScenario(name string) (Scenario, error) {
	data, err := scenarioFS.ReadFile(path.Join(scenarioDir, name+".json"))
	if err == nil {
		return ParseScenario(name, data)
	}

	data, err = os.ReadFile(filepath.Clean(name))
	if err != nil {
		return Scenario{}, err
	}

	return ParseScenario(filepath.Base(name), data)
}

// EmbeddedScenarios returns the names of the built-in scenarios.
func EmbeddedScenarios() []string {
	entries, err := fs.ReadDir(scenarioFS, scenarioDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(".json")])
	}
	sort.Strings(names)

	return names
}
