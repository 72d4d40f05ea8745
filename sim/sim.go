// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package sim runs ECN path validation against simulated middleboxes on a
// virtual network.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/pion/ecn-test/ecn"
	"github.com/pion/logging"
	"golang.org/x/sync/errgroup"
)

// PathResult summarizes the run of one path.
type PathResult struct {
	Path      int
	Middlebox Middlebox
	State     ecn.ValidationState
	Sent      int
	Marked    int
	Acked     int
	Lost      int
	CESignals int
}

func (r PathResult) String() string {
	return fmt.Sprintf("path=%v, middlebox=%v, state=%v, sent=%v, marked=%v, acked=%v, lost=%v, ce=%v",
		r.Path, r.Middlebox, r.State, r.Sent, r.Marked, r.Acked, r.Lost, r.CESignals)
}

// Option configures a simulation run.
type Option func(*runner) error

// LoggerFactory sets the logger factory used by the simulation, the virtual
// network and the ECN controllers.
func LoggerFactory(f logging.LoggerFactory) Option {
	return func(r *runner) error {
		r.loggerFactory = f

		return nil
	}
}

// Stats sets the stats table shared by all paths.
func Stats(s *ecn.Stats) Option {
	return func(r *runner) error {
		r.stats = s

		return nil
	}
}

// EventLog writes one line per packet event to w.
func EventLog(w io.Writer) Option {
	return func(r *runner) error {
		r.events = w

		return nil
	}
}

type runner struct {
	loggerFactory logging.LoggerFactory
	stats         *ecn.Stats
	events        io.Writer
	log           logging.LeveledLogger
}

// Run runs every path of the scenario in order and returns one result per
// path. Packet numbers continue across paths like they do across a migration.
func Run(ctx context.Context, scenario Scenario, opts ...Option) (results []PathResult, err error) {
	r := &runner{
		loggerFactory: logging.NewDefaultLoggerFactory(),
	}
	for _, opt := range opts {
		if err = opt(r); err != nil {
			return nil, err
		}
	}
	r.log = r.loggerFactory.NewLogger("ecn_sim")

	nw, err := newNetwork(r.loggerFactory)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := nw.close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close network: %w", closeErr))
		}
	}()

	var nextPN ecn.PacketNumber
	results = make([]PathResult, 0, len(scenario.Paths))
	for id, cfg := range scenario.Paths {
		res, pathErr := r.runPath(ctx, nw, id, cfg, &nextPN)
		if pathErr != nil {
			return results, fmt.Errorf("path %d: %w", id, pathErr)
		}
		r.log.Infof("%s: %v", scenario.Name, res)
		results = append(results, res)
	}

	return results, nil
}

func (r *runner) runPath(
	ctx context.Context,
	nw *network,
	id int,
	cfg PathConfig,
	nextPN *ecn.PacketNumber,
) (PathResult, error) {
	senderConn, peerConn, err := nw.listenPath(id)
	if err != nil {
		return PathResult{}, err
	}

	info, err := ecn.NewInfo(ecn.LoggerFactory(r.loggerFactory))
	if err != nil {
		return PathResult{}, err
	}

	snd := &sender{
		id:  id,
		cfg: cfg,
		conn: &middleboxConn{
			PacketConn: senderConn,
			model:      newPathModel(cfg.Middlebox, cfg.Every),
		},
		peerAddr: &net.UDPAddr{IP: net.ParseIP(peerIP), Port: peerBasePort + id},
		info:     info,
		stats:    r.stats,
		events:   r.events,
		log:      r.log,
		nextPN:   *nextPN,
		result:   PathResult{Path: id, Middlebox: cfg.Middlebox},
	}
	p := &peer{
		conn:       peerConn,
		echoCounts: cfg.EchoCounts,
		log:        r.loggerFactory.NewLogger("ecn_sim_peer" + strconv.Itoa(id)),
	}

	pathCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(pathCtx)
	group.Go(func() error {
		return p.run(groupCtx)
	})
	group.Go(func() error {
		defer cancel()

		return snd.run(groupCtx)
	})
	err = group.Wait()

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	if closeErr := senderConn.Close(); closeErr != nil {
		errs = append(errs, fmt.Errorf("close sender: %w", closeErr))
	}
	if closeErr := peerConn.Close(); closeErr != nil {
		errs = append(errs, fmt.Errorf("close peer: %w", closeErr))
	}

	*nextPN = snd.nextPN
	snd.result.State = info.State()

	return snd.result, errors.Join(errs...)
}
