// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Command ecn-sim runs ECN path validation against simulated middleboxes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pion/ecn-test/ecn"
	elogging "github.com/pion/ecn-test/logging"
	"github.com/pion/ecn-test/sim"
	"github.com/pion/ecn-test/stats"
	"github.com/pion/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var errInvalidLogLevel = errors.New("invalid log level")

func parseLogLevel(level string) (logging.LogLevel, error) {
	switch strings.ToLower(level) {
	case "disabled":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("%w: %q", errInvalidLogLevel, level)
	}
}

func realMain() (err error) {
	scenarioName := pflag.StringP("scenario", "s", "clean", "built-in scenario name or path to a scenario JSON file")
	eventLog := pflag.String("event-log", "", "event log file, \"stdout\", or empty to disable")
	statsAddr := pflag.String("stats-addr", "", "serve the stats page and /metrics on this address and wait for interrupt")
	logLevel := pflag.String("log-level", "info", "log level: disabled, error, warn, info, debug, trace")
	list := pflag.Bool("list", false, "list built-in scenarios and exit")
	pflag.Parse()

	if *list {
		for _, name := range sim.EmbeddedScenarios() {
			fmt.Println(name) //nolint:forbidigo
		}

		return nil
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return err
	}
	loggerFactory := logging.NewDefaultLoggerFactory()
	loggerFactory.DefaultLogLevel = level
	logger := loggerFactory.NewLogger("ecn_sim_main")

	scenario, err := sim.LoadScenario(*scenarioName)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	events, err := elogging.GetLogFile(*eventLog)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer func() {
		if closeErr := events.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close event log: %w", closeErr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pathStats := ecn.NewStats()
	var server *stats.Server
	if *statsAddr != "" {
		registry := prometheus.NewRegistry()
		if err = registry.Register(stats.NewCollector(pathStats)); err != nil {
			return err
		}
		server, err = stats.New(stats.Gatherer(registry), stats.LoggerFactory(loggerFactory))
		if err != nil {
			return err
		}
		go func() {
			if serveErr := server.Start(*statsAddr); serveErr != nil {
				logger.Errorf("stats server: %v", serveErr)
			}
		}()
	}

	start := time.Now()
	results, err := sim.Run(ctx, scenario,
		sim.LoggerFactory(loggerFactory),
		sim.Stats(pathStats),
		sim.EventLog(events),
	)
	for _, res := range results {
		fmt.Println(res) //nolint:forbidigo
	}
	if err != nil {
		return err
	}

	if server != nil {
		server.Publish(pathStats.Snapshot(), time.Since(start).Milliseconds())
		logger.Infof("serving stats on %s, press Ctrl+C to exit", *statsAddr)
		<-ctx.Done()
	}

	return nil
}

func main() {
	if err := realMain(); err != nil {
		log.Fatal(err)
	}
}
