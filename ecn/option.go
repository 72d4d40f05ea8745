// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ecn

import "github.com/pion/logging"

// Option configures an Info.
type Option func(*Info) error

// Logger sets the logger used by the controller.
func Logger(l logging.LeveledLogger) Option {
	return func(i *Info) error {
		i.log = l

		return nil
	}
}

// LoggerFactory creates the controller logger from the given factory.
func LoggerFactory(f logging.LoggerFactory) Option {
	return func(i *Info) error {
		i.log = f.NewLogger(loggerScope)

		return nil
	}
}
