// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "log/slog"

// DefaultMaxFileSize bounds the unpacked size of a single member.
const DefaultMaxFileSize = 512 << 20

// Option configures an Archive.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	listfile    []string
	maxFileSize uint32
}

func newConfig(opts []Option) config {
	c := config{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithLogger sets the logger used for diagnostics. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithListfile adds names to resolve in addition to the archive's own
// (listfile). Use it for archives whose listing is missing or encrypted.
func WithListfile(names ...string) Option {
	return func(c *config) {
		c.listfile = append(c.listfile, names...)
	}
}

// WithMaxFileSize limits the unpacked size of a member that ReadFile will
// allocate. Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint32) Option {
	return func(c *config) {
		c.maxFileSize = limit
	}
}
