// go-tr3
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-tr3.
//
// go-tr3 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-tr3 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-tr3; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package polling runs repeated inventory cycles over every antenna of a
// TR3 reader. Cycles are strictly sequential: overlapping RF operations
// on one reader are not meaningful, so there is nothing to parallelize.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tr3 "github.com/ZaparooProject/go-tr3"
)

// Runner sweeps a prepared device: Reads passes, each visiting every
// configured antenna once.
type Runner struct {
	device *tr3.Device
	config *Config

	// OnTags is called after every cycle with the tags found, possibly
	// none. Called from Run's goroutine.
	OnTags func(read, antenna int, tags []tr3.Tag)

	running atomic.Bool
}

// Config holds configuration options for the Runner
type Config struct {
	// Reads is how many passes over all antennas to run.
	Reads int
	// Interval is the pause between consecutive cycles.
	Interval time.Duration
}

// Runner-specific errors
var (
	ErrAlreadyRunning = errors.New("runner is already running")
)

// NewRunner creates a runner for an initialized device.
func NewRunner(device *tr3.Device, config *Config) (*Runner, error) {
	if device == nil {
		return nil, errors.New("device cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Reads < 1 {
		return nil, errors.New("reads must be at least 1")
	}
	return &Runner{device: device, config: config}, nil
}

// DefaultConfig returns sensible default configuration values
func DefaultConfig() *Config {
	return &Config{
		Reads:    1,
		Interval: 100 * time.Millisecond,
	}
}

// Run executes the sweep, blocking until it finishes, the context is
// canceled, or a cycle fails. A failed cycle has already dropped the
// session; the caller reconnects and reinitializes before running again.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	antennas := r.device.AntennaCount()
	for read := 0; read < r.config.Reads; read++ {
		for antenna := 0; antenna < antennas; antenna++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("inventory sweep canceled: %w", err)
			}

			tags, err := r.device.RunInventoryCycle(antenna)
			if err != nil {
				return fmt.Errorf("read %d antenna %d: %w", read, antenna, err)
			}
			if r.OnTags != nil {
				r.OnTags(read, antenna, tags)
			}

			if r.config.Interval > 0 {
				select {
				case <-ctx.Done():
					return fmt.Errorf("inventory sweep canceled: %w", ctx.Err())
				case <-time.After(r.config.Interval):
				}
			}
		}
	}
	return nil
}

// IsRunning reports whether a sweep is in progress.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}
