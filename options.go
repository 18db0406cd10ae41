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

package tr3

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithTimeout sets the per-exchange response window.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithAddress sets the reader address placed in every frame. 0x00 for a
// single directly attached reader.
func WithAddress(address byte) Option {
	return func(d *Device) error {
		d.config.Address = address
		return nil
	}
}

// WithAntennaCount sets how many antennas the reader is fitted with;
// antenna indexes passed to RunInventoryCycle are checked against it.
func WithAntennaCount(count int) Option {
	return func(d *Device) error {
		if count < 1 {
			return errors.New("antenna count must be at least 1")
		}
		d.config.AntennaCount = count
		return nil
	}
}

// WithLogger sets the logger for session events and frame-level debug
// output. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		d.logger = logger
		return nil
	}
}
