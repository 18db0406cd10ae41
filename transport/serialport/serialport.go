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

// Package serialport provides the RS-232C transport for TR3 readers with
// a serial interface board. The wire frames are identical to the LAN
// models; only the byte carrier differs.
package serialport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	tr3 "github.com/ZaparooProject/go-tr3"
)

// DefaultBaudRate is the TR3 factory setting (19200 bps, 8N1).
const DefaultBaudRate = 19200

// Transport implements tr3.Transport over an RS-232C port.
type Transport struct {
	port      serial.Port
	path      string
	buf       []byte
	mu        sync.Mutex
	connected bool
}

// Option configures the serial transport.
type Option func(*serial.Mode)

// WithBaudRate overrides the factory baud rate for readers whose
// interface board has been reconfigured.
func WithBaudRate(baud int) Option {
	return func(m *serial.Mode) {
		m.BaudRate = baud
	}
}

// New opens the serial device at path (e.g. /dev/ttyUSB0 or COM3).
func New(path string, opts ...Option) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	for _, opt := range opts {
		opt(mode)
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Transport{
		port:      port,
		path:      path,
		buf:       make([]byte, 4096),
		connected: true,
	}, nil
}

// Send writes p to the reader.
func (t *Transport) Send(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return tr3.NewTransportError("send", t.path, tr3.ErrNotConnected, tr3.ErrorTypePermanent)
	}
	if _, err := t.port.Write(p); err != nil {
		return tr3.NewTransportError("send", t.path, tr3.ErrTransportWrite, tr3.ErrorTypeTransient)
	}
	return nil
}

// ReceiveSome blocks up to timeout and returns whatever bytes arrived. A
// serial read that expires returns no bytes and no error, which this
// transport reports as a timeout.
func (t *Transport) ReceiveSome(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, tr3.NewTransportError("receive", t.path, tr3.ErrNotConnected, tr3.ErrorTypePermanent)
	}

	if err := t.port.SetReadTimeout(timeout); err != nil {
		return nil, tr3.NewTransportError("receive", t.path, err, tr3.ErrorTypeTransient)
	}
	n, err := t.port.Read(t.buf)
	if err != nil {
		t.connected = false
		return nil, tr3.NewTransportError("receive", t.path, tr3.ErrTransportRead, tr3.ErrorTypeTransient)
	}
	if n == 0 {
		return nil, tr3.NewTimeoutError("receive", t.path)
	}

	out := make([]byte, n)
	copy(out, t.buf[:n])
	return out, nil
}

// Close closes the port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.path, err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type returns tr3.TransportSerial
func (*Transport) Type() tr3.TransportType {
	return tr3.TransportSerial
}
