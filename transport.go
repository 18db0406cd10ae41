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

import "time"

// Transport is a byte-stream provider for a TR3 reader/writer. It carries
// no protocol knowledge: framing, checksums and reassembly all live in the
// session. Implementations exist for TCP (LAN models), serial (RS-232C
// models) and an in-memory mock.
type Transport interface {
	// Send writes raw bytes to the reader
	Send(p []byte) error

	// ReceiveSome blocks up to timeout and returns whatever bytes are
	// available, in arbitrary chunk sizes. It fails with a timeout error
	// when nothing arrives within the window and with a connection-closed
	// error when the peer goes away.
	ReceiveSome(timeout time.Duration) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportTCP represents a LAN (TCP) connection.
	TransportTCP TransportType = "tcp"
	// TransportSerial represents an RS-232C serial connection.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)
