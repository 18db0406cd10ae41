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

/*
Package tr3 provides a pure Go client for Takaya TR3-series HF-band (13.56
MHz) RFID reader/writers.

The TR3 speaks a binary request/response protocol over a plain byte stream
(TCP for the LAN models, RS-232C for the serial ones). The stream carries
no message boundaries, so this package reassembles frames incrementally,
validates their checksums, and drives the stateful command sequence the
reader expects: capability check, command-mode switch, anti-collision
configuration, then repeated inventory cycles.

Features:
  - TCP and serial transports behind one byte-stream interface
  - Incremental frame reassembly tolerant of splits, garbage and corruption
  - Full session state machine with a typed error taxonomy
  - Inventory cycles returning tag UIDs, with per-tag buzzer signaling
  - Structured logging of every frame sent and received

Basic Usage:

	import (
	    tr3 "github.com/ZaparooProject/go-tr3"
	    "github.com/ZaparooProject/go-tr3/transport/tcp"
	)

	// Connect to a LAN reader
	transport, err := tcp.New("192.168.0.10:9004", 5*time.Second)
	if err != nil {
	    log.Fatal(err)
	}

	device, err := tr3.New(transport,
	    tr3.WithTimeout(2*time.Second),
	    tr3.WithAntennaCount(4),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Connect(); err != nil {
	    log.Fatal(err)
	}
	if err := device.Initialize(); err != nil {
	    log.Fatal(err)
	}

	// One read cycle on antenna 0
	tags, err := device.RunInventoryCycle(0)
	if err != nil {
	    log.Fatal(err)
	}
	for _, tag := range tags {
	    fmt.Println(tag.UIDString())
	}

A timeout or transport failure drops the session to Disconnected; the
caller reconnects and reruns Initialize, since the protocol has no way to
resynchronize mid-sequence. See the polling package for a ready-made
reads-by-antennas inventory loop.
*/
package tr3
