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

// Package simulator implements a protocol-level virtual TR3 reader for
// tests and for the tr3mockd binary. It answers the full command set the
// engine issues, with a configurable tag population and register file.
package simulator

import (
	"errors"
	"net"
	"sync"

	"github.com/ZaparooProject/go-tr3/internal/frame"
)

// Device-side command handling mirrors the reader, not the client, so the
// constants live here rather than being shared with the root package.
const (
	cmdBuzzer        = 0x42
	cmdWriteRegister = 0x4E
	cmdReadRegister  = 0x4F
	cmdTagData       = 0x49
	cmdInventory2    = 0x78

	regROMVersion = 0x90
)

// DefaultROMText is the firmware identity of the simulated reader,
// decoding as version 1.05.2 on a TR3A1 board.
const DefaultROMText = "1052TR3A1"

// DefaultTags is the tag population a fresh simulator reports: two
// ISO 15693 tags, each a DSFID byte plus eight UID bytes LSB-first.
var DefaultTags = [][]byte{
	{0x00, 0xE0, 0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
	{0x01, 0xE0, 0x04, 0x98, 0x76, 0x54, 0x32, 0x10, 0xFF},
}

// Device is a virtual TR3 reader. Handle is pure frame-in, frames-out;
// Serve exposes the same behavior on a TCP listener.
type Device struct {
	registers map[byte]byte
	ROMText   string
	tags      [][]byte
	mu        sync.Mutex
}

// New creates a simulator with the default ROM text and tag population.
func New() *Device {
	tags := make([][]byte, len(DefaultTags))
	for i, tag := range DefaultTags {
		tags[i] = append([]byte(nil), tag...)
	}
	return &Device{
		ROMText:   DefaultROMText,
		tags:      tags,
		registers: make(map[byte]byte),
	}
}

// SetTags replaces the tag population reported by Inventory2.
func (d *Device) SetTags(tags [][]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tags = make([][]byte, len(tags))
	for i, tag := range tags {
		d.tags[i] = append([]byte(nil), tag...)
	}
}

// SetRegister presets a register value, e.g. the anti-collision mode.
func (d *Device) SetRegister(register, value byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registers[register] = value
}

// Register returns the current value of a register.
func (d *Device) Register(register byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registers[register]
}

// Handle answers one request with zero or more encoded reply frames,
// echoing the request command byte the way the hardware does. The
// signature matches the tr3.MockTransport response hook so a simulator
// plugs in directly.
func (d *Device) Handle(address, command byte, data []byte) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch command {
	case cmdReadRegister:
		if len(data) != 1 {
			return d.nak(address, command)
		}
		if data[0] == regROMVersion {
			rom := append([]byte{regROMVersion}, []byte(d.ROMText)...)
			return d.reply(address, command, rom)
		}
		return d.reply(address, command, []byte{data[0], d.registers[data[0]]})

	case cmdWriteRegister:
		if len(data) == 2 {
			d.registers[data[0]] = data[1]
		}
		return d.reply(address, command, []byte{0x00})

	case cmdInventory2:
		out := d.reply(address, command, []byte{0xF0, byte(len(d.tags))})
		for _, tag := range d.tags {
			out = append(out, encode(address, cmdTagData, tag))
		}
		return out

	case cmdBuzzer:
		return d.reply(address, command, []byte{0x00})

	default:
		return d.nak(address, command)
	}
}

func (d *Device) reply(address, command byte, data []byte) [][]byte {
	return [][]byte{encode(address, command, data)}
}

func (d *Device) nak(address, command byte) [][]byte {
	return d.reply(address, command, []byte{0xFF})
}

func encode(address, command byte, data []byte) []byte {
	raw, err := frame.Encode(address, command, data)
	if err != nil {
		// Reply payloads are all well under the frame limit.
		panic(err)
	}
	return raw
}

// Serve accepts connections on l and answers frames until the listener is
// closed. Each connection gets its own reassembler, so a reconnecting
// client never sees another session's partial bytes.
func (d *Device) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go d.serveConn(conn)
	}
}

func (d *Device) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	reasm := frame.NewReassembler()
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for _, f := range reasm.Feed(buf[:n]) {
			for _, reply := range d.Handle(f.Address, f.Command, f.Data) {
				if _, err := conn.Write(reply); err != nil {
					return
				}
			}
		}
	}
}
