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

// Package frame implements the TR3 wire frame: checksum, encoding, decoding
// and reassembly of complete frames out of a raw byte stream.
package frame

// Frame sentinel bytes - these delimit a frame on the wire
const (
	STX byte = 0x02 // Start of Text, first byte of every frame
	ETX byte = 0x03 // End of Text, closes the data section
	CR  byte = 0x0D // Carriage Return, frame terminator
)

// Frame size limits
const (
	HeaderLen = 4 // STX + address + command + length
	FooterLen = 3 // ETX + SUM + CR

	// MaxDataLength is the largest payload expressible in the one-byte
	// length field.
	MaxDataLength = 255

	// MinFrameLen is the size of an empty-payload frame.
	MinFrameLen = HeaderLen + FooterLen
)

// Byte offsets into a raw frame, relative to STX.
const (
	offAddress = 1
	offCommand = 2
	offLength  = 3
	offData    = 4
)
