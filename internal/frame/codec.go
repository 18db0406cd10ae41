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

package frame

import (
	"errors"
	"fmt"
)

// Codec errors
var (
	// ErrPayloadTooLarge means the payload does not fit the one-byte
	// length field.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum frame data length")

	// ErrFrameMalformed means a buffer is not frame-shaped: wrong size,
	// bad sentinel positions, or a length field that disagrees with the
	// buffer. Indicates truncation or a framing-level desync.
	ErrFrameMalformed = errors.New("malformed frame")

	// ErrChecksumMismatch means the frame is structurally sound but its
	// SUM byte does not match, i.e. bit-level corruption.
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
)

// Frame is one decoded TR3 frame. A Frame value only ever exists in fully
// validated form: Decode rejects anything malformed, and Encode derives
// the checksum itself.
type Frame struct {
	Data    []byte
	Raw     []byte
	Address byte
	Command byte
}

// Encode builds the wire bytes for one frame:
// STX + address + command + len(data) + data + ETX + SUM + CR.
func Encode(address, command byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	buf := make([]byte, 0, HeaderLen+len(data)+FooterLen)
	buf = append(buf, STX, address, command, byte(len(data)))
	buf = append(buf, data...)
	buf = append(buf, ETX)
	buf = append(buf, CalculateChecksum(buf))
	buf = append(buf, CR)
	return buf, nil
}

// Decode validates a buffer the reassembler considers frame-shaped and
// returns the structured frame. It distinguishes framing problems
// (ErrFrameMalformed) from bit-level corruption (ErrChecksumMismatch) so
// the caller can pick its resync strategy.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < MinFrameLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameMalformed, len(buf))
	}
	if buf[0] != STX {
		return Frame{}, fmt.Errorf("%w: missing STX", ErrFrameMalformed)
	}

	dataLen := int(buf[offLength])
	if len(buf) != HeaderLen+dataLen+FooterLen {
		return Frame{}, fmt.Errorf("%w: length field %d disagrees with %d-byte buffer",
			ErrFrameMalformed, dataLen, len(buf))
	}
	if buf[len(buf)-FooterLen] != ETX {
		return Frame{}, fmt.Errorf("%w: ETX not at expected position", ErrFrameMalformed)
	}
	if buf[len(buf)-1] != CR {
		return Frame{}, fmt.Errorf("%w: missing CR terminator", ErrFrameMalformed)
	}

	// SUM covers STX..ETX inclusive, i.e. everything before the SUM byte.
	if !VerifyChecksum(buf[:len(buf)-2], buf[len(buf)-2]) {
		return Frame{}, ErrChecksumMismatch
	}

	data := make([]byte, dataLen)
	copy(data, buf[offData:offData+dataLen])
	raw := make([]byte, len(buf))
	copy(raw, buf)

	return Frame{
		Address: buf[offAddress],
		Command: buf[offCommand],
		Data:    data,
		Raw:     raw,
	}, nil
}
