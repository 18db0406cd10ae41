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

import "fmt"

// TR3 command codes. The reply frame echoes the request command byte.
const (
	cmdBuzzer        = 0x42
	cmdWriteRegister = 0x4E
	cmdReadRegister  = 0x4F
	cmdTagData       = 0x49 // reader-to-host tag notification after Inventory2
	cmdInventory2    = 0x78
)

// Reader register addresses used with cmdReadRegister / cmdWriteRegister.
const (
	regROMVersion    = 0x90
	regAntenna       = 0x9C
	regAntiCollision = 0x9E
)

// AntiCollisionHighSpeed3 is the anti-collision mode this engine drives
// the reader into before inventory ("high-speed mode 3").
const AntiCollisionHighSpeed3 byte = 0x03

// Reply status bytes (first data byte of write/buzzer acknowledgments).
const (
	statusACK byte = 0x00
	statusNAK byte = 0xFF
)

// Buzzer modes
const (
	BuzzerOff byte = 0x00
	BuzzerOn  byte = 0x01
)

// Fixed payload templates from the TR3 communication specification.
var (
	payloadCheckROM       = []byte{regROMVersion}
	payloadSetCommandMode = []byte{0x00, 0x00, 0x00, 0x1C}
	payloadInventory2     = []byte{0xF0, 0x40, 0x01}
)

var commandNames = map[byte]string{
	cmdBuzzer:        "Buzzer",
	cmdWriteRegister: "WriteRegister",
	cmdReadRegister:  "ReadRegister",
	cmdTagData:       "TagData",
	cmdInventory2:    "Inventory2",
}

// commandName returns a human-readable name for a command byte, for logs.
func commandName(code byte) string {
	if name, ok := commandNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// switchAntennaPayload builds the write-register payload selecting an
// antenna. The index is bounds-checked against the configured antenna
// count before any I/O happens.
func switchAntennaPayload(antenna, antennaCount int) ([]byte, error) {
	if antenna < 0 || antenna >= antennaCount {
		return nil, fmt.Errorf("%w: %d (reader has %d)", ErrInvalidAntenna, antenna, antennaCount)
	}
	return []byte{regAntenna, byte(antenna)}, nil
}

func buzzerPayload(mode byte) []byte {
	return []byte{mode, 0x00}
}

func readRegisterPayload(register byte) []byte {
	return []byte{register}
}

func writeRegisterPayload(register, value byte) []byte {
	return []byte{register, value}
}
