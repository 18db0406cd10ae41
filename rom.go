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

// ROMVersion is the decoded reply to a ROM version check. The reader
// answers with the register byte followed by nine ASCII characters, e.g.
// "1052TR3A1" for firmware 1.05.2 on a TR3A1 board.
type ROMVersion struct {
	Major  string
	Minor  string
	Patch  string
	Series string
	Code   string
	Raw    []byte
}

// String renders the version the way the vendor documentation writes it,
// e.g. "1.05.2 TR3A1".
func (v *ROMVersion) String() string {
	return fmt.Sprintf("%s.%s.%s %s%s", v.Major, v.Minor, v.Patch, v.Series, v.Code)
}

// parseROMVersion decodes the data section of a ROM check reply.
func parseROMVersion(data []byte) (*ROMVersion, error) {
	if len(data) < 10 || data[0] != regROMVersion {
		return nil, fmt.Errorf("%w: ROM reply data % X", ErrUnexpectedResponse, data)
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &ROMVersion{
		Major:  string(data[1:2]),
		Minor:  string(data[2:4]),
		Patch:  string(data[4:5]),
		Series: string(data[5:8]),
		Code:   string(data[8:10]),
		Raw:    raw,
	}, nil
}
