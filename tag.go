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
	"fmt"
	"strings"
)

// Tag is one RF tag reported by an inventory cycle. The reader sends the
// eight UID bytes LSB-first; UIDString renders them MSB-first, which is
// how UIDs appear on tag labels and in vendor tooling.
type Tag struct {
	UID   []byte
	DSFID byte
}

// UIDString returns the UID as an MSB-first hex string, e.g.
// "E0041234567890AB".
func (t Tag) UIDString() string {
	var b strings.Builder
	for i := len(t.UID) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%02X", t.UID[i])
	}
	return b.String()
}

func newTag(data []byte) Tag {
	uid := make([]byte, len(data)-1)
	copy(uid, data[1:])
	return Tag{DSFID: data[0], UID: uid}
}
