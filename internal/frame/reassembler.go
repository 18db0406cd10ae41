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
	"bytes"
	"errors"
)

// Reassembler recovers frame boundaries from a raw byte stream. TCP gives
// no message boundaries, so a frame may arrive split over several reads,
// several frames may arrive in one read, and debris from a corrupted frame
// may precede a valid one. Feed accepts chunks of any size and emits the
// same decoded frames no matter how the stream was chunked.
//
// Not safe for concurrent use; the owning session feeds it sequentially.
type Reassembler struct {
	buf []byte
}

// NewReassembler returns an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{buf: make([]byte, 0, 512)}
}

// Feed appends p to the pending buffer and returns every complete frame
// that can be extracted. Bytes before an STX are discarded as resync
// debris. A candidate with a broken trailer was misaligned on a stray
// STX, so it loses only its leading byte; a candidate that is framed
// correctly but fails its checksum really was a frame, just a damaged
// one, so it is discarded whole. Sliding byte-wise through a damaged
// frame's payload could otherwise surface payload bytes as a frame of
// their own.
func (r *Reassembler) Feed(p []byte) []Frame {
	r.buf = append(r.buf, p...)

	var out []Frame
	for {
		i := bytes.IndexByte(r.buf, STX)
		if i < 0 {
			// Nothing but noise; drop it but keep the allocation.
			r.buf = r.buf[:0]
			return out
		}
		if i > 0 {
			r.buf = append(r.buf[:0], r.buf[i:]...)
		}

		if len(r.buf) < HeaderLen {
			return out
		}
		total := HeaderLen + int(r.buf[offLength]) + FooterLen
		if len(r.buf) < total {
			return out
		}

		f, err := Decode(r.buf[:total])
		if err != nil {
			if errors.Is(err, ErrChecksumMismatch) {
				r.buf = append(r.buf[:0], r.buf[total:]...)
			} else {
				r.buf = append(r.buf[:0], r.buf[1:]...)
			}
			continue
		}

		out = append(out, f)
		r.buf = append(r.buf[:0], r.buf[total:]...)
	}
}

// Pending returns the number of buffered bytes not yet part of a complete
// frame.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}

// Reset empties the buffer. Called when the connection is torn down so a
// reconnect never sees stale bytes.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
}
