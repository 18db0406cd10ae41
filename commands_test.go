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
	"bytes"
	"errors"
	"testing"
)

func TestSwitchAntennaPayload(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		want         []byte
		antenna      int
		antennaCount int
		wantErr      bool
	}{
		{
			name:         "first antenna",
			antenna:      0,
			antennaCount: 4,
			want:         []byte{regAntenna, 0x00},
		},
		{
			name:         "last antenna",
			antenna:      3,
			antennaCount: 4,
			want:         []byte{regAntenna, 0x03},
		},
		{
			name:         "negative index",
			antenna:      -1,
			antennaCount: 4,
			wantErr:      true,
		},
		{
			name:         "index at count",
			antenna:      4,
			antennaCount: 4,
			wantErr:      true,
		},
		{
			name:         "single antenna reader",
			antenna:      1,
			antennaCount: 1,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := switchAntennaPayload(tt.antenna, tt.antennaCount)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAntenna) {
					t.Fatalf("switchAntennaPayload() error = %v, want ErrInvalidAntenna", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("switchAntennaPayload() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("switchAntennaPayload() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestPayloadTemplates(t *testing.T) {
	t.Parallel()
	if !bytes.Equal(payloadCheckROM, []byte{0x90}) {
		t.Errorf("payloadCheckROM = % X", payloadCheckROM)
	}
	if !bytes.Equal(payloadSetCommandMode, []byte{0x00, 0x00, 0x00, 0x1C}) {
		t.Errorf("payloadSetCommandMode = % X", payloadSetCommandMode)
	}
	if !bytes.Equal(payloadInventory2, []byte{0xF0, 0x40, 0x01}) {
		t.Errorf("payloadInventory2 = % X", payloadInventory2)
	}
	if !bytes.Equal(buzzerPayload(BuzzerOn), []byte{0x01, 0x00}) {
		t.Errorf("buzzerPayload(BuzzerOn) = % X", buzzerPayload(BuzzerOn))
	}
}

func TestCommandName(t *testing.T) {
	t.Parallel()
	if got := commandName(cmdInventory2); got != "Inventory2" {
		t.Errorf("commandName(cmdInventory2) = %q", got)
	}
	if got := commandName(0x99); got != "0x99" {
		t.Errorf("commandName(0x99) = %q", got)
	}
}
