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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-tr3/internal/frame"
	"github.com/ZaparooProject/go-tr3/internal/simulator"
)

// newSimulatedSession wires a Device to the virtual reader through the
// mock transport and connects it.
func newSimulatedSession(t *testing.T, opts ...Option) (*Device, *MockTransport, *simulator.Device) {
	t.Helper()
	sim := simulator.New()
	mt := NewMockTransport()
	mt.ResponseFunc = sim.Handle

	device, err := New(mt, append([]Option{WithTimeout(250 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, device.Connect())
	return device, mt, sim
}

func countCommands(mt *MockTransport, command byte) int {
	n := 0
	for _, c := range mt.SentCommands() {
		if c == command {
			n++
		}
	}
	return n
}

func TestSessionInitializeFlow(t *testing.T) {
	t.Parallel()
	device, mt, sim := newSimulatedSession(t)

	require.Equal(t, StateConnected, device.State())

	rom, err := device.CheckROMVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.05.2 TR3A1", rom.String())
	assert.Equal(t, StateROMChecked, device.State())

	require.NoError(t, device.SetCommandMode())
	assert.Equal(t, StateCommandMode, device.State())

	// Fresh simulator has anti-collision mode 0, so the session must
	// write high-speed mode 3.
	require.NoError(t, device.EnsureAntiCollisionHighSpeed3())
	assert.Equal(t, StateAntiCollisionConfigured, device.State())
	assert.Equal(t, AntiCollisionHighSpeed3, sim.Register(0x9E))

	require.NoError(t, device.PrepareInventory())
	assert.Equal(t, StateReady, device.State())

	// One write for command mode, one for anti-collision.
	assert.Equal(t, 2, countCommands(mt, cmdWriteRegister))
}

func TestEnsureAntiCollisionAlreadyConfigured(t *testing.T) {
	t.Parallel()
	device, mt, sim := newSimulatedSession(t)
	sim.SetRegister(0x9E, byte(AntiCollisionHighSpeed3))

	_, err := device.CheckROMVersion()
	require.NoError(t, err)
	require.NoError(t, device.SetCommandMode())
	writesBefore := countCommands(mt, cmdWriteRegister)

	require.NoError(t, device.EnsureAntiCollisionHighSpeed3())
	assert.Equal(t, StateAntiCollisionConfigured, device.State())
	// Already at target mode: check only, no write issued.
	assert.Equal(t, writesBefore, countCommands(mt, cmdWriteRegister))
}

func TestRunInventoryCycleTwoTags(t *testing.T) {
	t.Parallel()
	device, mt, _ := newSimulatedSession(t)
	require.NoError(t, device.Initialize())

	tags, err := device.RunInventoryCycle(0)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "BC9A7856341204E0", tags[0].UIDString())
	assert.Equal(t, StateReady, device.State())

	// One buzzer command per detected UID, exactly.
	assert.Equal(t, 2, countCommands(mt, cmdBuzzer))
}

func TestRunInventoryCycleUIDs(t *testing.T) {
	t.Parallel()
	device, _, sim := newSimulatedSession(t)
	sim.SetTags([][]byte{
		{0x00, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12, 0x04, 0xE0},
	})
	require.NoError(t, device.Initialize())

	tags, err := device.RunInventoryCycle(0)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "E004123456789ABC", tags[0].UIDString())
	assert.Equal(t, byte(0x00), tags[0].DSFID)
}

func TestRunInventoryCycleNoTags(t *testing.T) {
	t.Parallel()
	device, mt, sim := newSimulatedSession(t)
	sim.SetTags(nil)
	require.NoError(t, device.Initialize())

	tags, err := device.RunInventoryCycle(0)
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Zero(t, countCommands(mt, cmdBuzzer))
	assert.Equal(t, StateReady, device.State())
}

func TestRunInventoryCycleInvalidAntenna(t *testing.T) {
	t.Parallel()
	device, mt, _ := newSimulatedSession(t, WithAntennaCount(2))
	require.NoError(t, device.Initialize())
	sentBefore := len(mt.SentFrames())

	_, err := device.RunInventoryCycle(2)
	require.ErrorIs(t, err, ErrInvalidAntenna)
	// Rejected before any I/O; session untouched.
	assert.Equal(t, sentBefore, len(mt.SentFrames()))
	assert.Equal(t, StateReady, device.State())
}

func TestResponseTimeoutDropsSession(t *testing.T) {
	t.Parallel()
	mt := NewMockTransport() // no ResponseFunc: a silent device
	device, err := New(mt, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, device.Connect())

	_, err = device.CheckROMVersion()
	require.ErrorIs(t, err, ErrResponseTimeout)
	assert.Equal(t, StateDisconnected, device.State())

	// Everything protocol-level is now refused until reconnect.
	require.ErrorIs(t, device.SetCommandMode(), ErrInvalidState)
}

func TestCorruptedResponseBecomesTimeout(t *testing.T) {
	t.Parallel()
	sim := simulator.New()
	mt := NewMockTransport()
	mt.ResponseFunc = func(address, command byte, data []byte) [][]byte {
		replies := sim.Handle(address, command, data)
		// Flip a bit in the checksum of every reply: the reassembler
		// must discard them and the exchange window then expires.
		for _, raw := range replies {
			raw[len(raw)-2] ^= 0x01
		}
		return replies
	}
	device, err := New(mt, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, device.Connect())

	_, err = device.CheckROMVersion()
	require.ErrorIs(t, err, ErrResponseTimeout)
	assert.Equal(t, StateDisconnected, device.State())
}

func TestGarbageBeforeResponseIsResynced(t *testing.T) {
	t.Parallel()
	device, mt, _ := newSimulatedSession(t)
	mt.QueueBytes([]byte{0xDE, 0xAD, 0x0D, 0xBE})

	rom, err := device.CheckROMVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.05.2 TR3A1", rom.String())
}

func TestUnexpectedResponseCommand(t *testing.T) {
	t.Parallel()
	mt := NewMockTransport()
	mt.ResponseFunc = func(address, _ byte, _ []byte) [][]byte {
		raw, err := frame.Encode(address, 0x55, []byte{0x00})
		if err != nil {
			panic(err)
		}
		return [][]byte{raw}
	}
	device, err := New(mt, WithTimeout(250*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, device.Connect())

	_, err = device.CheckROMVersion()
	require.ErrorIs(t, err, ErrUnexpectedResponse)
	// Wrong reply is fatal to the operation, not the session.
	assert.Equal(t, StateConnected, device.State())
}

func TestCommandRejected(t *testing.T) {
	t.Parallel()
	sim := simulator.New()
	mt := NewMockTransport()
	mt.ResponseFunc = func(address, command byte, data []byte) [][]byte {
		if command == cmdWriteRegister {
			raw, err := frame.Encode(address, command, []byte{0xFF})
			if err != nil {
				panic(err)
			}
			return [][]byte{raw}
		}
		return sim.Handle(address, command, data)
	}
	device, err := New(mt, WithTimeout(250*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, device.Connect())

	_, err = device.CheckROMVersion()
	require.NoError(t, err)
	require.ErrorIs(t, device.SetCommandMode(), ErrCommandRejected)
}

func TestSequencingEnforced(t *testing.T) {
	t.Parallel()
	device, _, _ := newSimulatedSession(t)

	// Skipping the ROM check is refused.
	require.ErrorIs(t, device.SetCommandMode(), ErrInvalidState)
	_, err := device.RunInventoryCycle(0)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMockTransportRecordsRequests(t *testing.T) {
	t.Parallel()
	device, mt, _ := newSimulatedSession(t)

	_, err := device.CheckROMVersion()
	require.NoError(t, err)

	sent := mt.SentFrames()
	require.Len(t, sent, 1)
	assert.Equal(t, byte(0x00), sent[0].Address)
	assert.Equal(t, byte(cmdReadRegister), sent[0].Command)
	assert.Equal(t, []byte{0x90}, sent[0].Data)
}

func TestConnectRequiresOpenTransport(t *testing.T) {
	t.Parallel()
	mt := NewMockTransport()
	require.NoError(t, mt.Close())

	device, err := New(mt)
	require.NoError(t, err)
	require.ErrorIs(t, device.Connect(), ErrNotConnected)
}

func TestBuzzerStateGate(t *testing.T) {
	t.Parallel()
	device, mt, _ := newSimulatedSession(t)

	require.ErrorIs(t, device.Buzzer(BuzzerOn), ErrInvalidState)

	_, err := device.CheckROMVersion()
	require.NoError(t, err)
	require.NoError(t, device.SetCommandMode())
	require.NoError(t, device.Buzzer(BuzzerOn))
	assert.Equal(t, 1, countCommands(mt, cmdBuzzer))
}
