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
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ZaparooProject/go-tr3/internal/frame"
)

// SessionState is the lifecycle phase of a Device session. Transitions are
// driven by successful request/response exchanges; a timeout or transport
// failure in any exchange drops the session back to StateDisconnected,
// since the protocol offers no mid-sequence resynchronization token.
type SessionState string

// Session lifecycle states, in initialization order.
const (
	StateDisconnected            SessionState = "disconnected"
	StateConnected               SessionState = "connected"
	StateROMChecked              SessionState = "rom_checked"
	StateCommandMode             SessionState = "command_mode"
	StateAntiCollisionConfigured SessionState = "anti_collision_configured"
	StateReady                   SessionState = "ready"
	StateInventorying            SessionState = "inventorying"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Timeout bounds each request/response exchange.
	Timeout time.Duration
	// AntennaCount is how many antennas the reader is fitted with.
	AntennaCount int
	// Address is the reader address placed in every frame, 0x00 for a
	// single directly attached reader.
	Address byte
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:      2 * time.Second,
		AntennaCount: 1,
		Address:      0x00,
	}
}

// Device drives one TR3 reader/writer session over a Transport. It owns
// the connection and the receive reassembler exclusively and runs strictly
// sequential exchanges: the protocol has no request identifiers, so at
// most one request may be in flight at a time.
//
// Thread Safety: Device is NOT thread-safe. All methods must be called
// from a single goroutine or protected with external synchronization. Run
// one Device per reader; separate Devices with separate transports may
// operate concurrently.
type Device struct {
	transport Transport
	config    *DeviceConfig
	logger    *zap.Logger
	reasm     *frame.Reassembler
	pending   []frame.Frame
	rom       *ROMVersion
	state     SessionState
}

// New creates a new TR3 device session on the given transport. The session
// starts in StateDisconnected; call Connect once the transport is up.
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		logger:    zap.NewNop(),
		reasm:     frame.NewReassembler(),
		state:     StateDisconnected,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// State returns the current session lifecycle state.
func (d *Device) State() SessionState {
	return d.state
}

// ROMVersion returns the firmware version read by CheckROMVersion, or nil
// before that.
func (d *Device) ROMVersion() *ROMVersion {
	return d.rom
}

// AntennaCount returns the configured antenna count.
func (d *Device) AntennaCount() int {
	return d.config.AntennaCount
}

// Connect binds the session to its connected transport. Transport-level
// only, no protocol frames are exchanged.
func (d *Device) Connect() error {
	if d.state != StateDisconnected {
		return fmt.Errorf("connect: %w: session is %s", ErrInvalidState, d.state)
	}
	if d.transport == nil || !d.transport.IsConnected() {
		return fmt.Errorf("connect: %w", ErrNotConnected)
	}
	d.reasm.Reset()
	d.pending = d.pending[:0]
	d.setState(StateConnected)
	return nil
}

// Close tears down the transport and resets the session.
func (d *Device) Close() error {
	d.setState(StateDisconnected)
	d.reasm.Reset()
	d.pending = nil
	if d.transport == nil {
		return nil
	}
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// CheckROMVersion reads the reader's firmware version. First protocol
// exchange of a session; it doubles as the capability check that a live
// TR3 is on the other end.
func (d *Device) CheckROMVersion() (*ROMVersion, error) {
	if err := d.requireState("check ROM version", StateConnected); err != nil {
		return nil, err
	}
	reply, err := d.exchange("check ROM version", cmdReadRegister, payloadCheckROM)
	if err != nil {
		return nil, err
	}
	rom, err := parseROMVersion(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("check ROM version: %w", err)
	}
	d.rom = rom
	d.logger.Info("ROM version read", zap.String("version", rom.String()))
	d.setState(StateROMChecked)
	return rom, nil
}

// SetCommandMode switches the reader into command mode, where it only acts
// on explicit host commands.
func (d *Device) SetCommandMode() error {
	if err := d.requireState("set command mode", StateROMChecked); err != nil {
		return err
	}
	reply, err := d.exchange("set command mode", cmdWriteRegister, payloadSetCommandMode)
	if err != nil {
		return err
	}
	if err := checkAck("set command mode", reply); err != nil {
		return err
	}
	d.setState(StateCommandMode)
	return nil
}

// EnsureAntiCollisionHighSpeed3 reads the anti-collision mode register and
// writes it to high-speed mode 3 only if it is not already there, so a
// reader already configured is not rewritten on every session.
func (d *Device) EnsureAntiCollisionHighSpeed3() error {
	if err := d.requireState("configure anti-collision", StateCommandMode); err != nil {
		return err
	}
	reply, err := d.exchange("check anti-collision mode", cmdReadRegister,
		readRegisterPayload(regAntiCollision))
	if err != nil {
		return err
	}
	if len(reply.Data) < 2 || reply.Data[0] != regAntiCollision {
		return fmt.Errorf("check anti-collision mode: %w: data % X",
			ErrUnexpectedResponse, reply.Data)
	}

	if mode := reply.Data[1]; mode != AntiCollisionHighSpeed3 {
		d.logger.Info("switching anti-collision mode",
			zap.Uint8("from", mode), zap.Uint8("to", AntiCollisionHighSpeed3))
		ack, err := d.exchange("set anti-collision mode", cmdWriteRegister,
			writeRegisterPayload(regAntiCollision, AntiCollisionHighSpeed3))
		if err != nil {
			return err
		}
		if err := checkAck("set anti-collision mode", ack); err != nil {
			return err
		}
	}
	d.setState(StateAntiCollisionConfigured)
	return nil
}

// PrepareInventory marks the session eligible for read cycles.
func (d *Device) PrepareInventory() error {
	if err := d.requireState("prepare inventory", StateAntiCollisionConfigured); err != nil {
		return err
	}
	d.setState(StateReady)
	return nil
}

// RunInventoryCycle switches to the given antenna, runs Inventory2 and
// returns the tags found, possibly none. Multiple tags per cycle is an
// expected outcome, not an error. Each detected tag triggers one buzzer
// command.
func (d *Device) RunInventoryCycle(antenna int) ([]Tag, error) {
	if err := d.requireState("inventory cycle", StateReady); err != nil {
		return nil, err
	}
	payload, err := switchAntennaPayload(antenna, d.config.AntennaCount)
	if err != nil {
		return nil, fmt.Errorf("inventory cycle: %w", err)
	}

	d.setState(StateInventorying)
	defer func() {
		// A failed exchange already dropped the session; only a cycle
		// still in flight returns to Ready.
		if d.state == StateInventorying {
			d.setState(StateReady)
		}
	}()

	ack, err := d.exchange("switch antenna", cmdWriteRegister, payload)
	if err != nil {
		return nil, err
	}
	if err := checkAck("switch antenna", ack); err != nil {
		return nil, err
	}

	reply, err := d.exchange("inventory2", cmdInventory2, payloadInventory2)
	if err != nil {
		return nil, err
	}
	if len(reply.Data) < 2 || reply.Data[0] != payloadInventory2[0] {
		return nil, fmt.Errorf("inventory2: %w: ack data % X", ErrUnexpectedResponse, reply.Data)
	}
	count := int(reply.Data[1])

	tags := make([]Tag, 0, count)
	for i := 0; i < count; i++ {
		f, err := d.nextFrame("inventory2 tag", d.config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("inventory2 tag %d/%d: %w", i+1, count, err)
		}
		if f.Command != cmdTagData || len(f.Data) != 9 {
			return nil, fmt.Errorf("inventory2 tag %d/%d: %w: command %s data % X",
				i+1, count, ErrUnexpectedResponse, commandName(f.Command), f.Data)
		}
		tag := newTag(f.Data)
		d.logger.Info("tag detected",
			zap.Int("antenna", antenna),
			zap.String("uid", tag.UIDString()),
			zap.Uint8("dsfid", tag.DSFID))
		tags = append(tags, tag)
	}

	for range tags {
		ack, err := d.exchange("buzzer", cmdBuzzer, buzzerPayload(BuzzerOn))
		if err != nil {
			return nil, err
		}
		if err := checkAck("buzzer", ack); err != nil {
			return nil, err
		}
	}

	return tags, nil
}

// Buzzer sounds the reader's buzzer once. Available any time after the
// session reaches command mode.
func (d *Device) Buzzer(mode byte) error {
	switch d.state {
	case StateCommandMode, StateAntiCollisionConfigured, StateReady:
	case StateDisconnected, StateConnected, StateROMChecked, StateInventorying:
		return fmt.Errorf("buzzer: %w: session is %s", ErrInvalidState, d.state)
	}
	reply, err := d.exchange("buzzer", cmdBuzzer, buzzerPayload(mode))
	if err != nil {
		return err
	}
	return checkAck("buzzer", reply)
}

// exchange runs one strictly sequential request/response: encode, send,
// then wait for the next complete frame within the configured window and
// require its command byte to echo the request.
func (d *Device) exchange(op string, command byte, payload []byte) (frame.Frame, error) {
	raw, err := frame.Encode(d.config.Address, command, payload)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", op, err)
	}

	d.logger.Debug("frame sent",
		zap.String("op", op),
		zap.String("command", commandName(command)),
		zap.String("raw", hex.EncodeToString(raw)))
	if err := d.transport.Send(raw); err != nil {
		d.drop("send failed")
		return frame.Frame{}, fmt.Errorf("%s: %w: %v", op, ErrSessionLost, err)
	}

	reply, err := d.nextFrame(op, d.config.Timeout)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", op, err)
	}
	if reply.Command != command {
		return frame.Frame{}, fmt.Errorf("%s: %w: got %s, want %s", op,
			ErrUnexpectedResponse, commandName(reply.Command), commandName(command))
	}
	return reply, nil
}

// nextFrame returns the next complete frame, reading from the transport
// until one arrives or the window elapses. Frames beyond the first in a
// read are queued for subsequent calls (the reader streams tag
// notifications back-to-back after an Inventory2 ack).
func (d *Device) nextFrame(op string, window time.Duration) (frame.Frame, error) {
	if len(d.pending) > 0 {
		f := d.pending[0]
		d.pending = d.pending[1:]
		d.logReceived(op, f)
		return f, nil
	}

	deadline := time.Now().Add(window)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			d.drop("response timeout")
			return frame.Frame{}, ErrResponseTimeout
		}

		chunk, err := d.transport.ReceiveSome(remaining)
		if err != nil {
			if GetErrorType(err) == ErrorTypeTimeout {
				d.drop("response timeout")
				return frame.Frame{}, ErrResponseTimeout
			}
			d.drop("receive failed")
			return frame.Frame{}, fmt.Errorf("%w: %v", ErrSessionLost, err)
		}

		// Corrupted or misaligned bytes are absorbed here as resync; if
		// that eats the expected response, the deadline above promotes it
		// to a timeout.
		frames := d.reasm.Feed(chunk)
		if len(frames) == 0 {
			continue
		}
		d.pending = append(d.pending, frames[1:]...)
		d.logReceived(op, frames[0])
		return frames[0], nil
	}
}

func (d *Device) logReceived(op string, f frame.Frame) {
	d.logger.Debug("frame received",
		zap.String("op", op),
		zap.String("command", commandName(f.Command)),
		zap.String("raw", hex.EncodeToString(f.Raw)))
}

// drop abandons the session after an unrecoverable exchange failure. The
// transport stays open; callers decide whether to Close and redial.
func (d *Device) drop(reason string) {
	if d.state == StateDisconnected {
		return
	}
	d.logger.Warn("session dropped", zap.String("reason", reason), zap.String("state", string(d.state)))
	d.state = StateDisconnected
	d.reasm.Reset()
	d.pending = nil
}

func (d *Device) setState(state SessionState) {
	if d.state == state {
		return
	}
	d.logger.Debug("session state",
		zap.String("from", string(d.state)), zap.String("to", string(state)))
	d.state = state
}

func (d *Device) requireState(op string, want SessionState) error {
	if d.state != want {
		return fmt.Errorf("%s: %w: session is %s, want %s", op, ErrInvalidState, d.state, want)
	}
	return nil
}

// checkAck validates the ack/NAK status byte of a write or buzzer reply.
func checkAck(op string, f frame.Frame) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%s: %w: empty ack data", op, ErrUnexpectedResponse)
	}
	switch f.Data[0] {
	case statusACK:
		return nil
	case statusNAK:
		return fmt.Errorf("%s: %w", op, ErrCommandRejected)
	default:
		return fmt.Errorf("%s: %w: status %#02x", op, ErrUnexpectedResponse, f.Data[0])
	}
}

// Initialize runs the whole startup sequence in order: ROM check, command
// mode, anti-collision configuration, inventory preparation. Convenience
// for callers that do not need to observe intermediate states.
func (d *Device) Initialize() error {
	if _, err := d.CheckROMVersion(); err != nil {
		return err
	}
	if err := d.SetCommandMode(); err != nil {
		return err
	}
	if err := d.EnsureAntiCollisionHighSpeed3(); err != nil {
		return err
	}
	return d.PrepareInventory()
}
