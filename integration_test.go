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

package tr3_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tr3 "github.com/ZaparooProject/go-tr3"
	"github.com/ZaparooProject/go-tr3/internal/simulator"
	"github.com/ZaparooProject/go-tr3/polling"
	"github.com/ZaparooProject/go-tr3/transport/tcp"
)

// startMockReader serves a simulated TR3 on a loopback listener.
func startMockReader(t *testing.T) (*simulator.Device, string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	sim := simulator.New()
	go func() { _ = sim.Serve(listener) }()
	return sim, listener.Addr().String()
}

// The complete workflow against a live socket: connect, initialization
// sequence, inventory sweep, teardown.
func TestSessionOverTCP(t *testing.T) {
	t.Parallel()
	_, addr := startMockReader(t)

	transport, err := tcp.New(addr, 2*time.Second)
	require.NoError(t, err)

	device, err := tr3.New(transport,
		tr3.WithTimeout(time.Second),
		tr3.WithAntennaCount(2),
	)
	require.NoError(t, err)
	defer func() { _ = device.Close() }()

	require.NoError(t, device.Connect())

	rom, err := device.CheckROMVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.05.2 TR3A1", rom.String())

	require.NoError(t, device.SetCommandMode())
	require.NoError(t, device.EnsureAntiCollisionHighSpeed3())
	require.NoError(t, device.PrepareInventory())

	for antenna := 0; antenna < 2; antenna++ {
		tags, err := device.RunInventoryCycle(antenna)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "BC9A7856341204E0", tags[0].UIDString())
		assert.Equal(t, "FF103254769804E0", tags[1].UIDString())
	}
}

func TestPollingSweepOverTCP(t *testing.T) {
	t.Parallel()
	sim, addr := startMockReader(t)
	sim.SetTags([][]byte{
		{0x00, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12, 0x04, 0xE0},
	})

	transport, err := tcp.New(addr, 2*time.Second)
	require.NoError(t, err)

	device, err := tr3.New(transport,
		tr3.WithTimeout(time.Second),
		tr3.WithAntennaCount(2),
	)
	require.NoError(t, err)
	defer func() { _ = device.Close() }()

	require.NoError(t, device.Connect())
	require.NoError(t, device.Initialize())

	runner, err := polling.NewRunner(device, &polling.Config{Reads: 3, Interval: 0})
	require.NoError(t, err)

	type cycle struct {
		read, antenna, tags int
	}
	var cycles []cycle
	runner.OnTags = func(read, antenna int, tags []tr3.Tag) {
		cycles = append(cycles, cycle{read, antenna, len(tags)})
	}

	require.NoError(t, runner.Run(context.Background()))
	require.Len(t, cycles, 6) // 3 reads x 2 antennas
	for _, c := range cycles {
		assert.Equal(t, 1, c.tags)
	}
	assert.False(t, runner.IsRunning())
}

func TestTimeoutAgainstDeadListener(t *testing.T) {
	t.Parallel()
	// A listener that accepts and then says nothing.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn // hold it open, never reply
		}
	}()

	transport, err := tcp.New(listener.Addr().String(), 2*time.Second)
	require.NoError(t, err)

	device, err := tr3.New(transport, tr3.WithTimeout(100*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = device.Close() }()

	require.NoError(t, device.Connect())
	_, err = device.CheckROMVersion()
	require.ErrorIs(t, err, tr3.ErrResponseTimeout)
	assert.Equal(t, tr3.StateDisconnected, device.State())
}
