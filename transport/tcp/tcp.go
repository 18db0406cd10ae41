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

// Package tcp provides the LAN transport for TR3 readers with an Ethernet
// interface board.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	tr3 "github.com/ZaparooProject/go-tr3"
)

const writeTimeout = 5 * time.Second

// Transport implements tr3.Transport over a TCP connection.
type Transport struct {
	conn      net.Conn
	addr      string
	buf       []byte
	mu        sync.Mutex
	connected bool
}

// New dials addr ("host:port") with the given connect timeout.
func New(addr string, timeout time.Duration) (*Transport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return NewContext(ctx, addr)
}

// NewContext dials addr under the given context.
func NewContext(ctx context.Context, addr string) (*Transport, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Transport{
		conn:      conn,
		addr:      addr,
		buf:       make([]byte, 4096),
		connected: true,
	}, nil
}

// Send writes p to the reader.
func (t *Transport) Send(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return tr3.NewTransportError("send", t.addr, tr3.ErrNotConnected, tr3.ErrorTypePermanent)
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return tr3.NewTransportError("send", t.addr, err, tr3.ErrorTypeTransient)
	}
	if _, err := t.conn.Write(p); err != nil {
		if isTimeout(err) {
			return tr3.NewTimeoutError("send", t.addr)
		}
		return tr3.NewTransportError("send", t.addr, tr3.ErrTransportWrite, tr3.ErrorTypeTransient)
	}
	return nil
}

// ReceiveSome blocks up to timeout and returns whatever bytes arrived.
func (t *Transport) ReceiveSome(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, tr3.NewTransportError("receive", t.addr, tr3.ErrNotConnected, tr3.ErrorTypePermanent)
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, tr3.NewTransportError("receive", t.addr, err, tr3.ErrorTypeTransient)
	}
	n, err := t.conn.Read(t.buf)
	if err != nil {
		switch {
		case isTimeout(err):
			return nil, tr3.NewTimeoutError("receive", t.addr)
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			t.connected = false
			return nil, tr3.NewTransportError("receive", t.addr, tr3.ErrConnectionClosed, tr3.ErrorTypeTransient)
		default:
			return nil, tr3.NewTransportError("receive", t.addr, tr3.ErrTransportRead, tr3.ErrorTypeTransient)
		}
	}

	out := make([]byte, n)
	copy(out, t.buf[:n])
	return out, nil
}

// Close closes the connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.addr, err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type returns tr3.TransportTCP
func (*Transport) Type() tr3.TransportType {
	return tr3.TransportTCP
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
