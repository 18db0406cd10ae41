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
	"sync"
	"time"

	"github.com/ZaparooProject/go-tr3/internal/frame"
)

// SentFrame is one decoded request recorded by the mock transport.
type SentFrame struct {
	Data    []byte
	Address byte
	Command byte
}

// MockTransport is an in-memory Transport for tests. Frames written with
// Send are decoded and recorded; the configured ResponseFunc produces the
// byte chunks a subsequent ReceiveSome will return, so tests control both
// the replies and how they are chunked on the simulated wire.
type MockTransport struct {
	// ResponseFunc maps one received request to the raw chunks the reader
	// would send back. Nil means no reply (a silent device).
	ResponseFunc func(address, command byte, data []byte) [][]byte

	reasm  *frame.Reassembler
	rx     [][]byte
	sent   []SentFrame
	mu     sync.Mutex
	closed bool
}

// NewMockTransport creates an idle mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{reasm: frame.NewReassembler()}
}

// Send records the decoded request and queues the scripted reply chunks.
func (m *MockTransport) Send(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return NewTransportError("send", "mock", ErrConnectionClosed, ErrorTypeTransient)
	}
	for _, f := range m.reasm.Feed(p) {
		m.sent = append(m.sent, SentFrame{Address: f.Address, Command: f.Command, Data: f.Data})
		if m.ResponseFunc != nil {
			m.rx = append(m.rx, m.ResponseFunc(f.Address, f.Command, f.Data)...)
		}
	}
	return nil
}

// ReceiveSome pops the next queued chunk. An empty queue reports a
// timeout immediately rather than sleeping out the window.
func (m *MockTransport) ReceiveSome(_ time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, NewTransportError("receive", "mock", ErrConnectionClosed, ErrorTypeTransient)
	}
	if len(m.rx) == 0 {
		return nil, NewTimeoutError("receive", "mock")
	}
	chunk := m.rx[0]
	m.rx = m.rx[1:]
	return chunk, nil
}

// Close marks the transport closed; further operations fail.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns true until Close is called.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// QueueBytes appends raw chunks to the receive queue, bypassing
// ResponseFunc. Used to inject garbage, truncated frames or unsolicited
// traffic.
func (m *MockTransport) QueueBytes(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rx = append(m.rx, chunks...)
}

// SentFrames returns the decoded requests sent so far.
func (m *MockTransport) SentFrames() []SentFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentFrame, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentCommands returns just the command bytes of the frames sent so far.
func (m *MockTransport) SentCommands() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, 0, len(m.sent))
	for _, f := range m.sent {
		out = append(out, f.Command)
	}
	return out
}
