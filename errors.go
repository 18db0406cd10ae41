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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-tr3/internal/frame"
)

// Transport-level errors
var (
	// ErrNotConnected means an operation was attempted without an open
	// transport connection.
	ErrNotConnected = errors.New("transport not connected")

	// ErrTransportRead means reading from the transport failed.
	ErrTransportRead = errors.New("transport read failed")

	// ErrTransportWrite means writing to the transport failed.
	ErrTransportWrite = errors.New("transport write failed")

	// ErrTransportTimeout means a transport read or write hit its deadline.
	ErrTransportTimeout = errors.New("transport timeout")

	// ErrConnectionClosed means the peer closed the connection.
	ErrConnectionClosed = errors.New("connection closed")
)

// Session-level errors
var (
	// ErrResponseTimeout means no complete, valid response frame arrived
	// within the exchange window. The session drops to Disconnected: the
	// protocol has no resynchronization token, so the caller must
	// reconnect and redo initialization.
	ErrResponseTimeout = errors.New("response timeout")

	// ErrSessionLost means the connection failed mid-exchange.
	ErrSessionLost = errors.New("session lost")

	// ErrUnexpectedResponse means a structurally valid frame arrived whose
	// command byte does not match the pending exchange. Fatal to the
	// current operation, not the session.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrCommandRejected means the reader NAKed the command.
	ErrCommandRejected = errors.New("command rejected by reader")

	// ErrInvalidState means the operation is not legal in the session's
	// current lifecycle state.
	ErrInvalidState = errors.New("operation not valid in current session state")

	// ErrInvalidAntenna means the antenna index is outside the configured
	// antenna count. Rejected before any I/O.
	ErrInvalidAntenna = errors.New("antenna index out of range")
)

// Frame-level errors, surfaced from the codec for callers that need to
// distinguish framing damage from bit-level corruption.
var (
	ErrPayloadTooLarge  = frame.ErrPayloadTooLarge
	ErrFrameMalformed   = frame.ErrFrameMalformed
	ErrChecksumMismatch = frame.ErrChecksumMismatch
)

// ErrorType classifies an error for retry decisions made by callers.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTransient errors may succeed on a fresh session.
	ErrorTypeTransient
	// ErrorTypePermanent errors will not succeed without intervention.
	ErrorTypePermanent
	// ErrorTypeTimeout errors are deadline expiries.
	ErrorTypeTimeout
)

// TransportError wraps a transport failure with the operation and port it
// occurred on.
type TransportError struct {
	Err  error
	Op   string
	Port string
	Type ErrorType
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("transport %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError for the given operation.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{Op: op, Port: port, Err: err, Type: errType}
}

// NewTimeoutError creates a TransportError for a deadline expiry.
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{Op: op, Port: port, Err: ErrTransportTimeout, Type: ErrorTypeTimeout}
}

// GetErrorType classifies err into an ErrorType.
func GetErrorType(err error) ErrorType {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrResponseTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrConnectionClosed),
		errors.Is(err, ErrSessionLost),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrFrameMalformed):
		return ErrorTypeTransient
	case errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrInvalidAntenna),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNotConnected):
		return ErrorTypePermanent
	default:
		return ErrorTypeUnknown
	}
}

// IsRetryable reports whether a caller may reasonably retry after err on a
// fresh session. The engine itself never retries an exchange: a stateful
// command may already have executed on the reader.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch GetErrorType(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	case ErrorTypeUnknown, ErrorTypePermanent:
		return false
	default:
		return false
	}
}
