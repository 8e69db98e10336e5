package wsclient

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a client error
type ErrorType int

const (
	// ErrTypeNotReady indicates a send was attempted while the connection was not open
	ErrTypeNotReady ErrorType = iota
	// ErrTypeEncode indicates the request could not be serialized
	ErrTypeEncode
	// ErrTypeTransport indicates the write to the connection failed
	ErrTypeTransport
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNotReady:
		return "Not Connected"
	case ErrTypeEncode:
		return "Encode Error"
	case ErrTypeTransport:
		return "Transport Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ClientError is returned by Client.Send
type ClientError struct {
	Type     ErrorType
	Message  string
	State    State  // Connection state when the error occurred
	Endpoint string // Endpoint URL (for context)
	Err      error  // Underlying error (if any)
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ClientError) Unwrap() error {
	return e.Err
}

func newNotReadyError(endpoint string, state State) *ClientError {
	return &ClientError{
		Type:     ErrTypeNotReady,
		Message:  fmt.Sprintf("connection is %s", state),
		State:    state,
		Endpoint: endpoint,
	}
}

func newEncodeError(endpoint string, err error) *ClientError {
	return &ClientError{
		Type:     ErrTypeEncode,
		Message:  "failed to encode request",
		State:    StateOpen,
		Endpoint: endpoint,
		Err:      err,
	}
}

func newTransportError(endpoint string, err error) *ClientError {
	return &ClientError{
		Type:     ErrTypeTransport,
		Message:  "failed to write request",
		State:    StateOpen,
		Endpoint: endpoint,
		Err:      err,
	}
}

func isType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}

// IsNotReadyError checks if an error reports a send on a connection that was not open
func IsNotReadyError(err error) bool {
	return isType(err, ErrTypeNotReady)
}

// IsTransportError checks if an error is a write failure
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsEncodeError checks if an error is a serialization failure
func IsEncodeError(err error) bool {
	return isType(err, ErrTypeEncode)
}
