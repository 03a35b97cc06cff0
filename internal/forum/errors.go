package forum

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteCall matches every failure surfaced by the client, whatever
	// its cause: transport, HTTP status, or response shape.
	ErrRemoteCall = errors.New("forum remote call failed")

	// ErrMalformedResponse matches responses that decoded but did not carry
	// the expected structure.
	ErrMalformedResponse = errors.New("malformed forum response")
)

// RemoteCallError reports a network failure or a non-2xx answer.
type RemoteCallError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("forum %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("forum %s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

// MalformedResponseError reports a response whose payload does not have the
// shape the operation depends on.
type MalformedResponseError struct {
	Op     string
	Detail string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("forum %s: malformed response: %s", e.Op, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrRemoteCall || target == ErrMalformedResponse
}
