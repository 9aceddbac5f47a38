package udp

import (
	"fmt"
)

// BindError is fatal: the responder never started.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// DecodeError means one datagram was skipped. The loop keeps going.
type DecodeError struct {
	From   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode datagram"
	if e.From != "" {
		msg += " from " + e.From
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SendError means one acknowledgment was lost. The loop keeps going.
type SendError struct {
	Dest string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send acknowledgment to %s: %v", e.Dest, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
