package completion

import (
	"errors"
	"fmt"
)

// ErrorKind classifies assistant-path failures. Node-source failures
// never reach this taxonomy; they are absorbed by the registry.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindConfig: no usable credential; detected before any network call.
	KindConfig
	// KindTransport: network failure or timeout reaching the backend.
	KindTransport
	// KindUpstream: backend reachable but returned a failure status or
	// an unexpected envelope.
	KindUpstream
	// KindParse: backend succeeded but its reply is not interpretable.
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "CONFIG"
	case KindTransport:
		return "TRANSPORT"
	case KindUpstream:
		return "UPSTREAM"
	case KindParse:
		return "PARSE"
	default:
		return "UNKNOWN"
	}
}

// Error carries the failure class for a completion round trip.
type Error struct {
	Kind     ErrorKind
	Message  string
	Status   int // HTTP status from the backend, when applicable
	Original error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Original != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Original)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Original
}

// NewConfigError reports a missing credential.
func NewConfigError(msg string) *Error {
	return &Error{Kind: KindConfig, Message: msg}
}

// NewTransportError wraps a network or timeout failure.
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "backend unreachable", Original: err}
}

// NewUpstreamError reports a backend-side failure. msg should carry the
// backend's own error text when it provided one.
func NewUpstreamError(status int, msg string) *Error {
	if msg == "" {
		msg = "backend returned an unexpected response"
	}
	return &Error{Kind: KindUpstream, Message: msg, Status: status}
}

// NewParseError reports an uninterpretable backend reply.
func NewParseError(msg string, err error) *Error {
	return &Error{Kind: KindParse, Message: msg, Original: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
