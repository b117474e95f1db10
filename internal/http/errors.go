package http

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind categorizes a failed exchange.
type ErrorKind int

const (
	// KindURL is a malformed URL or query.
	KindURL ErrorKind = iota + 1
	// KindHeader is an invalid header name or value.
	KindHeader
	// KindNetwork is a DNS, connect, TLS or timeout failure in the transport.
	KindNetwork
	// KindEncoding is a non UTF-8 header value or an undecodable body.
	KindEncoding
	// KindIO is a failure while reading the response body.
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindHeader:
		return "header"
	case KindNetwork:
		return "network"
	case KindEncoding:
		return "encoding"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client.Do and RequestSpec.Normalize.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Category is the wire name of the error kind.
func (e *Error) Category() string {
	return e.Kind.String()
}

// MarshalJSON renders the error as {"message": ..., "category": ...}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message  string `json:"message"`
		Category string `json:"category"`
	}{
		Message:  e.Error(),
		Category: e.Category(),
	})
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
