package client

import (
	"errors"
	"fmt"

	"txsitter/message"
)

// Kind classifies every failure of the tx-sitter client.
type Kind int

const (
	// KindSerialization: encoding the request or decoding a JSON-RPC reply failed.
	KindSerialization Kind = iota + 1
	// KindTransport: the invocation channel call itself failed.
	KindTransport
	// KindMissingPayload: the channel succeeded with an empty reply.
	KindMissingPayload
	// KindMalformed: a sitter reply was not UTF-8, not parseable, or lacked a field.
	KindMalformed
	// KindRPC: the remote JSON-RPC layer answered with an error object.
	KindRPC
	// KindNotFound: a by-id lookup found no transaction.
	KindNotFound
	// KindOther: a JSON-RPC reply broke result/error exclusivity.
	KindOther
)

var kindNames = map[Kind]string{
	KindSerialization:  "serialization",
	KindTransport:      "transport",
	KindMissingPayload: "missing payload",
	KindMalformed:      "malformed",
	KindRPC:            "rpc",
	KindNotFound:       "not found",
	KindOther:          "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrSerialization  = &Error{Kind: KindSerialization}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrMissingPayload = &Error{Kind: KindMissingPayload}
	ErrMalformed      = &Error{Kind: KindMalformed}
	ErrRPC            = &Error{Kind: KindRPC}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrOther          = &Error{Kind: KindOther}
)

// Error is the single error type returned by Client and RPCClient.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "relay" or "rpc eth_call".
	Op string
	// RPC is set for KindRPC.
	RPC *message.RPCError
	// Msg is set for KindOther and KindNotFound.
	Msg string
	// Err is the underlying codec or channel error.
	Err error
}

func (e *Error) Error() string {
	var detail string
	switch e.Kind {
	case KindMissingPayload:
		detail = "no payload returned from the invocation"
	case KindRPC:
		detail = "rpc returned with an error"
		if e.RPC != nil {
			detail += ": " + e.RPC.Error()
		}
	case KindNotFound, KindOther:
		detail = e.Msg
	default:
		detail = e.Kind.String()
		if e.Err != nil {
			detail += ": " + e.Err.Error()
		}
	}
	if e.Op == "" {
		return "txsitter: " + detail
	}
	return "txsitter: " + e.Op + ": " + detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by Kind, so errors.Is(err, ErrNotFound) works for any
// not-found error regardless of its operation or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.RPC == nil && t.Msg == "" && t.Kind == e.Kind
}

// AsErrorResponse returns the JSON-RPC error object when the remote
// JSON-RPC layer rejected the call.
func (e *Error) AsErrorResponse() (*message.RPCError, bool) {
	if e.Kind == KindRPC && e.RPC != nil {
		return e.RPC, true
	}
	return nil, false
}

// AsSerializationError returns the codec error behind a serialization or
// malformed-reply failure.
func (e *Error) AsSerializationError() (error, bool) {
	if (e.Kind == KindSerialization || e.Kind == KindMalformed) && e.Err != nil {
		return e.Err, true
	}
	return nil, false
}

// IsRPCError reports whether err, or any error it wraps, is a JSON-RPC
// application error, and returns it.
func IsRPCError(err error) (*message.RPCError, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.AsErrorResponse()
	}
	return nil, false
}

// IsSerializationError reports whether err wraps a codec failure.
func IsSerializationError(err error) (error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.AsSerializationError()
	}
	return nil, false
}

func serializationError(op string, err error) *Error {
	return &Error{Kind: KindSerialization, Op: op, Err: err}
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func malformedError(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}

func missingPayloadError(op string) *Error {
	return &Error{Kind: KindMissingPayload, Op: op}
}
