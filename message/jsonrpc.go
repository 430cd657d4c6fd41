package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the JSON-RPC protocol version. Only "2.0" decodes.
type Version struct{}

const versionLiteral = "2.0"

func (Version) String() string { return versionLiteral }

func (Version) MarshalText() ([]byte, error) {
	return []byte(versionLiteral), nil
}

func (*Version) UnmarshalText(text []byte) error {
	if string(text) != versionLiteral {
		return fmt.Errorf("unsupported jsonrpc version %q", text)
	}
	return nil
}

// Request is a JSON-RPC 2.0 call.
type Request struct {
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	JSONRPC Version         `json:"jsonrpc"`
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("(code: %d, message: %s)", e.Code, e.Message)
}

// ErrorCode and ErrorData let go-ethereum style consumers inspect the error.
func (e *RPCError) ErrorCode() int { return e.Code }

func (e *RPCError) ErrorData() any {
	if len(e.Data) == 0 {
		return nil
	}
	return e.Data
}

// Response is a JSON-RPC 2.0 reply. Result stays raw until Validate has
// checked that exactly one of Result and Error is present; a literal
// "result": null counts as absent.
type Response struct {
	ID      int             `json:"id"`
	JSONRPC Version         `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

var (
	ErrResultAndError   = errors.New("response carries both result and error")
	ErrNoResultNorError = errors.New("response carries neither result nor error")
	nullLiteral         = []byte("null")
)

// Validate enforces the result/error exclusivity of a decoded response.
func (r *Response) Validate() error {
	hasResult := len(r.Result) > 0 && !r.NullResult()
	hasError := r.Error != nil
	switch {
	case hasResult && hasError:
		return ErrResultAndError
	case !hasResult && !hasError:
		return ErrNoResultNorError
	}
	return nil
}

// NullResult reports whether the response carries "result": null.
func (r *Response) NullResult() bool {
	return bytes.Equal(bytes.TrimSpace(r.Result), nullLiteral)
}

// RPCEnvelope is the request shape of the rpc function: a JSON-RPC call
// scoped to one relayer.
type RPCEnvelope struct {
	Payload   Request `json:"payload"`
	RelayerID string  `json:"relayerId"`
}
