package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"txsitter/message"
)

var (
	// ErrNoTransactions means a by-id reply had no "transactions" array or an
	// empty one.
	ErrNoTransactions = errors.New("transaction not found")
	// ErrMissingField means a record lacked a required key.
	ErrMissingField = errors.New("missing required field")
)

var nullLiteral = []byte("null")

// Envelope encodes and decodes the request/response shapes of the send, rpc
// and transactions functions.
type Envelope struct {
	codec Codec
}

// NewEnvelope returns an Envelope over c, or over JSONCodec when c is nil.
func NewEnvelope(c Codec) *Envelope {
	if c == nil {
		c = &JSONCodec{}
	}
	return &Envelope{codec: c}
}

func (e *Envelope) Codec() Codec {
	return e.codec
}

// EncodeSend encodes the payload of the send function.
func (e *Envelope) EncodeSend(in message.TransactionInput) ([]byte, error) {
	return e.codec.Encode(in)
}

// DecodeSend extracts the transaction id from a send reply.
func (e *Envelope) DecodeSend(payload []byte) (string, error) {
	if err := e.requireFields(payload, message.SendResponseFields); err != nil {
		return "", err
	}
	var resp message.SendResponse
	if err := e.codec.Decode(payload, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

// EncodeRPC wraps method and params into a JSON-RPC request with id 1 and
// scopes it to relayerID.
func (e *Envelope) EncodeRPC(relayerID, method string, params any) ([]byte, error) {
	raw, err := e.encodeParams(params)
	if err != nil {
		return nil, err
	}
	return e.codec.Encode(message.RPCEnvelope{
		Payload: message.Request{
			ID:     1,
			Method: method,
			Params: raw,
		},
		RelayerID: relayerID,
	})
}

func (e *Envelope) encodeParams(params any) (json.RawMessage, error) {
	if params == nil {
		return json.RawMessage("[]"), nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		if len(raw) == 0 {
			return json.RawMessage("[]"), nil
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("params are not valid JSON")
		}
		return raw, nil
	}
	data, err := e.codec.Encode(params)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// DecodeRPC decodes a JSON-RPC reply of the rpc function. It does not check
// result/error exclusivity; callers run Response.Validate.
func (e *Envelope) DecodeRPC(payload []byte) (*message.Response, error) {
	var resp message.Response
	if err := e.codec.Decode(payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EncodeQuery encodes a tagged query for the transactions function.
func (e *Envelope) EncodeQuery(req message.TransactionRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("nil transaction request")
	}
	return e.codec.Encode(req)
}

// DecodeTransactionList decodes the reply of a by-relayer query: a bare
// array of TransactionInput-shaped records.
func (e *Envelope) DecodeTransactionList(payload []byte) ([]message.TransactionInput, error) {
	var items []json.RawMessage
	if err := e.codec.Decode(payload, &items); err != nil {
		return nil, err
	}

	txs := make([]message.TransactionInput, 0, len(items))
	for i, item := range items {
		if err := e.requireFields(item, message.TransactionInputFields); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		var tx message.TransactionInput
		if err := e.codec.Decode(item, &tx); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DecodeTransactionByID decodes the first element of the "transactions"
// array of a by-id reply. ErrNoTransactions is returned when the reply is not
// an object, or the array is absent, not an array, or empty.
func (e *Envelope) DecodeTransactionByID(payload []byte) (message.Transaction, error) {
	var root json.RawMessage
	if err := e.codec.Decode(payload, &root); err != nil {
		return message.Transaction{}, err
	}

	var fields map[string]json.RawMessage
	if err := e.codec.Decode(root, &fields); err != nil {
		return message.Transaction{}, ErrNoTransactions
	}
	field, ok := fields["transactions"]
	if !ok {
		return message.Transaction{}, ErrNoTransactions
	}
	var items []json.RawMessage
	if err := e.codec.Decode(field, &items); err != nil || len(items) == 0 {
		return message.Transaction{}, ErrNoTransactions
	}

	if err := e.requireFields(items[0], message.TransactionFields); err != nil {
		return message.Transaction{}, err
	}
	var tx message.Transaction
	if err := e.codec.Decode(items[0], &tx); err != nil {
		return message.Transaction{}, err
	}
	return tx, nil
}

// requireFields checks that data is an object carrying every key in names
// with a non-null value. encoding/json leaves absent and null keys at their
// zero value, so presence is checked on the raw object first.
func (e *Envelope) requireFields(data []byte, names []string) error {
	var fields map[string]json.RawMessage
	if err := e.codec.Decode(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: expected an object", ErrMissingField)
	}
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			return fmt.Errorf("%w %q", ErrMissingField, name)
		}
		if bytes.Equal(bytes.TrimSpace(raw), nullLiteral) {
			return fmt.Errorf("%w %q: null", ErrMissingField, name)
		}
	}
	return nil
}
