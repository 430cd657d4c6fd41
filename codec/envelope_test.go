package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txsitter/message"
)

func TestJSONCodec_RejectsInvalidUTF8(t *testing.T) {
	c := &JSONCodec{}
	var v any
	err := c.Decode([]byte{'"', 0xff, 0xfe, '"'}, &v)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEnvelope_Send(t *testing.T) {
	e := NewEnvelope(nil)

	payload, err := e.EncodeSend(message.TransactionInput{
		To:        "0xabc",
		Value:     "8",
		GasLimit:  "200000",
		RelayerID: "r1",
		Priority:  message.PriorityFastest.Ptr(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":"0xabc","value":"8","gasLimit":"200000","relayerId":"r1","priority":"fastest"}`, string(payload))

	id, err := e.DecodeSend([]byte(`{"id":1,"jsonrpc":"2.0","result":"0xdeadbeef"}`))
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", id)

	_, err = e.DecodeSend([]byte(`{"id":1,"jsonrpc":"2.0"}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = e.DecodeSend([]byte(`{"id":1,"jsonrpc":"2.0","result":null}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = e.DecodeSend([]byte(`{"id":1,"jsonrpc":"2.0","result":7}`))
	assert.Error(t, err)
}

func TestEnvelope_RPC(t *testing.T) {
	e := NewEnvelope(&JSONCodec{})

	payload, err := e.EncodeRPC("r1", "eth_getTransactionByHash", []string{"0x4a44"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"id":1,"method":"eth_getTransactionByHash","params":["0x4a44"],"jsonrpc":"2.0"},"relayerId":"r1"}`, string(payload))

	payload, err = e.EncodeRPC("r1", "eth_blockNumber", json.RawMessage(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"id":1,"method":"eth_blockNumber","params":[],"jsonrpc":"2.0"},"relayerId":"r1"}`, string(payload))

	_, err = e.EncodeRPC("r1", "eth_call", json.RawMessage(`{`))
	assert.Error(t, err)

	_, err = e.EncodeRPC("r1", "eth_call", make(chan int))
	assert.Error(t, err)

	resp, err := e.DecodeRPC([]byte(`{"id":1,"jsonrpc":"2.0","error":{"code":-32000,"message":"not found"}}`))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
}

func TestEnvelope_Query(t *testing.T) {
	e := NewEnvelope(nil)

	payload, err := e.EncodeQuery(message.ByRelayerAndStatus{RelayerID: "r1", Status: message.StatusPending})
	require.NoError(t, err)
	assert.JSONEq(t, `{"by":"RelayerId","relayerId":"r1","status":"pending"}`, string(payload))

	_, err = e.EncodeQuery(nil)
	assert.Error(t, err)
}

func TestEnvelope_DecodeTransactionList(t *testing.T) {
	e := NewEnvelope(nil)

	txs, err := e.DecodeTransactionList([]byte(`[
		{"to":"0x1","value":"1","gasLimit":"21000","relayerId":"r1"},
		{"to":"0x2","value":"2","gasLimit":"21000","relayerId":"r1","data":"0xff","priority":"slow"}
	]`))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "0x2", txs[1].To)
	assert.Equal(t, "0xff", txs[1].Data)
	assert.Equal(t, message.PrioritySlow, *txs[1].Priority)

	txs, err = e.DecodeTransactionList([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = e.DecodeTransactionList([]byte(`[{"to":null,"value":"1","gasLimit":"21000","relayerId":"r1"}]`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = e.DecodeTransactionList([]byte(`[{"to":"0x1","value":"1","relayerId":"r1"}]`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = e.DecodeTransactionList([]byte(`{"transactions":[]}`))
	assert.Error(t, err)
}

func TestEnvelope_DecodeTransactionByID(t *testing.T) {
	e := NewEnvelope(nil)

	tx, err := e.DecodeTransactionByID([]byte(`{"transactions":[{"id":"tx-1","to":"0x..","value":"1","gasLimit":"21000","relayerId":"r1","txHash":"0x111"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "0x111", tx.TxHash)
	assert.Equal(t, "tx-1", tx.ID)

	for _, payload := range []string{
		`{}`,
		`{"transactions":[]}`,
		`{"transactions":null}`,
		`{"transactions":{"id":"tx-1"}}`,
		`[]`,
		`null`,
	} {
		_, err := e.DecodeTransactionByID([]byte(payload))
		assert.ErrorIs(t, err, ErrNoTransactions, payload)
	}

	_, err = e.DecodeTransactionByID([]byte(`{"transactions":[{"id":"tx-1","to":"0x..","value":"1","gasLimit":"21000","relayerId":"r1"}]}`))
	assert.ErrorIs(t, err, ErrMissingField)

	for _, record := range []string{
		`{"id":"tx-1","to":"0x..","value":"1","gasLimit":"21000","relayerId":"r1","txHash":null}`,
		`{"id":"tx-1","to":null,"value":"1","gasLimit":"21000","relayerId":"r1","txHash":"0x1"}`,
		`{"id":null,"to":null,"value":null,"gasLimit":null,"relayerId":null,"txHash":null}`,
	} {
		_, err := e.DecodeTransactionByID([]byte(`{"transactions":[` + record + `]}`))
		assert.ErrorIs(t, err, ErrMissingField, record)
	}
	assert.NotErrorIs(t, err, ErrNoTransactions)

	_, err = e.DecodeTransactionByID([]byte(`{"transactions":[{"id":"tx-1","to":"0x..","value":1,"gasLimit":"21000","relayerId":"r1","txHash":"0x1"}]}`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTransactions)

	_, err = e.DecodeTransactionByID([]byte(`not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTransactions)
}
