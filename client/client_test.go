package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"txsitter/config"
	"txsitter/invoke"
	"txsitter/log"
	"txsitter/message"
	"txsitter/middleware"
)

var testConfig = config.ClientConfig{
	SendFunction:         "tx-sitter-send",
	RPCFunction:          "tx-sitter-rpc",
	TransactionsFunction: "tx-sitter-transactions",
}

// newTestClient serves the given functions from an in-process mux.
func newTestClient(t *testing.T, handlers map[string]invoke.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	mux := invoke.NewMux()
	for name, h := range handlers {
		require.NoError(t, mux.Register(name, h))
	}
	c, err := NewClient(mux, testConfig, opts...)
	require.NoError(t, err)
	return c
}

func reply(body string) invoke.HandlerFunc {
	return func(context.Context, []byte) ([]byte, error) {
		if body == "" {
			return nil, nil
		}
		return []byte(body), nil
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil, testConfig)
	assert.Error(t, err)

	_, err = NewClient(invoke.NewMux(), config.ClientConfig{SendFunction: "send"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPCFunction")
}

func TestClient_Relay(t *testing.T) {
	var got []byte
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.SendFunction: func(_ context.Context, payload []byte) ([]byte, error) {
			got = payload
			return []byte(`{"id":1,"jsonrpc":"2.0","result":"0xdeadbeef"}`), nil
		},
	})

	id, err := c.Relay(context.Background(), message.TransactionInput{
		To:        "0xabc",
		Data:      "",
		Value:     "8",
		GasLimit:  "200000",
		RelayerID: "r1",
		Priority:  message.PriorityFastest.Ptr(),
	})
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", id)
	assert.JSONEq(t, `{"to":"0xabc","value":"8","gasLimit":"200000","relayerId":"r1","priority":"fastest"}`, string(got))
}

func TestClient_RelayLogsThroughContextLogger(t *testing.T) {
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.SendFunction: reply(`{"id":1,"jsonrpc":"2.0","result":"0xdeadbeef"}`),
	})

	buf := &bytes.Buffer{}
	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelInfo, Output: "stdout"}, zapcore.AddSync(buf))
	ctx := log.WithContext(context.Background(), logger)

	_, err := c.Relay(ctx, message.TransactionInput{To: "0xabc", Value: "8", GasLimit: "200000", RelayerID: "r1"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "relaying transaction")
	assert.Contains(t, buf.String(), "relayerId=r1")
}

func TestClient_RelayFailures(t *testing.T) {
	input := message.TransactionInput{To: "0xabc", Value: "0", GasLimit: "21000", RelayerID: "r1"}

	tests := []struct {
		name  string
		body  string
		want  error
		codec bool
	}{
		{name: "empty reply", body: "", want: ErrMissingPayload},
		{name: "not json", body: "nope", want: ErrMalformed, codec: true},
		{name: "invalid utf8", body: "\"\xff\xfe\"", want: ErrMalformed, codec: true},
		{name: "missing result", body: `{"id":1,"jsonrpc":"2.0"}`, want: ErrMalformed, codec: true},
		{name: "null result", body: `{"id":1,"jsonrpc":"2.0","result":null}`, want: ErrMalformed, codec: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, map[string]invoke.HandlerFunc{
				testConfig.SendFunction: reply(tt.body),
			})
			_, err := c.Relay(context.Background(), input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			_, ok := IsSerializationError(err)
			assert.Equal(t, tt.codec, ok)
			_, ok = IsRPCError(err)
			assert.False(t, ok)
		})
	}
}

func TestClient_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("throttled")
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.SendFunction: func(context.Context, []byte) ([]byte, error) { return nil, boom },
	})

	_, err := c.Relay(context.Background(), message.TransactionInput{RelayerID: "r1"})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, boom)

	// Nothing registered for the transactions function.
	_, err = c.GetByID(context.Background(), "tx-1")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, invoke.ErrFunctionNotFound)
}

func TestClient_GetByRelayerAndStatus(t *testing.T) {
	var got []byte
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.TransactionsFunction: func(_ context.Context, payload []byte) ([]byte, error) {
			got = payload
			return []byte(`[
				{"to":"0x1","value":"1","gasLimit":"21000","relayerId":"r1","transactionType":"transfer"},
				{"to":"0x2","value":"2","gasLimit":"21000","relayerId":"r1","data":"0x00"}
			]`), nil
		},
	})

	txs, err := c.GetByRelayerAndStatus(context.Background(), "r1", message.StatusPending)
	require.NoError(t, err)
	assert.JSONEq(t, `{"by":"RelayerId","relayerId":"r1","status":"pending"}`, string(got))
	require.Len(t, txs, 2)
	assert.Equal(t, "0x1", txs[0].To)
	require.NotNil(t, txs[0].TransactionType)
	assert.Equal(t, message.TypeTransfer, *txs[0].TransactionType)
	assert.Equal(t, "0x00", txs[1].Data)
}

func TestClient_GetByRelayerAndStatusMalformed(t *testing.T) {
	for _, body := range []string{`{"transactions":[]}`, `[{"to":"0x1"}]`, `[`, `[{"to":null,"value":"1","gasLimit":"21000","relayerId":"r1"}]`} {
		c := newTestClient(t, map[string]invoke.HandlerFunc{
			testConfig.TransactionsFunction: reply(body),
		})
		_, err := c.GetByRelayerAndStatus(context.Background(), "r1", message.StatusMined)
		assert.ErrorIs(t, err, ErrMalformed, body)
	}

	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.TransactionsFunction: reply(`[]`),
	})
	txs, err := c.GetByRelayerAndStatus(context.Background(), "r1", message.StatusMined)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestClient_GetByID(t *testing.T) {
	var got []byte
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.TransactionsFunction: func(_ context.Context, payload []byte) ([]byte, error) {
			got = payload
			return []byte(`{"transactions":[{"id":"a","to":"0x1","value":"0","gasLimit":"21000","relayerId":"r1","txHash":"0x111"}]}`), nil
		},
	})

	tx, err := c.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"by":"TransactionId","transactionId":"a"}`, string(got))
	assert.Equal(t, "a", tx.ID)
	assert.Equal(t, "0x111", tx.TxHash)
	assert.Equal(t, "r1", tx.RelayerID)
}

func TestClient_GetByIDNotFoundAndMalformed(t *testing.T) {
	tests := []struct {
		body string
		want error
	}{
		{body: `{"transactions":[]}`, want: ErrNotFound},
		{body: `{"items":[]}`, want: ErrNotFound},
		{body: `{"transactions":{}}`, want: ErrNotFound},
		{body: `[1,2]`, want: ErrNotFound},
		{body: `"text"`, want: ErrNotFound},
		{body: `{"transactions":[{"id":"a"}]}`, want: ErrMalformed},
		{body: `{"transactions":[{"id":"a","to":"0x1","value":"0","gasLimit":"21000","relayerId":"r1","txHash":null}]}`, want: ErrMalformed},
		{body: `{"transactions":[{"id":"a","to":null,"value":"0","gasLimit":"21000","relayerId":"r1","txHash":"0x111"}]}`, want: ErrMalformed},
		{body: `{"transactions":[{"id":null,"to":null,"value":null,"gasLimit":null,"relayerId":null,"txHash":null}]}`, want: ErrMalformed},
		{body: `{"transactions":[{"id":1,"to":"0x1","value":"0","gasLimit":"1","relayerId":"r","txHash":"0x"}]}`, want: ErrMalformed},
		{body: `{"transactions":`, want: ErrMalformed},
		{body: "", want: ErrMissingPayload},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			c := newTestClient(t, map[string]invoke.HandlerFunc{
				testConfig.TransactionsFunction: reply(tt.body),
			})
			_, err := c.GetByID(context.Background(), "a")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.TransactionsFunction: reply(`{"transactions":[]}`),
	})
	_, err := c.GetByID(context.Background(), "abc")
	assert.EqualError(t, err, "txsitter: get transaction: transaction abc not found or invalid format")
}

func TestClient_Middleware(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	record := func(next middleware.InvokeFunc) middleware.InvokeFunc {
		return func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
			mu.Lock()
			seen = append(seen, fmt.Sprintf("%s:%s", inv.Role, inv.Function))
			mu.Unlock()
			return next(ctx, inv)
		}
	}

	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.SendFunction:         reply(`{"id":1,"jsonrpc":"2.0","result":"x"}`),
		testConfig.TransactionsFunction: reply(`[]`),
		testConfig.RPCFunction:          reply(`{"id":1,"jsonrpc":"2.0","result":"0x1"}`),
	}, WithMiddleware(record))

	ctx := context.Background()
	_, err := c.Relay(ctx, message.TransactionInput{RelayerID: "r1"})
	require.NoError(t, err)
	_, err = c.GetByRelayerAndStatus(ctx, "r1", message.StatusQueued)
	require.NoError(t, err)
	_, err = Call[string](ctx, c.Provider("r1"), "eth_chainId", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"send:tx-sitter-send",
		"transactions:tx-sitter-transactions",
		"rpc:tx-sitter-rpc",
	}, seen)
}

func TestClient_Concurrent(t *testing.T) {
	c := newTestClient(t, map[string]invoke.HandlerFunc{
		testConfig.SendFunction: reply(`{"id":1,"jsonrpc":"2.0","result":"0xdeadbeef"}`),
	})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := c.Relay(context.Background(), message.TransactionInput{
				To:        "0xabc",
				Value:     fmt.Sprint(i),
				GasLimit:  "21000",
				RelayerID: "r1",
			})
			if err == nil && id != "0xdeadbeef" {
				err = fmt.Errorf("unexpected id %q", id)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
