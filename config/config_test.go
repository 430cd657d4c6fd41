package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txsitter/log"
)

func TestClientConfig_Validate(t *testing.T) {
	cfg := ClientConfig{SendFunction: "send", RPCFunction: "rpc", TransactionsFunction: "txs"}
	require.NoError(t, cfg.Validate())

	err := ClientConfig{SendFunction: "send"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClientConfig.RPCFunction")
	assert.Contains(t, err.Error(), "ClientConfig.TransactionsFunction")
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txsitter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
client:
  send_function: arn:aws:lambda:us-east-1:000000000000:function:Send
  rpc_function: arn:aws:lambda:us-east-1:000000000000:function:Rpc
  transactions_function: arn:aws:lambda:us-east-1:000000000000:function:Transactions
log:
  format: json
  level: debug
rate_limit:
  rate: 5
  burst: 10
etcd:
  endpoints: ["127.0.0.1:2379"]
  stage: staging
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Client.Validate())
	assert.Equal(t, "arn:aws:lambda:us-east-1:000000000000:function:Rpc", cfg.Client.RPCFunction)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, log.LevelDebug, cfg.Log.Level)
	assert.True(t, cfg.RateLimit.Enabled())
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.True(t, cfg.Etcd.Enabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TX_SITTER_SEND_FUNCTION", "send")
	t.Setenv("TX_SITTER_RPC_FUNCTION", "rpc")
	t.Setenv("TX_SITTER_TRANSACTIONS_FUNCTION", "txs")
	t.Setenv("TX_SITTER_ETCD_ENDPOINTS", "a:2379,b:2379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{SendFunction: "send", RPCFunction: "rpc", TransactionsFunction: "txs"}, cfg.Client)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, log.LevelInfo, cfg.Log.Level)
	assert.False(t, cfg.RateLimit.Enabled())
	assert.Equal(t, []string{"a:2379", "b:2379"}, cfg.Etcd.Endpoints)
	assert.False(t, cfg.Etcd.Enabled())
}

func TestLoad_InvalidLog(t *testing.T) {
	t.Setenv("TX_SITTER_LOG_FORMAT", "xml")
	_, err := Load("")
	assert.Error(t, err)
}
