package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, conf Config) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	conf.Output = "stdout"
	return NewZapLogger(conf, zapcore.AddSync(buf)), buf
}

func TestZapLogger_JSON(t *testing.T) {
	lg, buf := newBufferLogger(t, Config{Format: "json", Level: LevelInfo})

	lg.WithName("client").WithKV("relayerId", "r1").Info("relaying transaction", "to", "0xabc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "relaying transaction", entry["msg"])
	assert.Equal(t, "client", entry["logger"])
	assert.Equal(t, "r1", entry["relayerId"])
	assert.Equal(t, "0xabc", entry["to"])
}

func TestZapLogger_LevelFilter(t *testing.T) {
	lg, buf := newBufferLogger(t, Config{Format: "logfmt", Level: LevelWarn})

	lg.Debug("hidden")
	lg.Info("hidden")
	assert.Zero(t, buf.Len())

	lg.Warn("shown", "k", "v")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestZapLogger_WithKVDoesNotLeak(t *testing.T) {
	base, _ := newBufferLogger(t, Config{Format: "json"})
	a := base.WithKV("a", 1)
	b := a.WithKV("b", 2)
	c := a.WithKV("c", 3)

	assert.Equal(t, []any{"a", 1}, a.GetAllKV())
	assert.Equal(t, []any{"a", 1, "b", 2}, b.GetAllKV())
	assert.Equal(t, []any{"a", 1, "c", 3}, c.GetAllKV())
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "noop", FromContext(context.Background()).Name())

	lg, _ := newBufferLogger(t, Config{})
	ctx := WithContext(context.Background(), lg.WithName("ctx"))
	assert.Equal(t, "ctx", FromContext(ctx).Name())

	ctx = WithContext(context.Background(), nil)
	assert.Equal(t, "noop", FromContext(ctx).Name())
}

func TestFromContextOr(t *testing.T) {
	lg, _ := newBufferLogger(t, Config{})
	fallback := lg.WithName("fallback")
	assert.Equal(t, "fallback", FromContextOr(context.Background(), fallback).Name())

	ctx := WithContext(context.Background(), lg.WithName("ctx"))
	assert.Equal(t, "ctx", FromContextOr(ctx, fallback).Name())
}
