// Package invoke is the invocation channel: given a function identifier and
// an opaque payload it performs one remote call and returns the reply bytes.
//
// Name resolution, credentials and network retries belong to the channel
// implementation (the AWS SDK for LambdaInvoker); callers only see the reply
// or the channel's own error, unchanged.
package invoke

import "context"

type Invoker interface {
	// Invoke calls function with payload. An empty reply is not an error at
	// this layer.
	Invoke(ctx context.Context, function string, payload []byte) ([]byte, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, function string, payload []byte) ([]byte, error)

func (f InvokerFunc) Invoke(ctx context.Context, function string, payload []byte) ([]byte, error) {
	return f(ctx, function, payload)
}
