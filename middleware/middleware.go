package middleware

import (
	"context"

	"txsitter/message"
)

// InvokeFunc performs one invocation and returns the raw reply.
type InvokeFunc func(ctx context.Context, inv *message.Invocation) ([]byte, error)

type Middleware func(next InvokeFunc) InvokeFunc

// Chain composes middlewares so that the first one is the outermost:
// Chain(A, B)(h) runs A, then B, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
