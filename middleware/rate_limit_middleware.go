package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"txsitter/message"
)

// RateLimitMiddleware paces outgoing invocations with a token bucket of r
// per second and the given burst. It waits for a token rather than failing;
// the wait ends early with the context's error.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return next(ctx, inv)
		}
	}
}
