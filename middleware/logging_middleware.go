package middleware

import (
	"context"
	"time"

	"txsitter/invoke"
	"txsitter/log"
	"txsitter/message"
)

// LoggingMiddleware logs every invocation at debug level and every failed one
// at warn level.
func LoggingMiddleware(logger log.Logger) Middleware {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
			start := time.Now()
			reply, err := next(ctx, inv)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("invocation failed",
					"role", inv.Role,
					"function", inv.Function,
					"duration", duration,
					"code", invoke.ErrorCode(err),
					"err", err)
				return reply, err
			}
			logger.Debug("invocation done",
				"role", inv.Role,
				"function", inv.Function,
				"duration", duration,
				"requestBytes", len(inv.Payload),
				"replyBytes", len(reply))
			return reply, nil
		}
	}
}
