package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txsitter/invoke"
	"txsitter/message"
)

// TracingMiddleware wraps each invocation in a span of the global tracer
// provider.
func TracingMiddleware() Middleware {
	return TracingMiddlewareWith(otel.Tracer("txsitter/invoke"))
}

func TracingMiddlewareWith(tracer trace.Tracer) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
			ctx, span := tracer.Start(ctx, "TxSitter.Invoke",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("txsitter.role", string(inv.Role)),
					attribute.String("txsitter.function", inv.Function),
					attribute.Int("txsitter.request_bytes", len(inv.Payload)),
				),
			)
			defer span.End()

			reply, err := next(ctx, inv)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				if code := invoke.ErrorCode(err); code != "" {
					span.SetAttributes(attribute.String("txsitter.error_code", code))
				}
				return reply, err
			}
			span.SetAttributes(attribute.Int("txsitter.reply_bytes", len(reply)))
			return reply, nil
		}
	}
}
