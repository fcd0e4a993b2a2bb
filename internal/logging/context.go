package logging

import "context"

type ctxKey struct{}

const requestIDKey = "request_id"

// WithRequestID stores id on ctx so loggers and OperationErrors can pick it up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func appendRequestID(ctx context.Context, args []any) []any {
	if id := RequestIDFromContext(ctx); id != "" {
		return append(args, requestIDKey, id)
	}
	return args
}
