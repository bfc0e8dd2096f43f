package service

import "context"

type requestIDKey struct{}

// ContextWithRequestID tags ctx with the id used to correlate an analysis in the logs
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id, or "" when none was set
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
