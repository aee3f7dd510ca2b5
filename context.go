package ags10

import "context"

type ctxKey int

const ctxKeyVerbose ctxKey = iota

// WithVerbose marks the context so transports dump the raw frames they exchange.
func WithVerbose(parent context.Context, verbose bool) context.Context {
	return context.WithValue(parent, ctxKeyVerbose, verbose)
}

func IsVerbose(ctx context.Context) bool {
	v, ok := ctx.Value(ctxKeyVerbose).(bool)
	return ok && v
}
