package logctx

import (
	"context"

	"storefront/internal/observability"
)

type ctxKey struct{}

// With returns a context carrying the logger. Request middleware and the
// event bus use this to hand enriched loggers down the call chain.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the context's logger, or nil when none was attached.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(ctxKey{}).(observability.Logger)
	return l
}

// FromOr returns the context's logger, falling back when none is attached.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if l := From(ctx); l != nil {
		return l
	}
	return fallback
}
