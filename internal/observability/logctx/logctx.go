// Package logctx carries the request-scoped observability logger through a
// context, so use cases pick up request ids and trace fields without
// depending on the transport layer.
package logctx

import (
	"context"

	"github.com/bylucie/storefront/internal/observability"
)

type key struct{}

// With attaches logger to ctx. A nil logger leaves ctx untouched.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, key{}, logger)
}

// From returns the logger attached to ctx, or nil when none was set.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(key{}).(observability.Logger)
	return l
}

// FromOr is From with a fallback for call sites that always need a logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if l := From(ctx); l != nil {
		return l
	}
	return fallback
}
