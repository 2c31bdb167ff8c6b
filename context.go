package scribe

import (
	"context"

	"github.com/xraph/scribe/activity"
)

type contextKey int

const ctxKeyCauser contextKey = iota

// ContextWithCauser returns a context carrying the acting causer. Log picks
// it up for every entry that does not set a causer explicitly, so request
// middleware can attach the authenticated actor once.
func ContextWithCauser(ctx context.Context, c *activity.Causer) context.Context {
	return context.WithValue(ctx, ctxKeyCauser, c)
}

func causerFromContext(ctx context.Context) *activity.Causer {
	v, ok := ctx.Value(ctxKeyCauser).(*activity.Causer)
	if !ok {
		return nil
	}
	return v
}
