package userctx

import (
	"context"

	"github.com/nkiryanov/spbuhub/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context with the authenticated caller
func New(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Extract the authenticated caller from the context
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
