package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header that carries the request ID.
const Header = "X-Request-ID"

// New returns a fresh random ID.
func New() string {
	return uuid.NewString()
}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
