// Package tenant carries the identity every query is scoped to.
package tenant

import (
	"context"
	"strconv"
)

// ID identifies the owner of stored records. Zero means unset.
type ID int64

// Valid reports whether the id can be used to scope a query.
func (id ID) Valid() bool {
	return id > 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type contextKey struct{}

// WithID attaches the tenant id to ctx.
func WithID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the tenant id stored in ctx.
func FromContext(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(contextKey{}).(ID)
	if !ok || !id.Valid() {
		return 0, false
	}
	return id, true
}
