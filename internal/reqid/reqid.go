package reqid

import (
	"context"
	"sync/atomic"
)

// key is the context key for the execution ID.
type key struct{}

var seq atomic.Uint64

// NewContext returns a copy of parent carrying the next execution ID.
// IDs are unique within the process and never zero.
func NewContext(parent context.Context) (context.Context, uint64) {
	id := seq.Add(1)
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the execution ID from ctx.
func FromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(key{}).(uint64)
	return id, ok
}
