// Package auditctx carries the HTTP origin of an action through service calls
// so audit records can note where it came from.
package auditctx

import "context"

// Origin describes the client that issued a request on behalf of an actor.
type Origin struct {
	ActorID   string
	IPAddress string
	UserAgent string
}

type originContextKey struct{}

// WithOrigin returns a derived context carrying origin.
func WithOrigin(ctx context.Context, origin Origin) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, originContextKey{}, origin)
}

// FromContext extracts the origin stored by WithOrigin.
func FromContext(ctx context.Context) (Origin, bool) {
	if ctx == nil {
		return Origin{}, false
	}
	origin, ok := ctx.Value(originContextKey{}).(Origin)
	return origin, ok
}
