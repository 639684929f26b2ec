package api

import (
	"context"
	"time"

	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type actorKey struct{}

// WithActor returns a context carrying the authenticated actor
func WithActor(ctx context.Context, a lifecycle.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by the auth middleware
func ActorFromContext(ctx context.Context) (lifecycle.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(lifecycle.Actor)
	return a, ok
}
