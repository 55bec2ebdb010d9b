package auth

import (
	"context"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type contextKey string

const actorKey = contextKey("actor")

// WithActor stores the authenticated actor on a request context.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}
