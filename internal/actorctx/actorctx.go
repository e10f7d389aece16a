// Package actorctx carries the pre-authenticated caller identity through
// the request context. Authentication itself happens upstream; this layer
// only transports the verified actor email.
package actorctx

import (
	"context"
	"net/http"

	"github.com/stacksketch/backend/pkg/cerr"
	"github.com/stacksketch/backend/pkg/clog"
)

// ActorHeader is the header the upstream auth layer sets after verifying
// the caller.
const ActorHeader = "X-User-Email"

type actorKey struct{}

func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorKey{}, email)
}

func ActorFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(actorKey{}).(string)
	return v, ok && v != ""
}

// Middleware rejects requests without a verified actor and stashes the
// actor email in the context and in the request log attributes.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get(ActorHeader)
			if email == "" {
				cerr.SetNewJSONError(r.Context(), cerr.Unauthenticated, "missing caller identity", nil)
				return
			}
			ctx := WithActor(r.Context(), email)
			clog.AddAttribute(ctx, "actor", email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
