package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ctxactor is a [context.Context] key for the request [Actor].
type ctxactor struct{}

// FromContext returns the actor set by [Middleware], if any.
func FromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(ctxactor{}).(*Actor)
	return actor, ok && actor != nil
}

// Middleware returns a middleware that resolves the bearer token of the
// Authorization header into an [Actor]. Requests without the header go
// through anonymously; requests with a bad token are answered with 401.
func Middleware(api huma.API, tokens *Tokens) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(ctx)
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "bearer token required")
			return
		}
		actor, err := tokens.Parse(raw)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid token", err)
			return
		}
		next(huma.WithValue(ctx, ctxactor{}, actor))
	}
}
