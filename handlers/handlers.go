package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts-api/datastores"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	if do == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			do(ctx, err)
		}
		return o, err
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

func opStatus(code int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.DefaultStatus = code }
}

func opMiddlewares(mws ...func(huma.Context, func(huma.Context))) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Middlewares = append(o.Middlewares, mws...) }
}

// storeError converts store errors into [huma.StatusError]. Validation
// failures become a 422 with one detail per field and reason.
func storeError(err error) error {
	var verrs ds.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		details := make([]error, 0, len(verrs))
		for _, field := range verrs.Fields() {
			for _, reason := range verrs[field] {
				details = append(details, &huma.ErrorDetail{
					Location: "body." + field,
					Message:  reason,
				})
			}
		}
		return huma.Error422UnprocessableEntity("validation failed", details...)

	case errors.Is(err, ds.ErrObjectNotFound):
		return huma.Error404NotFound("id not found", err)

	default:
		return err
	}
}
