package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/contacts-api/auth"
	ds "github.com/oaiiae/contacts-api/datastores"
)

// Sessions exchanges user credentials for a bearer token.
type Sessions struct {
	Users        ds.UsersStore
	Tokens       *auth.Tokens
	ErrorHandler func(context.Context, error)
}

func (h *Sessions) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusUnauthorized, http.StatusInternalServerError),
	)
}

type SessionsCreateOutput struct {
	Body struct {
		Token string `json:"token" doc:"bearer token for the Authorization header"`
	}
}

func (h *Sessions) create(ctx context.Context, input *struct {
	Body struct {
		Email    string `json:"email"    example:"user@example.com" minLength:"1"`
		Password string `json:"password" example:"secret123"        minLength:"1"`
	}
}) (*SessionsCreateOutput, error) {
	user, err := auth.CheckPassword(ctx, h.Users, input.Body.Email, input.Body.Password)
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		return nil, huma.Error401Unauthorized("bad credentials")
	case err != nil:
		return nil, err
	}

	token, err := h.Tokens.Sign(user)
	if err != nil {
		return nil, err
	}
	out := &SessionsCreateOutput{}
	out.Body.Token = token
	return out, nil
}
