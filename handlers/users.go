package handlers

import (
	"context"
	"net/http"
	"path"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/contacts-api/auth"
	ds "github.com/oaiiae/contacts-api/datastores"
)

type Users struct {
	Store        ds.UsersStore
	ErrorHandler func(context.Context, error)
	Path         string // mount path, used to build Location headers
	DeniedURL    string // where actors that cannot create users are sent
}

type UserModel struct {
	ID    ds.UserID `json:"id"    example:"2"                readOnly:"true"`
	Email string    `json:"email" example:"user@example.com"`
	Role  ds.Role   `json:"role"  enum:"admin,regular"       example:"regular"`
}

type UserInput struct {
	Email    string  `json:"email,omitempty"    example:"user@example.com"`
	Password string  `json:"password,omitempty" example:"secret123" writeOnly:"true"`
	Role     ds.Role `json:"role,omitempty"     enum:"admin,regular" example:"regular"`
}

func userModel(u *ds.User) UserModel {
	return UserModel{ID: u.ID, Email: u.Email, Role: u.Role}
}

// denyUnlessCanCreateUser redirects actors that may not create users before
// the request body is read, so the outcome does not depend on the payload.
func (h *Users) denyUnlessCanCreateUser(ctx huma.Context, next func(huma.Context)) {
	actor, _ := auth.FromContext(ctx.Context())
	if !auth.CanCreateUser(actor) {
		ctx.SetHeader("Location", h.DeniedURL)
		ctx.SetStatus(http.StatusSeeOther)
		return
	}
	next(ctx)
}

func (h *Users) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusUnauthorized, http.StatusInternalServerError),
	)
}

type UsersListOutput struct {
	Body []UserModel
}

func (h *Users) list(ctx context.Context, _ *struct{}) (*UsersListOutput, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	users, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]UserModel, 0, len(users))
	for _, u := range users {
		body = append(body, userModel(u))
	}
	return &UsersListOutput{Body: body}, nil
}

func (h *Users) RegisterNew(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/new", h.template,
		opMiddlewares(h.denyUnlessCanCreateUser),
	)
}

type UsersNewOutput struct {
	Body UserInput
}

func (h *Users) template(_ context.Context, _ *struct{}) (*UsersNewOutput, error) {
	return &UsersNewOutput{Body: UserInput{Role: ds.RoleRegular}}, nil
}

func (h *Users) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
		opMiddlewares(h.denyUnlessCanCreateUser),
	)
}

type UsersCreateOutput struct {
	Location string `header:"Location"`
	Body     UserModel
}

func (h *Users) create(ctx context.Context, input *struct {
	Body UserInput
}) (*UsersCreateOutput, error) {
	user := &ds.User{Email: input.Body.Email, Role: input.Body.Role}
	errs, err := h.Store.Validate(ctx, user)
	if err != nil {
		return nil, err
	}
	if errs == nil {
		errs = ds.ValidationErrors{}
	}
	if input.Body.Password == "" {
		errs["password"] = append(errs["password"], ds.ReasonBlank)
	}
	if len(errs) > 0 {
		return nil, storeError(errs)
	}

	user.PasswordHash, err = auth.HashPassword(input.Body.Password)
	if err != nil {
		return nil, err
	}
	user, err = h.Store.Create(ctx, user)
	if err != nil {
		return nil, storeError(err)
	}
	return &UsersCreateOutput{
		Location: path.Join(h.Path, strconv.FormatInt(user.ID, 10)),
		Body:     userModel(user),
	}, nil
}
