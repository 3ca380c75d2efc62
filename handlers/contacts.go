package handlers

import (
	"context"
	"net/http"
	"path"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts-api/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	ErrorHandler func(context.Context, error)
	Path         string // mount path, used to build Location headers
}

type PhoneModel struct {
	Type   ds.PhoneType `json:"phone_type" enum:"home,work,mobile" example:"mobile"`
	Number string       `json:"number"     example:"555-0100"`
}

type ContactModel struct {
	ID ds.ContactID `json:"id" readOnly:"true"`

	Firstname string       `json:"firstname" example:"john"`
	Lastname  string       `json:"lastname"  example:"smith"`
	Email     string       `json:"email"     example:"jsmith@example.com"`
	Name      string       `json:"name"      example:"john smith" readOnly:"true"`
	Phones    []PhoneModel `json:"phones"`
}

// ContactInput is the payload of a new contact. Presence of the fields is
// checked by the store so that blank fields are reported per field.
type ContactInput struct {
	Firstname string       `json:"firstname,omitempty" example:"john"`
	Lastname  string       `json:"lastname,omitempty"  example:"smith"`
	Email     string       `json:"email,omitempty"     example:"jsmith@example.com"`
	Phones    []PhoneModel `json:"phones,omitempty"`
}

// ContactPatch is the payload of a contact update. Absent fields are left
// unchanged; phones, when present, replace the whole list.
type ContactPatch struct {
	Firstname *string       `json:"firstname,omitempty" example:"john"`
	Lastname  *string       `json:"lastname,omitempty"  example:"smith"`
	Email     *string       `json:"email,omitempty"     example:"jsmith@example.com"`
	Phones    *[]PhoneModel `json:"phones,omitempty"`
}

func contactModel(c *ds.Contact) ContactModel {
	return ContactModel{
		ID:        c.ID,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Email:     c.Email,
		Name:      c.Name(),
		Phones:    phoneModels(c.Phones),
	}
}

func phoneModels(phones []ds.Phone) []PhoneModel {
	models := make([]PhoneModel, 0, len(phones))
	for _, p := range phones {
		models = append(models, PhoneModel{Type: p.Type, Number: p.Number})
	}
	return models
}

func phones(models []PhoneModel) []ds.Phone {
	if models == nil {
		return nil
	}
	phones := make([]ds.Phone, 0, len(models))
	for _, m := range models {
		phones = append(phones, ds.Phone{Type: m.Type, Number: m.Number})
	}
	return phones
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(ctx context.Context, input *struct {
	Letter string `query:"letter" maxLength:"1" example:"J" doc:"only contacts whose last name starts with this letter"`
}) (*ContactsListOutput, error) {
	var (
		contacts []*ds.Contact
		err      error
	)
	if input.Letter == "" {
		contacts, err = h.Store.List(ctx)
	} else {
		contacts, err = h.Store.ListByLetter(ctx, input.Letter)
	}
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, contactModel(contact))
	}

	return &ContactsListOutput{Body: body}, nil
}

func (h *Contacts) RegisterNew(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/new", h.template)
}

type ContactsNewOutput struct {
	Body ContactInput
}

// template returns an empty contact with one blank phone per phone type.
func (h *Contacts) template(_ context.Context, _ *struct{}) (*ContactsNewOutput, error) {
	out := &ContactsNewOutput{}
	for _, t := range ds.PhoneTypes {
		out.Body.Phones = append(out.Body.Phones, PhoneModel{Type: t})
	}
	return out, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	contact, err := h.Store.Get(ctx, input.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsGetOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsCreateOutput struct {
	Location string `header:"Location"`
	Body     ContactModel
}

func (h *Contacts) create(ctx context.Context, input *struct {
	Body ContactInput
}) (*ContactsCreateOutput, error) {
	contact, err := h.Store.Create(ctx, &ds.Contact{
		Firstname: input.Body.Firstname,
		Lastname:  input.Body.Lastname,
		Email:     input.Body.Email,
		Phones:    phones(input.Body.Phones),
	})
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsCreateOutput{
		Location: path.Join(h.Path, contact.ID.String()),
		Body:     contactModel(contact),
	}, nil
}

func (h *Contacts) RegisterUpdate(api huma.API) { // called by [huma.AutoRegister]
	huma.Patch(api, "/{id}",
		handlerWithErrorHandler(h.update, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsUpdateOutput struct {
	Body ContactModel
}

func (h *Contacts) update(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" doc:"ID of the contact to update"`
	Body ContactPatch
}) (*ContactsUpdateOutput, error) {
	changes := &ds.ContactChanges{
		Firstname: input.Body.Firstname,
		Lastname:  input.Body.Lastname,
		Email:     input.Body.Email,
	}
	if input.Body.Phones != nil {
		p := phones(*input.Body.Phones)
		changes.Phones = &p
	}

	contact, err := h.Store.Update(ctx, input.ID, changes)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsUpdateOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	return nil, storeError(h.Store.Delete(ctx, input.ID))
}
