package datastores

import (
	"context"
	"errors"
	"slices"
)

type (
	ContactID struct{ uuid32 }
	Contact   struct {
		ID        ContactID
		Firstname string
		Lastname  string
		Email     string
		Phones    []Phone
	}
	Phone struct {
		Type   PhoneType
		Number string
	}
	PhoneType string
)

const (
	PhoneHome   PhoneType = "home"
	PhoneWork   PhoneType = "work"
	PhoneMobile PhoneType = "mobile"
)

// PhoneTypes lists the accepted phone types in display order.
var PhoneTypes = []PhoneType{PhoneHome, PhoneWork, PhoneMobile} //nolint: gochecknoglobals

func (t PhoneType) Valid() bool { return slices.Contains(PhoneTypes, t) }

func newContactID() ContactID { return ContactID{*new(uuid32).initV4()} }

// ParseContactID decodes the text form of a [ContactID].
func ParseContactID(s string) (ContactID, error) {
	var id ContactID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// Name returns the full name of the contact.
func (c *Contact) Name() string { return c.Firstname + " " + c.Lastname }

func (c *Contact) clone() *Contact {
	cc := *c
	cc.Phones = slices.Clone(c.Phones)
	return &cc
}

// ContactChanges holds a partial update of a [Contact]; nil fields are left unchanged.
// A non-nil Phones replaces the whole phone list.
type ContactChanges struct {
	Firstname *string
	Lastname  *string
	Email     *string
	Phones    *[]Phone
}

// apply returns a copy of c with the changes merged in.
func (ch *ContactChanges) apply(c *Contact) *Contact {
	merged := c.clone()
	if ch == nil {
		return merged
	}
	if ch.Firstname != nil {
		merged.Firstname = *ch.Firstname
	}
	if ch.Lastname != nil {
		merged.Lastname = *ch.Lastname
	}
	if ch.Email != nil {
		merged.Email = *ch.Email
	}
	if ch.Phones != nil {
		merged.Phones = slices.Clone(*ch.Phones)
	}
	return merged
}

type ContactsStore interface {
	// Validate checks c against the stored contacts without writing anything.
	Validate(context.Context, *Contact) (ValidationErrors, error)
	Create(context.Context, *Contact) (*Contact, error)
	Update(context.Context, ContactID, *ContactChanges) (*Contact, error)
	Delete(context.Context, ContactID) error
	Get(context.Context, ContactID) (*Contact, error)
	List(context.Context) ([]*Contact, error)
	ListByLetter(ctx context.Context, letter string) ([]*Contact, error)
}

var ErrObjectNotFound = errors.New("store: object not found")
