package datastores

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Validation reasons reported per field.
const (
	ReasonBlank    = "can't be blank"
	ReasonTaken    = "has already been taken"
	ReasonNotInSet = "is not included in the list"
)

var (
	ErrMissingField   = errors.New("store: missing field")
	ErrDuplicateEmail = errors.New("store: duplicate email")
)

// ValidationErrors maps a field name to the reasons it was rejected.
// A nil or empty ValidationErrors means the record is valid.
type ValidationErrors map[string][]string

func (e ValidationErrors) add(field, reason string) {
	if !slices.Contains(e[field], reason) {
		e[field] = append(e[field], reason)
	}
}

// Has reports whether field was rejected for reason.
func (e ValidationErrors) Has(field, reason string) bool {
	return slices.Contains(e[field], reason)
}

// Fields returns the rejected field names, sorted.
func (e ValidationErrors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

func (e ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("store: validation failed:")
	for _, field := range e.Fields() {
		for _, reason := range e[field] {
			b.WriteString(" ")
			b.WriteString(field)
			b.WriteString(" ")
			b.WriteString(reason)
			b.WriteString(";")
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Is makes [errors.Is] match [ErrMissingField] and [ErrDuplicateEmail].
func (e ValidationErrors) Is(target error) bool {
	switch target {
	case ErrMissingField:
		for _, reasons := range e {
			if slices.Contains(reasons, ReasonBlank) {
				return true
			}
		}
	case ErrDuplicateEmail:
		return e.Has("email", ReasonTaken)
	}
	return false
}

func (e ValidationErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// validateContact runs the rules that need no stored state.
func validateContact(c *Contact) ValidationErrors {
	errs := ValidationErrors{}
	if blank(c.Firstname) {
		errs.add("firstname", ReasonBlank)
	}
	if blank(c.Lastname) {
		errs.add("lastname", ReasonBlank)
	}
	if blank(c.Email) {
		errs.add("email", ReasonBlank)
	}
	for i, p := range c.Phones {
		if !p.Type.Valid() {
			errs.add("phones["+strconv.Itoa(i)+"].phone_type", ReasonNotInSet)
		}
	}
	return errs
}
