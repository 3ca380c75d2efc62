package datastores

import (
	"context"
	"slices"
	"sync"
)

// ContactsInmem implements [ContactsStore].
// Uniqueness checks and writes happen under the same lock.
type ContactsInmem struct {
	mu       sync.RWMutex
	index    map[ContactID]int
	emails   map[string]ContactID
	contacts []*Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

func NewContactsInmem() *ContactsInmem {
	return &ContactsInmem{
		index:  make(map[ContactID]int),
		emails: make(map[string]ContactID),
	}
}

func (s *ContactsInmem) Validate(_ context.Context, c *Contact) (ValidationErrors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validate(c), nil
}

// validate must be called with s.mu held.
func (s *ContactsInmem) validate(c *Contact) ValidationErrors {
	errs := validateContact(c)
	if owner, taken := s.emails[c.Email]; taken && owner != c.ID {
		errs.add("email", ReasonTaken)
	}
	return errs
}

func (s *ContactsInmem) Create(_ context.Context, c *Contact) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := c.clone()
retry:
	created.ID = newContactID()
	_, loaded := s.index[created.ID]
	if loaded {
		goto retry
	}
	if err := s.validate(created).err(); err != nil {
		return nil, err
	}
	s.index[created.ID] = len(s.contacts)
	s.emails[created.Email] = created.ID
	s.contacts = append(s.contacts, created)
	return created.clone(), nil
}

func (s *ContactsInmem) Update(_ context.Context, id ContactID, changes *ContactChanges) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	current := s.contacts[index]
	updated := changes.apply(current)
	if err := s.validate(updated).err(); err != nil {
		return nil, err
	}
	delete(s.emails, current.Email)
	s.emails[updated.Email] = id
	s.contacts[index] = updated
	return updated.clone(), nil
}

func (s *ContactsInmem) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return ErrObjectNotFound
	}
	delete(s.index, id)
	delete(s.emails, s.contacts[index].Email)
	s.contacts = slices.Delete(s.contacts, index, index+1)
	for i := index; i < len(s.contacts); i++ {
		s.index[s.contacts[i].ID] = i
	}
	return nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return s.contacts[index].clone(), nil
}

func (s *ContactsInmem) List(_ context.Context) ([]*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contacts := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, c.clone())
	}
	return contacts, nil
}

func (s *ContactsInmem) ListByLetter(_ context.Context, letter string) ([]*Contact, error) {
	contacts := []*Contact{}
	if letter == "" {
		return contacts, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if hasLetter(c, letter) {
			contacts = append(contacts, c.clone())
		}
	}
	sortContacts(contacts)
	return contacts, nil
}
