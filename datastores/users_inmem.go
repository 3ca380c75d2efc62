package datastores

import (
	"context"
	"slices"
	"sync"
)

type (
	UserID = int64
	User   struct {
		ID           UserID
		Email        string
		Role         Role
		PasswordHash []byte
	}
	Role string
)

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleRegular }

type UsersStore interface {
	Validate(context.Context, *User) (ValidationErrors, error)
	Create(context.Context, *User) (*User, error)
	List(context.Context) ([]*User, error)
	Get(context.Context, UserID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
}

// UsersInmem implements [UsersStore].
type UsersInmem struct {
	mu     sync.RWMutex
	nextID UserID
	users  []*User
}

var _ UsersStore = (*UsersInmem)(nil)

func NewUsersInmem() *UsersInmem { return &UsersInmem{nextID: 1} }

func defaultRole(u *User) *User {
	cp := *u
	if cp.Role == "" {
		cp.Role = RoleRegular
	}
	return &cp
}

// Validate checks u as [UsersInmem.Create] would. An empty role is valid.
func (s *UsersInmem) Validate(_ context.Context, u *User) (ValidationErrors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validate(defaultRole(u)), nil
}

func (s *UsersInmem) validate(u *User) ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case blank(u.Email):
		errs.add("email", ReasonBlank)
	case s.byEmail(u.Email) != nil:
		errs.add("email", ReasonTaken)
	}
	if !u.Role.Valid() {
		errs.add("role", ReasonNotInSet)
	}
	return errs
}

// Create stores u with the next id. An empty role defaults to [RoleRegular].
func (s *UsersInmem) Create(_ context.Context, u *User) (*User, error) {
	created := defaultRole(u)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(created).err(); err != nil {
		return nil, err
	}

	created.ID = s.nextID
	s.nextID++
	s.users = append(s.users, created)
	cp := *created
	return &cp, nil
}

func (s *UsersInmem) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	return users, nil
}

func (s *UsersInmem) Get(_ context.Context, id UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.users, func(u *User) bool { return u.ID == id })
	if i < 0 {
		return nil, ErrObjectNotFound
	}
	cp := *s.users[i]
	return &cp, nil
}

func (s *UsersInmem) ByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.byEmail(email)
	if u == nil {
		return nil, ErrObjectNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UsersInmem) byEmail(email string) *User {
	i := slices.IndexFunc(s.users, func(u *User) bool { return u.Email == email })
	if i < 0 {
		return nil
	}
	return s.users[i]
}
