package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	ds "github.com/oaiiae/contacts-api/datastores"
)

var ErrBadCredentials = errors.New("auth: bad credentials")

func HashPassword(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return h, nil
}

// CheckPassword returns the user owning email if password matches.
func CheckPassword(ctx context.Context, users ds.UsersStore, email, password string) (*ds.User, error) {
	u, err := users.ByEmail(ctx, email)
	switch {
	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, ErrBadCredentials
	case err != nil:
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}
