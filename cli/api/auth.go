package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/oaiiae/contacts-api/auth"
	"github.com/oaiiae/contacts-api/datastores"
)

type AuthOptions struct {
	TokenSecret   string        `doc:"secret signing bearer tokens, random when empty"`
	TokenTTL      time.Duration `doc:"lifetime of bearer tokens"                      default:"1h"`
	AdminEmail    string        `doc:"email of the admin user created at startup"`
	AdminPassword string        `doc:"password of the admin user created at startup"`
}

// NewAuth returns the token signer and the users store, seeded with the
// admin user when both its email and password are set.
func NewAuth(ctx context.Context, options *AuthOptions, logger *slog.Logger) (*auth.Tokens, *datastores.UsersInmem, error) {
	secret := []byte(options.TokenSecret)
	if len(secret) == 0 {
		secret = []byte(rand.Text())
		logger.Warn("no token secret configured, tokens will not survive a restart")
	}
	tokens := auth.NewTokens(secret, options.TokenTTL)

	users := datastores.NewUsersInmem()
	if options.AdminEmail == "" || options.AdminPassword == "" {
		return tokens, users, nil
	}
	hash, err := auth.HashPassword(options.AdminPassword)
	if err != nil {
		return nil, nil, err
	}
	admin, err := users.Create(ctx, &datastores.User{
		Email:        options.AdminEmail,
		Role:         datastores.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin user created", "id", admin.ID, "email", admin.Email)
	return tokens, users, nil
}
