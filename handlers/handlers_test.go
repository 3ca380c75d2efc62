package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/contacts-api/auth"
	ds "github.com/oaiiae/contacts-api/datastores"
)

// newTestAPI serves a huma API on a [http.ServeMux] like the real router does.
func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	return humatest.Wrap(t, humago.New(http.NewServeMux(), huma.DefaultConfig("Test API", "1.0.0")))
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v))
	return v
}

type errorModel struct {
	Status int `json:"status"`
	Errors []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

func (m errorModel) messages() map[string][]string {
	out := map[string][]string{}
	for _, e := range m.Errors {
		out[e.Location] = append(out[e.Location], e.Message)
	}
	return out
}

type fixture struct {
	tokens *auth.Tokens
	users  *ds.UsersInmem
	admin  string
	user   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		tokens: auth.NewTokens([]byte("test-secret"), time.Hour),
		users:  ds.NewUsersInmem(),
	}
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	for _, u := range []struct {
		email string
		role  ds.Role
		token *string
	}{
		{"admin@example.com", ds.RoleAdmin, &f.admin},
		{"user@example.com", ds.RoleRegular, &f.user},
	} {
		created, err := f.users.Create(ctx, &ds.User{Email: u.email, Role: u.role, PasswordHash: hash})
		require.NoError(t, err)
		*u.token, err = f.tokens.Sign(created)
		require.NoError(t, err)
	}
	return f
}

func bearer(token string) string { return "Authorization: Bearer " + token }
