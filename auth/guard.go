package auth

import ds "github.com/oaiiae/contacts-api/datastores"

// CanCreateUser reports whether actor may open or submit the new user form.
// Only admins can; a nil actor cannot.
func CanCreateUser(actor *Actor) bool {
	return actor != nil && actor.Role == ds.RoleAdmin
}
