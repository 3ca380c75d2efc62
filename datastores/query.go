package datastores

import (
	"cmp"
	"slices"
	"strings"
)

// compareContacts orders by lastname then firstname.
func compareContacts(a, b *Contact) int {
	return cmp.Or(
		strings.Compare(a.Lastname, b.Lastname),
		strings.Compare(a.Firstname, b.Firstname),
	)
}

func sortContacts(cs []*Contact) { slices.SortStableFunc(cs, compareContacts) }

// hasLetter reports whether the lastname starts with letter, ignoring case.
func hasLetter(c *Contact, letter string) bool {
	return strings.HasPrefix(strings.ToLower(c.Lastname), strings.ToLower(letter))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint: gochecknoglobals

// likePrefix returns a LIKE pattern matching strings starting with s.
func likePrefix(s string) string { return likeEscaper.Replace(s) + "%" }
